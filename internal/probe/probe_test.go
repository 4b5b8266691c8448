package probe_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/hourlyprobe/internal/adapters/supabase"
	"github.com/okian/hourlyprobe/internal/domain/model"
	"github.com/okian/hourlyprobe/internal/probe"
	"github.com/okian/hourlyprobe/pkg/logger"
	"github.com/okian/hourlyprobe/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

// fakeClock advances only when the probe sleeps between attempts.
type fakeClock struct {
	now    time.Time
	sleeps int
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sleeps++
	c.now = c.now.Add(d)
	return nil
}

// fakeSupabase serves the edge function and the table API.
type fakeSupabase struct {
	triggerStatus int
	triggerBody   string
	// reads returns the body and status of the n-th GET (1-based).
	reads      func(n int) (int, string)
	gets       atomic.Int32
	posts      atomic.Int32
	lastQuery  atomic.Value
	lastAPIKey atomic.Value
}

func (f *fakeSupabase) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/functions/v1/update-hourly-details":
		f.posts.Add(1)
		w.WriteHeader(f.triggerStatus)
		_, _ = io.WriteString(w, f.triggerBody)
	case r.Method == http.MethodGet && r.URL.Path == "/rest/v1/hourly_details":
		n := int(f.gets.Add(1))
		f.lastQuery.Store(r.URL.Query())
		f.lastAPIKey.Store(r.Header.Get("apikey"))
		status, body := f.reads(n)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	default:
		http.NotFound(w, r)
	}
}

func TestProbeRun(t *testing.T) {
	Convey("Given a fake Supabase project and a probe on a fake clock", t, func() {
		T := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		clock := &fakeClock{now: T.Add(24 * time.Hour)}
		fake := &fakeSupabase{
			triggerStatus: http.StatusAccepted,
			triggerBody:   `{"accepted":true}`,
			reads:         func(int) (int, string) { return http.StatusOK, `[]` },
		}
		srv := httptest.NewServer(fake)
		defer srv.Close()

		window, err := model.NewWindow(T, T.Add(86_400_000*time.Millisecond))
		So(err, ShouldBeNil)

		client := supabase.NewClient(srv.URL, "anon-key")
		var sample bytes.Buffer
		m := metrics.NewManager()
		cfg := probe.Config{Window: window, RunID: "run-1"}

		newProbe := func(cfg probe.Config) *probe.Probe {
			return probe.New(cfg, client, client,
				probe.WithClock(clock.Now),
				probe.WithSleeper(clock.Sleep),
				probe.WithSampleWriter(&sample),
				probe.WithMetrics(m),
			)
		}
		ctx := context.Background()

		Convey("When debug logging is on", func() {
			var logs bytes.Buffer
			So(logger.Init(logger.WithOutput(&logs)), ShouldBeNil)
			So(logger.SetLevelString("debug"), ShouldBeNil)
			defer func() { _ = logger.Init(logger.WithOutput(io.Discard)) }()
			fake.reads = func(n int) (int, string) {
				if n < 2 {
					return http.StatusOK, `[]`
				}
				return http.StatusOK, `[{"timestamp":"2025-06-01T01:00:00.000Z"}]`
			}

			res := newProbe(cfg).Run(ctx)

			Convey("Then every attempt is logged with its elapsed time", func() {
				So(res.Attempts, ShouldEqual, 2)
				So(logs.String(), ShouldContainSubstring, "attempt=1 elapsed=0s")
				So(logs.String(), ShouldContainSubstring, "attempt=2 elapsed=3s")
			})
		})

		Convey("When rows appear on the third attempt", func() {
			fake.reads = func(n int) (int, string) {
				if n < 3 {
					return http.StatusOK, `[]`
				}
				return http.StatusOK, `[{"timestamp":"2025-06-01T01:00:00.000Z","latitude":40.0,"longitude":-74.0}]`
			}
			started := clock.Now()

			res := newProbe(cfg).Run(ctx)

			Convey("Then the run succeeds with exit code 0 after about 6s", func() {
				So(res.Err, ShouldBeNil)
				So(res.Outcome, ShouldEqual, probe.OutcomeSuccess)
				So(res.ExitCode(), ShouldEqual, 0)
				So(res.Attempts, ShouldEqual, 3)
				So(clock.Now().Sub(started), ShouldEqual, 6*time.Second)
				So(res.Rows, ShouldHaveLength, 1)
				So(res.RunID, ShouldEqual, "run-1")
			})

			Convey("And the single row is printed", func() {
				var printed []map[string]any
				So(json.Unmarshal(sample.Bytes(), &printed), ShouldBeNil)
				So(printed, ShouldHaveLength, 1)
				So(printed[0]["timestamp"], ShouldEqual, "2025-06-01T01:00:00.000Z")
				So(printed[0]["latitude"], ShouldEqual, 40.0)
				So(printed[0]["longitude"], ShouldEqual, -74.0)
			})

			Convey("And the read used the exact window bounds and both auth headers", func() {
				q := fake.lastQuery.Load().(url.Values)
				So(q["timestamp"], ShouldResemble, []string{
					"gte.2025-06-01T00:00:00.000Z",
					"lte.2025-06-02T00:00:00.000Z",
				})
				So(q["limit"], ShouldResemble, []string{"1000"})
				_, hasLat := q["latitude"]
				So(hasLat, ShouldBeFalse)
				So(fake.lastAPIKey.Load(), ShouldEqual, "anon-key")
			})

			Convey("And the metrics record the outcome", func() {
				path := filepath.Join(t.TempDir(), "probe.prom")
				So(m.WriteTextfile(path), ShouldBeNil)
				raw, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				So(string(raw), ShouldContainSubstring, `hourlyprobe_probe_run_outcomes_total{outcome="success"} 1`)
				So(string(raw), ShouldContainSubstring, `hourlyprobe_probe_trigger_requests_total{status_code="202"} 1`)
				So(string(raw), ShouldContainSubstring, `hourlyprobe_probe_poll_attempts_total{result="empty"} 2`)
			})
		})

		Convey("When the trigger is rejected", func() {
			fake.triggerStatus = http.StatusInternalServerError
			fake.triggerBody = `{"error":"boom"}`

			res := newProbe(cfg).Run(ctx)

			Convey("Then polling never starts and the exit code is 2", func() {
				So(res.Outcome, ShouldEqual, probe.OutcomeTriggerRejected)
				So(res.ExitCode(), ShouldEqual, 2)
				So(errors.Is(res.Err, probe.ErrTriggerRejected), ShouldBeTrue)
				So(fake.posts.Load(), ShouldEqual, int32(1))
				So(fake.gets.Load(), ShouldEqual, int32(0))
			})
		})

		Convey("When the trigger answers 200 instead of 202", func() {
			fake.triggerStatus = http.StatusOK

			res := newProbe(cfg).Run(ctx)

			Convey("Then it still counts as not accepted", func() {
				So(res.ExitCode(), ShouldEqual, 2)
				So(fake.gets.Load(), ShouldEqual, int32(0))
			})
		})

		Convey("When no rows ever appear", func() {
			res := newProbe(cfg).Run(ctx)

			Convey("Then the run times out with exit code 3 and no error is raised", func() {
				So(res.Outcome, ShouldEqual, probe.OutcomeTimeout)
				So(res.ExitCode(), ShouldEqual, 3)
				So(res.Rows, ShouldBeEmpty)
				So(errors.Is(res.Err, probe.ErrNoRows), ShouldBeTrue)
				So(res.Attempts, ShouldEqual, 40)
				So(sample.Len(), ShouldEqual, 0)
			})
		})

		Convey("When a read fails", func() {
			fake.reads = func(n int) (int, string) {
				if n == 2 {
					return http.StatusServiceUnavailable, `upstream down`
				}
				return http.StatusOK, `[]`
			}

			res := newProbe(cfg).Run(ctx)

			Convey("Then polling stops immediately with exit code 4", func() {
				So(res.Outcome, ShouldEqual, probe.OutcomeFailure)
				So(res.ExitCode(), ShouldEqual, 4)
				So(errors.Is(res.Err, supabase.ErrUnexpectedStatus), ShouldBeTrue)
				So(fake.gets.Load(), ShouldEqual, int32(2))
			})
		})

		Convey("When the project is unreachable", func() {
			srv.Close()

			res := newProbe(cfg).Run(ctx)

			Convey("Then it is an unexpected failure", func() {
				So(res.ExitCode(), ShouldEqual, 4)
				So(res.Err, ShouldNotBeNil)
			})
		})

		Convey("When coordinates, a sample size and an output file are configured", func() {
			rows := make([]map[string]any, 7)
			for i := range rows {
				rows[i] = map[string]any{"timestamp": T.Add(time.Duration(i) * time.Hour).Format(time.RFC3339), "latitude": 40.0, "longitude": -74.0}
			}
			body, _ := json.Marshal(rows)
			fake.reads = func(int) (int, string) { return http.StatusOK, string(body) }

			lat, lon := 40.0, -74.0
			out := filepath.Join(t.TempDir(), "nested", "rows.json")
			cfg.Latitude = &lat
			cfg.Longitude = &lon
			cfg.OutputFile = out

			res := newProbe(cfg).Run(ctx)

			Convey("Then the read filters on the coordinate", func() {
				q := fake.lastQuery.Load().(url.Values)
				So(q["latitude"], ShouldResemble, []string{"eq.40"})
				So(q["longitude"], ShouldResemble, []string{"eq.-74"})
			})

			Convey("And only five rows are printed while all are saved", func() {
				So(res.ExitCode(), ShouldEqual, 0)
				var printed []map[string]any
				So(json.Unmarshal(sample.Bytes(), &printed), ShouldBeNil)
				So(printed, ShouldHaveLength, 5)

				raw, err := os.ReadFile(out)
				So(err, ShouldBeNil)
				var saved []map[string]any
				So(json.Unmarshal(raw, &saved), ShouldBeNil)
				So(saved, ShouldHaveLength, 7)
			})
		})

		Convey("When no window is given", func() {
			cfg.Window = model.Window{}
			cfg.WindowHours = 6
			fake.reads = func(int) (int, string) { return http.StatusOK, `[{"timestamp":"x"}]` }

			res := newProbe(cfg).Run(ctx)

			Convey("Then the window ends now and reaches back the configured hours", func() {
				So(res.Window.End.Equal(T.Add(24*time.Hour)), ShouldBeTrue)
				So(res.Window.Duration(), ShouldEqual, 6*time.Hour)
			})
		})
	})
}

func TestPollRows(t *testing.T) {
	Convey("Given a fetch that never finds rows", t, func() {
		clock := &fakeClock{now: time.Unix(0, 0)}
		fetch := func(context.Context) ([]model.Row, error) { return nil, nil }

		rows, err := probe.PollRows(context.Background(), fetch,
			pollOptions(clock, time.Second, 3*time.Second)...)

		Convey("Then the budget yields an empty result, not an error", func() {
			So(err, ShouldBeNil)
			So(rows, ShouldNotBeNil)
			So(rows, ShouldBeEmpty)
			So(clock.sleeps, ShouldEqual, 3)
		})
	})
}

func TestOutcomeExitCodes(t *testing.T) {
	Convey("Given every outcome", t, func() {
		So(probe.OutcomeSuccess.ExitCode(), ShouldEqual, 0)
		So(probe.OutcomeConfigError.ExitCode(), ShouldEqual, 1)
		So(probe.OutcomeTriggerRejected.ExitCode(), ShouldEqual, 2)
		So(probe.OutcomeTimeout.ExitCode(), ShouldEqual, 3)
		So(probe.OutcomeFailure.ExitCode(), ShouldEqual, 4)
		So(probe.Outcome(0).String(), ShouldEqual, "failure")
	})
}

func TestShowHelp(t *testing.T) {
	Convey("Given a help writer", t, func() {
		var buf bytes.Buffer
		probe.ShowHelp(&buf)

		Convey("Then every command-line flag is listed", func() {
			for _, flag := range []string{
				"-config", "-env-file", "-window-hours int", "-lat string", "-lon string",
				"-location-id", "-station-id", "-output", "-metrics-file", "-verbose", "-help",
			} {
				So(buf.String(), ShouldContainSubstring, flag)
			}
			So(buf.String(), ShouldNotContainSubstring, "-window duration")
		})
	})
}
