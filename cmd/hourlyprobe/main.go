package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/okian/hourlyprobe/internal/adapters/repository"
	"github.com/okian/hourlyprobe/internal/adapters/supabase"
	"github.com/okian/hourlyprobe/internal/config"
	"github.com/okian/hourlyprobe/internal/probe"
	"github.com/okian/hourlyprobe/pkg/logger"
	"github.com/okian/hourlyprobe/pkg/metrics"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// flags holds command-line overrides; empty values leave config untouched.
type flags struct {
	configFile  string
	envFile     string
	output      string
	metricsFile string
	lat         string
	lon         string
	locationID  string
	stationID   string
	windowHours int
	verbose     bool
	help        bool
}

func parseFlags(args []string, stderr io.Writer) (*flags, error) {
	f := &flags{}
	fs := flag.NewFlagSet("hourlyprobe", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.configFile, "config", "", "YAML config file (default: $HOURLYPROBE_CONFIG)")
	fs.StringVar(&f.envFile, "env-file", "", "dotenv file to read (default: .env)")
	fs.StringVar(&f.output, "output", "", "Write every found row to this JSON file")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "Write run metrics in Prometheus text format")
	fs.StringVar(&f.lat, "lat", "", "Only accept rows at this latitude")
	fs.StringVar(&f.lon, "lon", "", "Only accept rows at this longitude")
	fs.StringVar(&f.locationID, "location-id", "", "location_id forwarded to the function")
	fs.StringVar(&f.stationID, "station-id", "", "noaa_station_id forwarded to the function")
	fs.IntVar(&f.windowHours, "window-hours", 0, "Lookback from now in hours (default 24)")
	fs.BoolVar(&f.verbose, "verbose", false, "Log every poll attempt")
	fs.BoolVar(&f.help, "help", false, "Show help")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

// apply copies explicitly set flags over the loaded config.
func (f *flags) apply(cfg *config.Config) {
	if f.output != "" {
		cfg.OutputFile = f.output
	}
	if f.metricsFile != "" {
		cfg.MetricsFile = f.metricsFile
	}
	if f.lat != "" {
		cfg.Latitude = f.lat
	}
	if f.lon != "" {
		cfg.Longitude = f.lon
	}
	if f.locationID != "" {
		cfg.LocationID = f.locationID
	}
	if f.stationID != "" {
		cfg.NOAAStationID = f.stationID
	}
	if f.windowHours > 0 {
		cfg.WindowHours = f.windowHours
	}
}

func run(args []string, stdout, stderr io.Writer) (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(stderr, "Test failed: %v\n", r)
			code = probe.ExitFailure
		}
	}()

	f, err := parseFlags(args, stderr)
	if err != nil {
		return probe.ExitConfigError
	}
	if f.help {
		probe.ShowHelp(stdout)
		return probe.ExitSuccess
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (.env -> defaults -> optional file -> env)
	cfg, err := config.Load(ctx, config.WithFile(f.configFile), config.WithEnvFile(f.envFile))
	if err != nil {
		fmt.Fprintf(stderr, "failed to load configuration: %v\n", err)
		return probe.ExitConfigError
	}
	f.apply(cfg)
	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrMissingCredentials) {
			fmt.Fprintf(stderr, "Please set SUPABASE_URL and SUPABASE_ANON_KEY environment variables: %v\n", err)
		} else {
			fmt.Fprintf(stderr, "invalid configuration: %v\n", err)
		}
		return probe.ExitConfigError
	}
	lat, lon, err := cfg.Coordinates()
	if err != nil {
		fmt.Fprintf(stderr, "invalid configuration: %v\n", err)
		return probe.ExitConfigError
	}

	if err := probe.SetupLogging(stdout, cfg.LogLevel, cfg.LogFormat, f.verbose); err != nil {
		fmt.Fprintf(stderr, "failed to setup logging: %v\n", err)
		return probe.ExitConfigError
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	runID := uuid.NewString()
	client := supabase.NewClient(cfg.BaseURL(), cfg.SupabaseAnonKey,
		supabase.WithTimeout(cfg.RequestTimeout),
		supabase.WithRequestID(runID))

	var reader probe.RowReader = client
	if cfg.ReadSource == config.ReadSourcePostgres {
		pg, err := repository.Open(ctx, cfg.DatabaseURL, repository.WithMaxConns(cfg.DatabaseMaxConns))
		if err != nil {
			log.Error(ctx, "failed to open database", logger.Error(err))
			return probe.ExitFailure
		}
		defer pg.Close()
		reader = pg
	}

	log.Info(ctx, "starting hourly probe",
		logger.String("run_id", runID),
		logger.String("function_url", client.FunctionURL(cfg.FunctionName)),
		logger.String("table_url", client.TableURL(cfg.Table)),
		logger.String("read_source", cfg.ReadSource))

	m := metrics.Default()
	p := probe.New(probe.Config{
		FunctionName: cfg.FunctionName,
		Table:        cfg.Table,
		WindowHours:  cfg.WindowHours,
		Source:       cfg.Source,
		LocationID:   cfg.LocationID,
		StationID:    cfg.NOAAStationID,
		Latitude:     lat,
		Longitude:    lon,
		RowLimit:     cfg.RowLimit,
		PollInterval: cfg.PollInterval,
		PollTimeout:  cfg.PollTimeout,
		SampleSize:   cfg.SampleSize,
		OutputFile:   cfg.OutputFile,
		RunID:        runID,
	}, client, reader,
		probe.WithLogger(log),
		probe.WithMetrics(m),
		probe.WithSampleWriter(stdout))

	res := p.Run(ctx)

	if cfg.MetricsFile != "" {
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Warn(ctx, "failed to write metrics file", logger.Error(err))
		}
	}

	if res.Outcome == probe.OutcomeFailure {
		fmt.Fprintf(stderr, "Test failed: %v\n", res.Err)
	}
	log.Info(ctx, "probe finished",
		logger.String("outcome", res.Outcome.String()),
		logger.Int("exit_code", res.ExitCode()),
		logger.Int("attempts", res.Attempts),
		logger.Duration("duration", res.Duration))
	return res.ExitCode()
}
