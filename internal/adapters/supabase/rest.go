package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/okian/hourlyprobe/internal/domain/model"
	"github.com/okian/hourlyprobe/pkg/logger"
)

// ScalarKey holds a non-object element of a read response.
const ScalarKey = "value"

// BuildRowsQuery renders a RowFilter as PostgREST query parameters:
// an inclusive timestamp range, optional exact coordinates and a row cap.
func BuildRowsQuery(filter model.RowFilter) url.Values {
	params := url.Values{}
	params.Set("select", "*")
	params.Set(model.ColumnTimestamp, "gte."+filter.Window.StartISO())
	params.Add(model.ColumnTimestamp, "lte."+filter.Window.EndISO())
	if filter.Latitude != nil {
		params.Set(model.ColumnLatitude, "eq."+model.FormatCoordinate(*filter.Latitude))
	}
	if filter.Longitude != nil {
		params.Set(model.ColumnLongitude, "eq."+model.FormatCoordinate(*filter.Longitude))
	}
	params.Set("limit", strconv.Itoa(filter.EffectiveLimit()))
	return params
}

// SelectRows reads the rows of table matching filter. Any non-2xx response
// is returned as a *StatusError. A JSON body that is not an array counts as
// no rows; any non-empty array counts as found rows.
func (c *Client) SelectRows(ctx context.Context, table string, filter model.RowFilter) ([]model.Row, error) {
	requestURL := c.TableURL(table) + "?" + BuildRowsQuery(filter).Encode()

	req, err := c.newRequest(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Accept", "application/json")

	status, body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, &StatusError{Op: "select " + table, StatusCode: status, Body: string(body)}
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		if !json.Valid(trimmed) {
			return nil, fmt.Errorf("%w: select %s: body is not JSON", ErrDecodeResponse, table)
		}
		logger.Get().Warn(ctx, "read endpoint returned a non-array body; treating as no rows",
			logger.String("table", table), logger.Int("status", status))
		return nil, nil
	}

	var items []any
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("%w: select %s: %w", ErrDecodeResponse, table, err)
	}
	return toRows(items), nil
}

// toRows keeps every array element so the row count matches the body.
// Elements that are not objects are kept under ScalarKey.
func toRows(items []any) []model.Row {
	rows := make([]model.Row, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			rows = append(rows, model.Row(obj))
			continue
		}
		rows = append(rows, model.Row{ScalarKey: item})
	}
	return rows
}
