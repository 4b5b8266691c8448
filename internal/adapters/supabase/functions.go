package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// TriggerResult is the response of an edge function invocation.
type TriggerResult struct {
	StatusCode int
	// Body is the decoded JSON document, the raw text when the body is not
	// JSON, or nil when the body is empty.
	Body any
	// DecodeErr is set when a non-empty body could not be parsed as JSON.
	DecodeErr error
}

// Accepted reports whether the function queued the work (HTTP 202).
func (r TriggerResult) Accepted() bool {
	return r.StatusCode == http.StatusAccepted
}

// InvokeFunction POSTs payload as JSON to the named edge function. The status
// code is returned as is; judging it is up to the caller.
func (c *Client) InvokeFunction(ctx context.Context, name string, payload any) (TriggerResult, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return TriggerResult{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.FunctionURL(name), bytes.NewReader(jsonData))
	if err != nil {
		return TriggerResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	status, body, err := c.do(req)
	if err != nil {
		return TriggerResult{}, err
	}

	res := TriggerResult{StatusCode: status}
	res.Body, res.DecodeErr = decodeLoose(body)
	return res, nil
}

// decodeLoose parses body as JSON, falling back to the raw text.
func decodeLoose(body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return string(body), fmt.Errorf("%w: %w", ErrDecodeResponse, err)
	}
	return v, nil
}
