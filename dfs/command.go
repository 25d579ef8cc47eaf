package dfs

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Response holds a received HTTP response verbatim: status, headers, and
// fully-read body. Present for any status the service returned, including
// 4xx and 5xx.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Command is the uniform result envelope for every REST operation. Exactly
// one of Response and Err is meaningfully populated:
//
//   - Err set, Response nil: the request never completed (authentication
//     failed before sending, or the transport failed mid-flight).
//   - Response set, Err nil: the service answered. The status code is the
//     caller's to interpret — 404 means the path does not exist, 409 means
//     it already exists, and so on.
//
// Commands are immutable after completion.
type Command struct {
	Method    string
	URL       string
	RequestID string // x-ms-client-request-id sent with the request

	Response *Response
	Err      error
}

// OK reports whether the request completed with a 2xx status.
func (c Command) OK() bool {
	return c.Err == nil && c.Response != nil &&
		c.Response.StatusCode >= http.StatusOK && c.Response.StatusCode < http.StatusMultipleChoices
}

// JSON decodes the response body into v. It fails if the Command carries an
// error or has no body to decode.
func (c Command) JSON(v any) error {
	if c.Err != nil {
		return fmt.Errorf("dfs: no response to decode: %w", c.Err)
	}

	if c.Response == nil || len(c.Response.Body) == 0 {
		return fmt.Errorf("dfs: %s %s returned an empty body", c.Method, c.URL)
	}

	if err := json.Unmarshal(c.Response.Body, v); err != nil {
		return fmt.Errorf("dfs: decoding %s %s response: %w", c.Method, c.URL, err)
	}

	return nil
}
