// Package dfs provides a client for the ADLS Gen2 data-plane REST API at
// https://{account}.dfs.core.windows.net. HTTP-level failures (4xx/5xx) are
// delivered as ordinary Command responses for the caller to branch on; only
// transport and authentication failures surface as Command errors.
package dfs

import "fmt"

// NetworkError is returned in a Command when the HTTP transport itself
// failed (DNS, connect, timeout). The storage operation must never be
// assumed to have taken effect.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("dfs: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
