package domain

import (
	"fmt"
)

// NetworkError reports a transport failure, a timeout or a non-2xx response
type NetworkError struct {
	URL        string
	StatusCode int    // 0 when no response was received
	Detail     string // short summary of an error body, if any
	Err        error
}

func (e *NetworkError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Detail != "":
		return fmt.Sprintf("network error: %s returned HTTP %d: %s", e.URL, e.StatusCode, e.Detail)
	case e.StatusCode != 0:
		return fmt.Sprintf("network error: %s returned HTTP %d", e.URL, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("network error: %s: %v", e.URL, e.Err)
	default:
		return fmt.Sprintf("network error: %s", e.URL)
	}
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// DecodeError reports a response body that could not be decoded
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error: %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// InvalidURLError reports a category slug that cannot be used as a URL path segment
type InvalidURLError struct {
	Slug string
	Err  error
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid url for category %q: %v", e.Slug, e.Err)
}

func (e *InvalidURLError) Unwrap() error {
	return e.Err
}
