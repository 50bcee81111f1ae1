package mwapi

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse is returned when a reply is not JSON or lacks the
// fields an action is expected to return.
var ErrMalformedResponse = errors.New("mwapi: malformed response")

// UsageError is an "error" object returned by the API.
type UsageError struct {
	Code string
	Info string
}

func (e *UsageError) Error() string {
	if e.Info == "" {
		return "mwapi: " + e.Code
	}
	return fmt.Sprintf("mwapi: %s: %s", e.Code, e.Info)
}

// LoginError reports a login action that did not end in "Success".
type LoginError struct {
	Result string
	Reason string
}

func (e *LoginError) Error() string {
	if e.Reason == "" {
		return "mwapi: login failed: " + e.Result
	}
	return fmt.Sprintf("mwapi: login failed: %s: %s", e.Result, e.Reason)
}

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("mwapi: http %d: %s", e.StatusCode, e.Status)
}
