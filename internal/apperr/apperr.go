// Package apperr carries the error kinds every source adapter, the retry
// executor and the orchestrator agree on.
package apperr

import (
	"errors"
	"fmt"
)

type Kind uint8

const (
	Unknown Kind = iota
	Config
	Auth
	RateLimit
	Network
	HTTP
	Parse
	Persistence
)

func (k Kind) String() string {
	switch k {
	case Config:
		return "config"
	case Auth:
		return "auth"
	case RateLimit:
		return "rate_limit"
	case Network:
		return "network"
	case HTTP:
		return "http"
	case Parse:
		return "parse"
	case Persistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// Error is a classified failure. Source names the provider ("serpapi",
// "lever", ...), Op the call that failed.
type Error struct {
	Kind   Kind
	Source string
	Op     string
	Status int
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Source != "" {
		msg += " [source=" + e.Source + "]"
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, source, op string, err error) *Error {
	return &Error{Kind: kind, Source: source, Op: op, Err: err}
}

// Status builds the error for a non-2xx response: 401/403 are auth
// failures, 429 is a rate limit, anything else is a plain HTTP error.
func Status(source, op string, code int) *Error {
	kind := HTTP
	switch code {
	case 401, 403:
		kind = Auth
	case 429:
		kind = RateLimit
	}
	return &Error{Kind: kind, Source: source, Op: op, Status: code}
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// StatusOf returns the HTTP status attached to err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}
