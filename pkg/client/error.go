package client

import "github.com/pkg/errors"

// errors
var (
	ErrEmptyBaseURL      = errors.New("base url is empty")
	ErrInvalidBaseURL    = errors.New("invalid base url")
	ErrNilHTTPClient     = errors.New("http client is nil")
	ErrRemote            = errors.New("remote failure")
	ErrUnexpectedStatus  = errors.New("unexpected response status")
	ErrMalformedResponse = errors.New("malformed response")
)
