package client

import "errors"

var (
	ErrUnavailable        = errors.New("server unavailable")
	ErrServerError        = errors.New("server rejected the request")
	ErrUnexpectedResponse = errors.New("unexpected response")
)
