package controller

import "errors"

// Domain errors for the controller package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, controller.ErrUnsupportedEncoding) {
//	    // disable the device, do not connect
//	}
var (
	// ErrUnsupportedController is returned when the requested kind is
	// not in the registry's known set.
	ErrUnsupportedController = errors.New("controller: unsupported controller")

	// ErrUnsupportedEncoding is returned when the requested encoding is
	// not accepted by the resolved controller variant. Raised at
	// resolve time, before any connection is opened.
	ErrUnsupportedEncoding = errors.New("controller: unsupported encoding")

	// ErrTransport wraps publish failures surfaced by the underlying
	// transport. It is returned to the caller of Send, never swallowed.
	ErrTransport = errors.New("controller: transport publish failed")

	// ErrInvalidTopic is returned when a spec has no transport target.
	ErrInvalidTopic = errors.New("controller: topic is required")

	// ErrNoPublisher is returned when Resolve is given a nil transport.
	ErrNoPublisher = errors.New("controller: publisher is required")
)
