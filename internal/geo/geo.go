// Package geo captures a device position through a pluggable Locator.
//
// A capture is a single attempt bounded by Options.Timeout. Failures are
// reported as ErrPermissionDenied, ErrTimeout or ErrUnavailable so callers can
// tell a denied permission apart from a slow or missing sensor.
package geo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	DefaultTimeout    = 10 * time.Second
	DefaultMaximumAge = 2 * time.Minute
)

var (
	ErrPermissionDenied = errors.New("location permission denied")
	ErrTimeout          = errors.New("location request timed out")
	ErrUnavailable      = errors.New("location unavailable")
	ErrInvalidPosition  = errors.New("invalid position")
)

// Error codes as reported by devices and returned to clients.
const (
	CodePermissionDenied = "permission_denied"
	CodeTimeout          = "timeout"
	CodeUnavailable      = "unavailable"
)

// Position is a single fix in degrees.
type Position struct {
	Latitude  float64
	Longitude float64
	Accuracy  *float64 // meters
	Timestamp time.Time
}

func (p Position) Validate() error {
	if math.IsNaN(p.Latitude) || p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidPosition, p.Latitude)
	}
	if math.IsNaN(p.Longitude) || p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidPosition, p.Longitude)
	}
	if p.Accuracy != nil && (math.IsNaN(*p.Accuracy) || *p.Accuracy < 0) {
		return fmt.Errorf("%w: negative accuracy", ErrInvalidPosition)
	}
	return nil
}

type Options struct {
	HighAccuracy bool
	Timeout      time.Duration
	// MaximumAge is how old a previously captured fix may be and still be
	// reused instead of querying the locator again. Zero disables reuse.
	MaximumAge time.Duration
}

func DefaultOptions() Options {
	return Options{
		HighAccuracy: true,
		Timeout:      DefaultTimeout,
		MaximumAge:   DefaultMaximumAge,
	}
}

// Locator is the platform geolocation port.
type Locator interface {
	CurrentPosition(ctx context.Context, opts Options) (Position, error)
}

type LocatorFunc func(ctx context.Context, opts Options) (Position, error)

func (f LocatorFunc) CurrentPosition(ctx context.Context, opts Options) (Position, error) {
	return f(ctx, opts)
}

// Capture asks the locator for one fix. It does not retry.
func Capture(ctx context.Context, locator Locator, opts Options) (Position, error) {
	if locator == nil {
		return Position{}, ErrUnavailable
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		pos Position
		err error
	}
	done := make(chan result, 1)
	go func() {
		pos, err := locator.CurrentPosition(ctx, opts)
		done <- result{pos: pos, err: err}
	}()

	var r result
	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Position{}, ErrTimeout
		}
		return Position{}, ctx.Err()
	case r = <-done:
	}

	if r.err != nil {
		return Position{}, classify(r.err)
	}
	if err := r.pos.Validate(); err != nil {
		return Position{}, err
	}
	if r.pos.Timestamp.IsZero() {
		r.pos.Timestamp = time.Now().UTC()
	}
	return r.pos, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, ErrPermissionDenied), errors.Is(err, ErrTimeout), errors.Is(err, ErrUnavailable):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	case errors.Is(err, context.Canceled):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}

// Code returns the wire code for a capture error, or "" for other errors.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return CodePermissionDenied
	case errors.Is(err, ErrTimeout):
		return CodeTimeout
	case errors.Is(err, ErrUnavailable):
		return CodeUnavailable
	default:
		return ""
	}
}

// ErrorForCode maps a device error code back to its sentinel error.
// Unknown codes return nil.
func ErrorForCode(code string) error {
	switch code {
	case CodePermissionDenied:
		return ErrPermissionDenied
	case CodeTimeout:
		return ErrTimeout
	case CodeUnavailable:
		return ErrUnavailable
	default:
		return nil
	}
}
