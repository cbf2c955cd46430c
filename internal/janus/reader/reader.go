// Package reader abstracts the credential-reading hardware: a Source
// produces raw UIDs, and Listener turns a polled Source into a stream
// of tap callbacks.
package reader

import (
	"context"
	"errors"
)

// ErrNoCard is returned by a Source when no credential was presented
// within the read window. It is the normal idle result, not a fault.
var ErrNoCard = errors.New("no card present")

// Source reads one credential UID. Implementations must honor ctx and
// return within its deadline; ErrNoCard means the window elapsed with
// nothing presented.
type Source interface {
	ReadUID(ctx context.Context) (string, error)
}

// TapFunc receives each detected tap. It runs synchronously on the
// polling goroutine, so a shutdown always lets the in-flight tap
// finish first.
type TapFunc func(ctx context.Context, uid string)
