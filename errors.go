package finitegen

import "go.llib.dev/frameless/pkg/errorkit"

const (
	// ErrNegativeLimit is returned by the constructors when the requested limit is below zero.
	ErrNegativeLimit errorkit.Error = "ErrNegativeLimit"
	// ErrSourceConsumed is reported when a Generator backed by a single-use source is traversed again.
	ErrSourceConsumed errorkit.Error = "ErrSourceConsumed"
)
