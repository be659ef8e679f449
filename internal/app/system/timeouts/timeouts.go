// internal/app/system/timeouts/timeouts.go
//
// Package timeouts centralizes the context deadlines used for database
// work. Handlers and background jobs derive their contexts from these
// helpers instead of hard-coding durations at call sites.
package timeouts

import (
	"context"
	"time"
)

var (
	ping   = 3 * time.Second
	short  = 5 * time.Second
	medium = 15 * time.Second
	long   = 60 * time.Second
)

// Configure overrides the default durations. Zero values leave the
// corresponding default in place. Called once from startup.
func Configure(pingD, shortD, mediumD, longD time.Duration) {
	if pingD > 0 {
		ping = pingD
	}
	if shortD > 0 {
		short = shortD
	}
	if mediumD > 0 {
		medium = mediumD
	}
	if longD > 0 {
		long = longD
	}
}

// Ping bounds connectivity checks.
func Ping(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, ping)
}

// Short bounds single-document reads and writes.
func Short(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, short)
}

// Medium bounds multi-step operations such as membership changes and
// list queries.
func Medium(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, medium)
}

// Long bounds cascading deletes and reconcile sweeps.
func Long(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, long)
}
