package custody

import (
	"context"
	"time"

	"github.com/iov-one/custody/errors"
)

// Context is just an alias for the standard implementation.
// We use functions to extend it to our domain.
//
// There should exist two functions for every value of type T
// that we want to support in Context:
//
//   WithXYZ(Context, T) Context
//   XYZ(Context) (val T, err error)
type Context = context.Context

type contextKey int

const (
	contextKeyTime contextKey = iota
)

// WithBlockTime sets the execution time for all operations applied within
// this context. The engine sets it once per submitted operation.
func WithBlockTime(ctx Context, t time.Time) Context {
	return context.WithValue(ctx, contextKeyTime, t)
}

// BlockTime returns the execution time as declared in the context.
func BlockTime(ctx Context) (time.Time, error) {
	val, ok := ctx.Value(contextKeyTime).(time.Time)
	if !ok {
		return time.Time{}, errors.Wrap(errors.ErrHuman, "block time not present in the context")
	}
	return val, nil
}
