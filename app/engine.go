package app

import (
	"sync"
	"time"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// Engine routes submitted transactions to their handlers and guarantees that
// each one either commits all of its writes or none of them. It cache-wraps
// the backing store per call; the handler works on the cache and only a
// successful result is written through.
//
// A mutex serializes all state access, so concurrent callers of one engine
// are safe but their operations apply one at a time.
type Engine struct {
	mu     sync.Mutex
	store  custody.CacheableKVStore
	router *Router
}

// NewEngine combines a store and a configured router.
func NewEngine(store custody.CacheableKVStore, r *Router) *Engine {
	return &Engine{store: store, router: r}
}

// Check runs the transaction's stateless and stateful validation without
// persisting anything. Writes made during validation are always discarded.
func (e *Engine) Check(ctx custody.Context, tx custody.Tx) (*custody.CheckResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx = withExecutionTime(ctx)
	cache := e.store.CacheWrap()
	defer cache.Discard()

	return e.check(ctx, cache, tx)
}

// Deliver executes the transaction. On success all writes are committed to
// the backing store together; on any error none of them are.
func (e *Engine) Deliver(ctx custody.Context, tx custody.Tx) (*custody.DeliverResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx = withExecutionTime(ctx)
	cache := e.store.CacheWrap()

	res, err := e.deliver(ctx, cache, tx)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	cache.Write()
	return res, nil
}

// check dispatches to the handler, converting a panic into an error.
func (e *Engine) check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (res *custody.CheckResult, err error) {
	defer errors.Recover(&err)
	return e.router.Handler(custody.GetPath(tx)).Check(ctx, db, tx)
}

// deliver dispatches to the handler, converting a panic into an error.
func (e *Engine) deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (res *custody.DeliverResult, err error) {
	defer errors.Recover(&err)
	return e.router.Handler(custody.GetPath(tx)).Deliver(ctx, db, tx)
}

// withExecutionTime stamps the context with the current time unless the
// caller already fixed one.
func withExecutionTime(ctx custody.Context) custody.Context {
	if _, err := custody.BlockTime(ctx); errors.ErrHuman.Is(err) {
		return custody.WithBlockTime(ctx, time.Now())
	}
	return ctx
}
