// Package reconcile implements the find-by-external-key, then update-or-insert
// write used by every synchronizer.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ManuelReschke/SlotSync/internal/pkg/syncerr"
	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/sync/errgroup"
)

// Record is a persisted row that can be located by its external key.
type Record interface {
	LookupKey() map[string]any
	GetID() uint
	SetID(uint)
}

// Store is the storage capability the reconciler needs.
type Store[T Record] interface {
	FindOne(ctx context.Context, key map[string]any) (T, bool, error)
	Insert(ctx context.Context, rec T) (uint, error)
	Update(ctx context.Context, id uint, rec T) error
}

// Result reports the stable local id of a reconciled row.
type Result struct {
	ID      uint `json:"id"`
	Created bool `json:"created"`
}

var errNoID = errors.New("store returned no id")

// Reconcile updates the row matching rec's lookup key in place, or inserts rec
// when no row matches. rec's ID is set to the persisted id on success.
func Reconcile[T Record](ctx context.Context, store Store[T], rec T) (Result, error) {
	key := rec.LookupKey()

	existing, found, err := store.FindOne(ctx, key)
	if err != nil {
		return Result{}, fmt.Errorf("lookup %s: %w", FormatKey(key), err)
	}

	if found {
		id := existing.GetID()
		if id == 0 {
			return Result{}, fmt.Errorf("lookup %s: %w", FormatKey(key), errNoID)
		}
		rec.SetID(id)
		if err := store.Update(ctx, id, rec); err != nil {
			return Result{}, fmt.Errorf("update %s: %w", FormatKey(key), err)
		}
		return Result{ID: id}, nil
	}

	rec.SetID(0)
	id, err := store.Insert(ctx, rec)
	if err != nil {
		return Result{}, fmt.Errorf("insert %s: %w", FormatKey(key), err)
	}
	if id == 0 {
		return Result{}, fmt.Errorf("insert %s: %w", FormatKey(key), errNoID)
	}
	rec.SetID(id)
	return Result{ID: id, Created: true}, nil
}

// Outcome is the result of a batch. Results is index-aligned with the input;
// entries for failed records are zero.
type Outcome struct {
	Results  []Result
	Failures []*syncerr.RecordError
}

// Succeeded returns the results of the records that persisted.
func (o Outcome) Succeeded() []Result {
	out := make([]Result, 0, len(o.Results))
	for _, r := range o.Results {
		if r.ID != 0 {
			out = append(out, r)
		}
	}
	return out
}

type options struct {
	concurrency int
}

// Option configures ReconcileEach.
type Option func(*options)

// WithConcurrency bounds the number of records reconciled in parallel.
// Values below 1 mean sequential.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// ReconcileEach reconciles every record independently. A failing record is
// logged, collected in Outcome.Failures and skipped; its siblings continue.
func ReconcileEach[T Record](ctx context.Context, store Store[T], entity string, recs []T, opts ...Option) Outcome {
	o := options{concurrency: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.concurrency < 1 {
		o.concurrency = 1
	}

	out := Outcome{Results: make([]Result, len(recs))}
	failed := make(map[int]*syncerr.RecordError)
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for i, rec := range recs {
		g.Go(func() error {
			res, err := Reconcile(ctx, store, rec)
			if err != nil {
				rerr := &syncerr.RecordError{Entity: entity, Key: FormatKey(rec.LookupKey()), Err: err}
				log.Errorf("[Reconcile] %v", rerr)
				mu.Lock()
				failed[i] = rerr
				mu.Unlock()
				return nil
			}
			out.Results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	idx := make([]int, 0, len(failed))
	for i := range failed {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	for _, i := range idx {
		out.Failures = append(out.Failures, failed[i])
	}
	return out
}

// FormatKey renders a lookup key as "col=value" pairs in column order.
func FormatKey(key map[string]any) string {
	cols := make([]string, 0, len(key))
	for c := range key {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	parts := make([]string, 0, len(cols))
	for _, c := range cols {
		parts = append(parts, fmt.Sprintf("%s=%v", c, key[c]))
	}
	return strings.Join(parts, ",")
}
