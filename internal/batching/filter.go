package batching

import (
	"context"

	"github.com/agustinustheo/soltoolkit-sdk/internal/ledger"
	"github.com/agustinustheo/soltoolkit-sdk/internal/logging"
	"golang.org/x/sync/errgroup"
)

// Filter determines which recipients still need account provisioning before
// they can receive a transfer. Lookups are independent read-only calls, so
// they fan out concurrently up to a configured bound; results are written
// into an index-addressed slice so output order always equals input order
// regardless of completion order, with no append-order races.
type Filter struct {
	lookup      AccountLookup
	concurrency int
}

// NewFilter creates a filter over the given lookup collaborator. A
// non-positive concurrency falls back to the package default.
func NewFilter(lookup AccountLookup, concurrency int) *Filter {
	if concurrency <= 0 {
		concurrency = DefaultLookupConcurrency
	}
	return &Filter{lookup: lookup, concurrency: concurrency}
}

// Unprovisioned returns the subset of recipients whose account for mint does
// not exist yet, preserving input order. Recipients whose lookup reports
// "exists" are dropped; everyone else is retained.
//
// One external read is issued per recipient. The first lookup failure
// cancels the remaining in-flight lookups and fails the whole call with a
// LookupError: no partial result is ever returned, and the caller retries
// the entire plan.
func (f *Filter) Unprovisioned(ctx context.Context, recipients []ledger.Address, mint ledger.Address) ([]ledger.Address, error) {
	if len(recipients) == 0 {
		return nil, nil
	}

	// Index-addressed so concurrent completions never race on ordering
	exists := make([]bool, len(recipients))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(f.concurrency)

	for i, recipient := range recipients {
		i, recipient := i, recipient
		group.Go(func() error {
			found, err := f.lookup.LookupAccount(groupCtx, recipient, mint)
			if err != nil {
				return &LookupError{Recipient: recipient, Err: err}
			}
			exists[i] = found
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	unprovisioned := make([]ledger.Address, 0, len(recipients))
	for i, recipient := range recipients {
		if !exists[i] {
			unprovisioned = append(unprovisioned, recipient)
		}
	}

	logging.Debug("Filter: %d of %d recipients need provisioning", len(unprovisioned), len(recipients))
	return unprovisioned, nil
}
