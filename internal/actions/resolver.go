package actions

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/kelsos/blend-actions/internal/amount"
	"github.com/kelsos/blend-actions/internal/models"
	"github.com/kelsos/blend-actions/internal/storage"
)

// Resolver joins the collateral and borrow records of a set of addresses into actions.
type Resolver struct {
	store       storage.Store
	policy      amount.Policy
	concurrency int
	log         zerolog.Logger
}

// Option configures a Resolver
type Option func(*Resolver)

// WithPolicy sets how totals and deltas outside the int64 range are handled.
func WithPolicy(p amount.Policy) Option {
	return func(r *Resolver) {
		r.policy = p
	}
}

// WithConcurrency sets how many addresses are looked up at once. Values below 1 mean 1.
func WithConcurrency(n int) Option {
	return func(r *Resolver) {
		if n < 1 {
			n = 1
		}
		r.concurrency = n
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(r *Resolver) {
		r.log = l.With().Str("component", "resolver").Logger()
	}
}

// NewResolver creates a resolver reading from store
func NewResolver(store storage.Store, opts ...Option) *Resolver {
	r := &Resolver{
		store:       store,
		policy:      amount.PolicyError,
		concurrency: 1,
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the actions of every address in req.
//
// Either every lookup succeeds and the full mapping is returned, or the first
// failure is returned and nothing else. Duplicate addresses collapse into one entry.
func (r *Resolver) Resolve(ctx context.Context, req models.ActionsRequest) (models.ActionsByAddress, error) {
	r.log.Debug().Int("addresses", len(req.Addresses)).Msg("Got request")

	staged := make([][]models.Action, len(req.Addresses))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, address := range req.Addresses {
		i, address := i, address
		g.Go(func() error {
			joined, err := r.resolveAddress(gctx, address)
			if err != nil {
				return err
			}
			staged[i] = joined
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.log.Debug().Err(err).Msg("Discarding partial results")
		return nil, err
	}

	searched := make(models.ActionsByAddress, len(req.Addresses))
	for i, address := range req.Addresses {
		searched[address] = staged[i]
	}

	r.log.Debug().Int("addresses", len(searched)).Msg("Returning response")
	return searched, nil
}

func (r *Resolver) resolveAddress(ctx context.Context, address string) ([]models.Action, error) {
	log := r.log.With().Str("address", address).Logger()

	log.Debug().Msg("Getting collaterals for address")
	collaterals, err := r.store.Collaterals(ctx, address)
	if err != nil {
		return nil, &LookupError{Address: address, Table: storage.TableCollateral, Err: err}
	}

	log.Debug().Msg("Getting borrows for address")
	borrows, err := r.store.Borrows(ctx, address)
	if err != nil {
		return nil, &LookupError{Address: address, Table: storage.TableBorrowed, Err: err}
	}

	log.Debug().Int("collaterals", len(collaterals)).Int("borrows", len(borrows)).Msg("got all data from indexes")

	joined, err := joinActions(collaterals, borrows, r.policy)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize actions for %s: %w", address, err)
	}
	return joined, nil
}
