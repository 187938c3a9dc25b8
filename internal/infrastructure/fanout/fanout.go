// Package fanout runs the "discover scopes, query each scope, aggregate" pipeline
// used when a provider has no single endpoint for a listing.
package fanout

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds the in-flight sub-requests of one aggregation.
const DefaultConcurrency = 4

// Collect calls fetch once per scope, at most concurrency at a time, and concatenates
// the results in scope order. The first failure cancels the remaining sub-requests and is
// returned alone: results already gathered from other scopes are discarded.
func Collect[S, T any](
	ctx context.Context,
	scopes []S,
	concurrency int,
	fetch func(ctx context.Context, scope S) ([]T, error),
) ([]T, error) {
	if len(scopes) == 0 {
		return []T{}, nil
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	logger.Debugf("Fanning out over %d scopes (concurrency %d)", len(scopes), concurrency)

	slots := make([][]T, len(scopes))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)

	for i, scope := range scopes {
		group.Go(func() error {
			items, err := fetch(groupCtx, scope)
			if err != nil {
				return err
			}
			slots[i] = items
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, slot := range slots {
		total += len(slot)
	}
	aggregated := make([]T, 0, total)
	for _, slot := range slots {
		aggregated = append(aggregated, slot...)
	}
	return aggregated, nil
}

// Map is Collect for fetches that produce exactly one item per scope.
func Map[S, T any](
	ctx context.Context,
	scopes []S,
	concurrency int,
	fetch func(ctx context.Context, scope S) (T, error),
) ([]T, error) {
	return Collect(ctx, scopes, concurrency, func(ctx context.Context, scope S) ([]T, error) {
		item, err := fetch(ctx, scope)
		if err != nil {
			return nil, err
		}
		return []T{item}, nil
	})
}
