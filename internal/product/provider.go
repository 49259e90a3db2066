package product

import (
	"context"
	"errors"
	"strconv"
	"time"

	"marketcart-be/internal/apperror"
	"marketcart-be/internal/logger"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// BreakerSettings controls when the provider stops calling a failing catalog.
type BreakerSettings struct {
	MaxFailures uint32
	OpenTimeout time.Duration
	// LookupTimeout bounds one shared catalog read.
	LookupTimeout time.Duration
}

// GuardedProvider wraps a SnapshotProvider with request collapsing and a
// circuit breaker. Collapsed callers share one point-in-time read, which runs
// detached from any single caller's cancellation.
type GuardedProvider struct {
	inner         SnapshotProvider
	group         singleflight.Group
	breaker       *gobreaker.CircuitBreaker[Snapshot]
	lookupTimeout time.Duration
}

func NewGuardedProvider(inner SnapshotProvider, st BreakerSettings) *GuardedProvider {
	if st.MaxFailures == 0 {
		st.MaxFailures = 5
	}
	if st.OpenTimeout <= 0 {
		st.OpenTimeout = 30 * time.Second
	}
	if st.LookupTimeout <= 0 {
		st.LookupTimeout = 5 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        "product-snapshot",
		MaxRequests: 1,
		Timeout:     st.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= st.MaxFailures
		},
		// A missing product is an answer, not a catalog failure.
		IsSuccessful: func(err error) bool {
			return err == nil || apperror.IsKind(err, apperror.KindProductNotFound)
		},
		// A caller giving up says nothing about the catalog. A read that ran
		// out its own LookupTimeout comes back as Unavailable and still counts.
		IsExcluded: func(err error) bool {
			if apperror.IsKind(err, apperror.KindUnavailable) {
				return false
			}
			return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.L().Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &GuardedProvider{
		inner:         inner,
		breaker:       gobreaker.NewCircuitBreaker[Snapshot](settings),
		lookupTimeout: st.LookupTimeout,
	}
}

// GetSnapshot joins or starts the shared read for productID. Each caller
// waits on its own context; leaving early does not cancel the read for the
// callers still waiting.
func (p *GuardedProvider) GetSnapshot(ctx context.Context, productID int64) (Snapshot, error) {
	ch := p.group.DoChan(strconv.FormatInt(productID, 10), func() (interface{}, error) {
		return p.breaker.Execute(func() (Snapshot, error) {
			return p.lookup(ctx, productID)
		})
	})

	select {
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			if errors.Is(res.Err, gobreaker.ErrOpenState) || errors.Is(res.Err, gobreaker.ErrTooManyRequests) {
				return Snapshot{}, apperror.Unavailable(res.Err)
			}
			return Snapshot{}, res.Err
		}
		return res.Val.(Snapshot), nil
	}
}

func (p *GuardedProvider) lookup(ctx context.Context, productID int64) (Snapshot, error) {
	lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.lookupTimeout)
	defer cancel()

	snap, err := p.inner.GetSnapshot(lookupCtx, productID)
	if err != nil && errors.Is(lookupCtx.Err(), context.DeadlineExceeded) {
		return Snapshot{}, apperror.Unavailable(err)
	}
	return snap, err
}

// State exposes the breaker state for health reporting.
func (p *GuardedProvider) State() gobreaker.State {
	return p.breaker.State()
}
