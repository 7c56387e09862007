package flowruntime

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/flowcraft-dev/flowcraft-go/blueprint"
	"github.com/stretchr/testify/require"
)

func TestRunWithResiliency_SucceedsFirstTry(t *testing.T) {
	calls := 0
	out, err := runWithResiliency(context.Background(), nil, func(ctx context.Context) (any, error) {
		calls++
		return "ok", nil
	}, nil)
	require.NoError(t, err)
	require.Equal(t, "ok", out)
	require.Equal(t, 1, calls)
}

func TestRunWithResiliency_RetriesThenSucceeds(t *testing.T) {
	calls := 0
	cfg := &blueprint.NodeConfig{MaxRetries: 3, RetryDelay: time.Millisecond}
	var retried []int
	out, err := runWithResiliency(context.Background(), cfg, func(ctx context.Context) (any, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("transient")
		}
		return "recovered", nil
	}, func(attempt int, err error) { retried = append(retried, attempt) })

	require.NoError(t, err)
	require.Equal(t, "recovered", out)
	require.Equal(t, 3, calls)
	require.Equal(t, []int{1, 2}, retried)
}

func TestRunWithResiliency_ExhaustsRetries(t *testing.T) {
	cfg := &blueprint.NodeConfig{MaxRetries: 2}
	calls := 0
	_, err := runWithResiliency(context.Background(), cfg, func(ctx context.Context) (any, error) {
		calls++
		return nil, errors.New("permanent")
	}, nil)
	require.Error(t, err)
	require.Equal(t, 2, calls)
}

func TestRunWithResiliency_TimeoutPerAttempt(t *testing.T) {
	cfg := &blueprint.NodeConfig{MaxRetries: 1, Timeout: 10 * time.Millisecond}
	_, err := runWithResiliency(context.Background(), cfg, func(ctx context.Context) (any, error) {
		select {
		case <-time.After(50 * time.Millisecond):
			return "too slow", nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}, nil)
	require.Error(t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRunWithResiliency_NilConfigDefaultsToOneAttempt(t *testing.T) {
	calls := 0
	_, err := runWithResiliency(context.Background(), nil, func(ctx context.Context) (any, error) {
		calls++
		return nil, errors.New("fail")
	}, nil)
	require.Error(t, err)
	require.Equal(t, 1, calls)
}

func TestComputeBackoff_Deterministic(t *testing.T) {
	rng1 := rand.New(rand.NewSource(1))
	rng2 := rand.New(rand.NewSource(1))
	require.Equal(t, computeBackoff(2, 10*time.Millisecond, rng1), computeBackoff(2, 10*time.Millisecond, rng2))
}
