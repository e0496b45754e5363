package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryInOrder_FirstSuccessWins(t *testing.T) {
	var tried []string
	try := func(_ context.Context, c string) (int, error) {
		tried = append(tried, c)
		if c == "b" {
			return 2, nil
		}
		return 0, errors.New("boom")
	}

	out, winner, err := TryInOrder(context.Background(), []string{"a", "b", "c"}, try, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, out)
	assert.Equal(t, "b", winner)
	assert.Equal(t, []string{"a", "b"}, tried, "must stop after the first success")
}

func TestTryInOrder_AllFail(t *testing.T) {
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	try := func(_ context.Context, c string) (string, error) {
		if c == "a" {
			return "", errA
		}
		return "", errB
	}

	_, _, err := TryInOrder(context.Background(), []string{"a", "b"}, try, nil)
	require.Error(t, err)

	var chainErr *ChainError
	require.ErrorAs(t, err, &chainErr)
	assert.Len(t, chainErr.Attempts, 2)
	assert.Equal(t, "a", chainErr.Attempts[0].Candidate)
	assert.ErrorIs(t, err, errB, "aggregate error unwraps to the last cause")
	assert.NotErrorIs(t, err, errA)
	assert.Contains(t, err.Error(), "all 2 candidates failed")
}

func TestTryInOrder_PredicateStopsChain(t *testing.T) {
	fatal := errors.New("fatal")
	calls := 0
	try := func(_ context.Context, _ string) (string, error) {
		calls++
		return "", fatal
	}
	stopOnFatal := func(_ context.Context, err error) bool {
		return !errors.Is(err, fatal)
	}

	_, _, err := TryInOrder(context.Background(), []string{"a", "b", "c"}, try, stopOnFatal)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, fatal)
}

func TestTryInOrder_NoCandidates(t *testing.T) {
	try := func(_ context.Context, _ string) (string, error) {
		t.Fatal("try must not be called")
		return "", nil
	}

	_, _, err := TryInOrder(context.Background(), nil, try, nil)
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestContinueUnlessCanceled(t *testing.T) {
	ctx := context.Background()
	assert.True(t, ContinueUnlessCanceled(ctx, errors.New("transient")))
	assert.True(t, ContinueUnlessCanceled(ctx, &ModelError{Kind: KindSafety}))
	assert.True(t, ContinueUnlessCanceled(ctx, &ModelError{Kind: KindAuth}))
	assert.False(t, ContinueUnlessCanceled(ctx, &ModelError{Kind: KindCanceled}))
	assert.False(t, ContinueUnlessCanceled(ctx, context.Canceled))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.False(t, ContinueUnlessCanceled(cancelled, errors.New("transient")))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindSafety, KindOf(&ModelError{Kind: KindSafety}))
	assert.Equal(t, KindRateLimited, KindOf(&ChainError{Attempts: []AttemptError{{Err: &ModelError{Kind: KindRateLimited}}}}))
	assert.Equal(t, KindCanceled, KindOf(context.DeadlineExceeded))
	assert.Equal(t, KindUnknown, KindOf(errors.New("x")))
}
