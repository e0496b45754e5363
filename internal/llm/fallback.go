package llm

import (
	"context"
	"fmt"
)

// ContinuePredicate decides whether a failure should advance to the next
// candidate or abort the chain.
type ContinuePredicate func(ctx context.Context, err error) bool

// ContinueUnlessCanceled advances on every failure except a cancelled or
// expired context.
func ContinueUnlessCanceled(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	return KindOf(err) != KindCanceled
}

// TryInOrder calls try for each candidate sequentially and returns the
// first success together with the candidate that produced it. When a
// failure is rejected by shouldContinue, or every candidate fails, the
// result is a *ChainError listing each attempt.
func TryInOrder[C, T any](
	ctx context.Context,
	candidates []C,
	try func(ctx context.Context, candidate C) (T, error),
	shouldContinue ContinuePredicate,
) (T, C, error) {
	var (
		zeroT T
		zeroC C
	)
	if shouldContinue == nil {
		shouldContinue = ContinueUnlessCanceled
	}

	chainErr := &ChainError{}
	for _, c := range candidates {
		out, err := try(ctx, c)
		if err == nil {
			return out, c, nil
		}
		chainErr.Attempts = append(chainErr.Attempts, AttemptError{
			Candidate: fmt.Sprint(c),
			Err:       err,
		})
		if !shouldContinue(ctx, err) {
			break
		}
	}

	if len(chainErr.Attempts) == 0 {
		return zeroT, zeroC, ErrNoCandidates
	}
	return zeroT, zeroC, chainErr
}
