package exam

import (
	"context"
	"iter"
)

type answerFunc func(ctx context.Context, r AnswerRequest) Answer

// fanOut starts every request at once and yields answers in completion order.
// The channel is buffered so abandoned iterations do not leak blocked goroutines.
func fanOut(ctx context.Context, answer answerFunc, reqs []AnswerRequest) iter.Seq[Answer] {
	return func(yield func(Answer) bool) {
		if len(reqs) == 0 {
			return
		}
		done := make(chan Answer, len(reqs))
		for _, r := range reqs {
			go func() { done <- answer(ctx, r) }()
		}
		for range reqs {
			if !yield(<-done) {
				return
			}
		}
	}
}
