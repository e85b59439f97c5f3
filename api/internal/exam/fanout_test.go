package exam

import (
	"context"
	"reflect"
	"testing"
	"time"
)

func TestFanOutCompletionOrder(t *testing.T) {
	delays := map[int]time.Duration{1: 90 * time.Millisecond, 2: 10 * time.Millisecond, 3: 50 * time.Millisecond}
	answer := func(ctx context.Context, r AnswerRequest) Answer {
		time.Sleep(delays[r.Block[0]])
		return Answer{Block: r.Block, Text: "x"}
	}
	reqs := []AnswerRequest{{Block: Block{1}}, {Block: Block{2}}, {Block: Block{3}}}

	var got []int
	for a := range fanOut(context.Background(), answer, reqs) {
		got = append(got, a.Block[0])
	}
	if want := []int{2, 3, 1}; !reflect.DeepEqual(got, want) {
		t.Errorf("yield order = %v, want %v", got, want)
	}
}

func TestFanOutRunsConcurrently(t *testing.T) {
	answer := func(ctx context.Context, r AnswerRequest) Answer {
		time.Sleep(60 * time.Millisecond)
		return Answer{Block: r.Block}
	}
	reqs := make([]AnswerRequest, 8)
	for i := range reqs {
		reqs[i] = AnswerRequest{Block: Block{i + 1}}
	}
	start := time.Now()
	n := 0
	for range fanOut(context.Background(), answer, reqs) {
		n++
	}
	if n != len(reqs) {
		t.Fatalf("got %d answers, want %d", n, len(reqs))
	}
	if took := time.Since(start); took > 400*time.Millisecond {
		t.Errorf("fan-out looks sequential: took %v", took)
	}
}

func TestFanOutEarlyStop(t *testing.T) {
	answer := func(ctx context.Context, r AnswerRequest) Answer { return Answer{Block: r.Block} }
	reqs := []AnswerRequest{{Block: Block{1}}, {Block: Block{2}}, {Block: Block{3}}}
	n := 0
	for range fanOut(context.Background(), answer, reqs) {
		n++
		break
	}
	if n != 1 {
		t.Errorf("got %d answers before break", n)
	}
}
