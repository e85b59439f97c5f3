package main

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func TestRetryDelayFromError(t *testing.T) {
	cases := []struct {
		err  error
		want time.Duration
	}{
		{nil, 0},
		{errors.New("Too Many Requests: retry after 7"), 7 * time.Second},
		{errors.New("too many requests"), 3 * time.Second},
		{errors.New("bad gateway"), time.Second},
	}
	for _, tc := range cases {
		if got := retryDelayFromError(tc.err); got != tc.want {
			t.Errorf("retryDelayFromError(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestShortHashStable(t *testing.T) {
	a, b := shortHash("123:abc"), shortHash("123:abc")
	if a != b || len(a) != 16 {
		t.Errorf("hash = %q / %q", a, b)
	}
	if shortHash("123:abd") == a {
		t.Error("different tokens share a hash")
	}
}

type scriptedUpdates struct {
	batches [][]tgbotapi.Update
	offsets []int
	cancel  context.CancelFunc
}

func (s *scriptedUpdates) GetUpdates(c tgbotapi.UpdateConfig) ([]tgbotapi.Update, error) {
	s.offsets = append(s.offsets, c.Offset)
	if len(s.batches) == 0 {
		s.cancel()
		return nil, nil
	}
	b := s.batches[0]
	s.batches = s.batches[1:]
	return b, nil
}

func TestRunPollingAdvancesOffset(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	src := &scriptedUpdates{
		batches: [][]tgbotapi.Update{{{UpdateID: 10}, {UpdateID: 11}}, {{UpdateID: 12}}},
		cancel:  cancel,
	}
	var seen []int
	runPolling(ctx, src, func(u tgbotapi.Update) { seen = append(seen, u.UpdateID) }, zerolog.Nop())

	if len(seen) != 3 || seen[2] != 12 {
		t.Errorf("handled %v", seen)
	}
	if want := []int{0, 12, 13}; len(src.offsets) != 3 || src.offsets[1] != want[1] || src.offsets[2] != want[2] {
		t.Errorf("offsets = %v, want %v", src.offsets, want)
	}
}
