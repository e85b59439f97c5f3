package exam

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"exam-reader/api/internal/llm/types"
)

// scriptedEngine answers analysis prompts with fixed JSON keyed by the page image.
type scriptedEngine struct {
	numbers map[string]string // image -> numbers JSON
	changes map[string]string // image -> type change JSON
	fail    bool
}

func (e *scriptedEngine) Name() string     { return "scripted" }
func (e *scriptedEngine) GetModel() string { return "test" }

func (e *scriptedEngine) Complete(_ context.Context, req types.Request) types.Reply {
	if e.fail {
		return types.Fail("boom")
	}
	img := string(req.Messages[0].Images[0].Data)
	prompt := req.Messages[1].Text
	if strings.Contains(prompt, `"class"`) {
		if js, ok := e.changes[img]; ok {
			return types.Reply{Content: js}
		}
		return types.Reply{Content: `{"class":"無","n":0}`}
	}
	if js, ok := e.numbers[img]; ok {
		return types.Reply{Content: js}
	}
	return types.Reply{Content: `{"set":[],"number":[]}`}
}

// delayedEngine answers every prompt with "ans" after the delay registered for its prefix.
type delayedEngine struct {
	delays map[string]time.Duration // prompt prefix -> delay
	answer string

	mu      sync.Mutex
	prompts []string
	images  [][][]byte
}

func (e *delayedEngine) Name() string     { return "delayed" }
func (e *delayedEngine) GetModel() string { return "test" }

func (e *delayedEngine) Complete(ctx context.Context, req types.Request) types.Reply {
	prompt := req.Messages[len(req.Messages)-1].Text
	var imgs [][]byte
	for _, im := range req.Messages[0].Images {
		imgs = append(imgs, im.Data)
	}
	e.mu.Lock()
	e.prompts = append(e.prompts, prompt)
	e.images = append(e.images, imgs)
	e.mu.Unlock()

	for prefix, d := range e.delays {
		if strings.HasPrefix(prompt, prefix) {
			select {
			case <-time.After(d):
			case <-ctx.Done():
				return types.Reply{Err: ctx.Err()}
			}
		}
	}
	answer := e.answer
	if answer == "" {
		answer = "skip"
	}
	return types.Reply{Content: answer}
}

type recordingSpeaker struct {
	mu    sync.Mutex
	texts []string
}

func (s *recordingSpeaker) Speak(_ context.Context, text string) {
	s.mu.Lock()
	s.texts = append(s.texts, text)
	s.mu.Unlock()
}

func (s *recordingSpeaker) said() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.texts...)
}

func newTestProcessor(analysis *scriptedEngine, answers *delayedEngine, sp Speaker) *Processor {
	log := zerolog.Nop()
	return NewProcessor(NewAnalyzer(analysis, DefaultAnalyzeTemperature, log), answers, sp, DefaultTemplates(), log)
}

func collect(p *Page) []string {
	var out []string
	for a := range p.Results() {
		out = append(out, a.String())
	}
	return out
}

func newTestLogger() zerolog.Logger { return zerolog.Nop() }
