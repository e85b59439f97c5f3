package exam

import (
	"context"
	"fmt"
	"iter"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"exam-reader/api/internal/llm"
	"exam-reader/api/internal/llm/types"
	"exam-reader/api/internal/util"
)

// AnswerFailed is the answer text used when the answer engine fails.
const AnswerFailed = "error"

// Speaker reads text aloud. Implementations are best-effort and never fail the caller.
type Speaker interface {
	Speak(ctx context.Context, text string)
}

type nopSpeaker struct{}

func (nopSpeaker) Speak(context.Context, string) {}

// Page is one processed photo. Results must be drained once; a second iteration yields nothing.
type Page struct {
	ID         string
	Analysis   PageAnalysis
	TypeChange TypeChange
	Carried    *AnswerRequest
	Requests   []AnswerRequest

	results iter.Seq[Answer]
}

// Results yields the carried-over group first, then every block of the page in the
// order the engine finishes them.
func (p *Page) Results() iter.Seq[Answer] { return p.results }

type Processor struct {
	analyzer  *Analyzer
	answerer  atomic.Pointer[engineRef]
	speaker   Speaker
	templates Templates
	log       zerolog.Logger

	mu      sync.Mutex
	session Session
}

func NewProcessor(analyzer *Analyzer, answerer llm.Engine, speaker Speaker, t Templates, log zerolog.Logger) *Processor {
	if speaker == nil {
		speaker = nopSpeaker{}
	}
	p := &Processor{
		analyzer:  analyzer,
		speaker:   speaker,
		templates: t,
		log:       log,
		session:   NewSession(t),
	}
	p.answerer.Store(&engineRef{answerer})
	return p
}

type engineRef struct{ llm.Engine }

// Answerer returns the engine used for new pages.
func (p *Processor) Answerer() llm.Engine { return p.answerer.Load().Engine }

// SetAnswerer switches the answer engine. Pages already begun keep the engine they started with.
func (p *Processor) SetAnswerer(e llm.Engine) {
	if e != nil {
		p.answerer.Store(&engineRef{e})
	}
}

// Session returns a copy of the current run state.
func (p *Processor) Session() Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session
}

// Reset drops the carry-over and restores the single-choice instruction.
func (p *Processor) Reset() {
	p.mu.Lock()
	p.session = NewSession(p.templates)
	p.mu.Unlock()
}

// Process runs one photo against the processor's own session.
func (p *Processor) Process(ctx context.Context, image []byte) *Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	page, next := p.BeginPage(ctx, p.session, image)
	p.session = next
	return page
}

// ProcessFile reads a captured photo and processes it. A read failure is reported by
// voice and returned; the session is not touched.
func (p *Processor) ProcessFile(ctx context.Context, path string) (*Page, error) {
	image, err := os.ReadFile(path)
	if err != nil {
		p.log.Error().Err(err).Str("path", path).Msg("read page image")
		p.speaker.Speak(ctx, "讀取照片失敗")
		return nil, fmt.Errorf("%w %s: %w", ErrImageRead, path, err)
	}
	return p.Process(ctx, image), nil
}

// BeginPage analyzes one photo against prior and returns the page with its lazy
// results together with the session for the next photo. Prompt updates are settled
// here, in dispatch order, so draining the results never touches session state.
func (p *Processor) BeginPage(ctx context.Context, prior Session, image []byte) (*Page, Session) {
	pageID := uuid.NewString()
	log := p.log.With().Str("page_id", pageID).Logger()

	pa, tc := p.analyzer.Analyze(ctx, image)
	p.announce(ctx, pa, tc)
	if pa.Failed {
		pa.Numbers, pa.Set = nil, nil
	}

	carried, reqs, next := Plan(prior, image, pa, tc, p.templates)
	log.Info().
		Ints("numbers", pa.Numbers).
		Ints("set", pa.Set).
		Str("type_change", tc.Type.String()).
		Int("type_change_start", tc.Start).
		Bool("carried", carried != nil).
		Bool("carry_next", next.Pending != nil).
		Int("blocks", len(reqs)).
		Msg("page planned")

	page := &Page{
		ID:         pageID,
		Analysis:   pa,
		TypeChange: tc,
		Carried:    carried,
		Requests:   reqs,
	}
	eng := p.Answerer()
	answer := func(ctx context.Context, r AnswerRequest) Answer { return p.answer(ctx, eng, log, r) }

	var started atomic.Bool
	page.results = func(yield func(Answer) bool) {
		if !started.CompareAndSwap(false, true) {
			return
		}
		if carried != nil {
			if !yield(answer(ctx, *carried)) {
				return
			}
		}
		for a := range fanOut(ctx, answer, reqs) {
			if !yield(a) {
				return
			}
		}
	}
	return page, next
}

func (p *Processor) announce(ctx context.Context, pa PageAnalysis, tc TypeChange) {
	if pa.Failed {
		p.speaker.Speak(ctx, "獲取題目數量失敗")
	} else {
		msg := fmt.Sprintf("拍到 %s 題", util.FormatInts(pa.Numbers))
		if len(pa.Set) > 0 {
			msg += fmt.Sprintf("，題組為第 %s 題", util.JoinInts(pa.Set, ", "))
		} else {
			msg += "，沒有題組"
		}
		p.speaker.Speak(ctx, msg)
	}

	switch {
	case tc.Failed:
		p.speaker.Speak(ctx, "獲取題型變換失敗")
	case tc.Present():
		label := tc.Label
		if label == "" {
			label = tc.Type.Label()
		}
		p.speaker.Speak(ctx, fmt.Sprintf("題型變換為 %s，從第 %d 題開始", label, tc.Start))
	}
}

func (p *Processor) answer(ctx context.Context, eng llm.Engine, log zerolog.Logger, r AnswerRequest) Answer {
	start := time.Now()
	reply := eng.Complete(ctx, types.Request{
		Messages: []types.Message{
			types.UserImages(types.DetailHigh, r.Images...),
			types.UserText(r.Prompt),
		},
	})
	text := reply.Content
	if reply.Failed() {
		log.Warn().Err(reply.Err).Stringer("block", r.Block).Msg("answer failed")
		text = AnswerFailed
	}
	log.Debug().
		Stringer("block", r.Block).
		Str("engine", eng.Name()).
		Str("prompt", r.Prompt).
		Int64("took_ms", time.Since(start).Milliseconds()).
		Msg("block answered")
	return Answer{Block: r.Block, Prompt: r.Prompt, Text: text, CarryOver: r.CarryOver}
}
