package llm

import (
	"context"

	"exam-reader/api/internal/llm/types"
)

// DefaultPlaceholderAnswer is what the stub engine answers to every request.
const DefaultPlaceholderAnswer = "skip"

// Placeholder is the stub answer engine: no network, fixed reply.
type Placeholder struct {
	Answer string
}

func NewPlaceholder(answer string) *Placeholder {
	if answer == "" {
		answer = DefaultPlaceholderAnswer
	}
	return &Placeholder{Answer: answer}
}

func (p *Placeholder) Name() string     { return "skip" }
func (p *Placeholder) GetModel() string { return "" }

func (p *Placeholder) Complete(ctx context.Context, _ types.Request) types.Reply {
	if err := ctx.Err(); err != nil {
		return types.Reply{Err: err}
	}
	return types.Reply{Content: p.Answer}
}
