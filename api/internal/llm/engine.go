package llm

import (
	"context"
	"fmt"
	"strings"

	"exam-reader/api/internal/llm/types"
)

type Engine interface {
	Name() string
	GetModel() string
	Complete(ctx context.Context, req types.Request) types.Reply
}

// Engines holds every configured backend; nil fields are not configured.
type Engines struct {
	Azure       Engine
	OpenAI      Engine
	Gemini      Engine
	Placeholder Engine
}

func (e *Engines) GetEngine(name string) (Engine, error) {
	var eng Engine
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "azure":
		eng = e.Azure
	case "gpt", "openai":
		eng = e.OpenAI
	case "gemini":
		eng = e.Gemini
	case "skip", "placeholder", "":
		eng = e.Placeholder
		if eng == nil {
			eng = NewPlaceholder("")
		}
	default:
		return nil, fmt.Errorf("unknown engine %q; use azure | gpt | gemini | skip", name)
	}
	if eng == nil {
		return nil, fmt.Errorf("engine %q is not configured", name)
	}
	return eng, nil
}
