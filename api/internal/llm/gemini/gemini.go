package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"exam-reader/api/internal/llm/types"
	"exam-reader/api/internal/util"
)

type Engine struct {
	APIKey string
	Model  string
}

func New(apiKey, model string) *Engine {
	return &Engine{
		APIKey: strings.TrimSpace(apiKey),
		Model:  strings.TrimSpace(model),
	}
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) SetModel(m string) {
	if m = strings.TrimSpace(m); m != "" {
		e.Model = m
	}
}

// Complete flattens the chat turns into one multimodal prompt; Gemini has no
// per-image detail hint, so Detail is ignored.
func (e *Engine) Complete(ctx context.Context, in types.Request) types.Reply {
	if e.APIKey == "" {
		return types.Reply{Err: errors.New("GEMINI_API_KEY is empty")}
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.APIKey))
	if err != nil {
		return types.Fail("gemini: client: %w", err)
	}
	defer cl.Close()

	model := e.Model
	if in.Model != "" {
		model = in.Model
	}
	m := cl.GenerativeModel(model)
	if m == nil {
		return types.Reply{Err: fmt.Errorf("gemini: model is nil")}
	}
	if in.JSON {
		m.ResponseMIMEType = "application/json"
	}
	if in.Temperature != nil {
		m.SetTemperature(float32(*in.Temperature))
	}

	parts := buildParts(in.Messages)
	if len(parts) == 0 {
		return types.Reply{Err: errors.New("gemini: empty prompt")}
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return types.Fail("gemini: generate: %w", err)
	}
	txt := strings.TrimSpace(firstText(resp))
	if txt == "" {
		return types.Reply{Err: errors.New("gemini: empty response")}
	}
	if in.JSON {
		txt = util.StripCodeFences(txt)
	}
	return types.Reply{Content: txt}
}

func buildParts(msgs []types.Message) []genai.Part {
	var parts []genai.Part
	for _, msg := range msgs {
		for _, img := range msg.Images {
			parts = append(parts, genai.Blob{MIMEType: util.PickMIME(img.MIME, img.Data), Data: img.Data})
		}
		if s := strings.TrimSpace(msg.Text); s != "" {
			parts = append(parts, genai.Text(s))
		}
	}
	return parts
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return ""
}
