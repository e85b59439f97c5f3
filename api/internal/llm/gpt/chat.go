package gpt

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"exam-reader/api/internal/llm/types"
	"exam-reader/api/internal/util"
)

func (e *Engine) Complete(ctx context.Context, in types.Request) types.Reply {
	if e.APIKey == "" {
		if e.azure {
			return types.Fail("AZURE_OPENAI_API_KEY not set")
		}
		return types.Fail("OPENAI_API_KEY not set")
	}
	model := e.Model
	if in.Model != "" {
		model = in.Model
	}

	body := map[string]any{
		"model":    model,
		"messages": buildMessages(in.Messages),
	}
	if in.Temperature != nil {
		body["temperature"] = *in.Temperature
	}
	if in.JSON {
		body["response_format"] = map[string]any{"type": "json_object"}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return types.Fail("%s chat: marshal: %w", e.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.requestURL(), bytes.NewReader(payload))
	if err != nil {
		return types.Fail("%s chat: %w", e.name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	e.authorize(req)

	resp, err := e.httpc.Do(req)
	if err != nil {
		return types.Fail("%s chat: %w", e.name, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return types.Fail("%s chat %d: %s", e.name, resp.StatusCode, strings.TrimSpace(util.TruncateBytes(raw, 1024)))
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return types.Fail("%s chat: bad envelope: %w", e.name, err)
	}
	if len(out.Choices) == 0 {
		return types.Fail("%s chat: empty response; body=%s", e.name, util.TruncateBytes(raw, 512))
	}
	content := strings.TrimSpace(out.Choices[0].Message.Content)
	if in.JSON {
		content = util.StripCodeFences(content)
	}
	return types.Reply{Content: content}
}

// buildMessages maps chat turns to the OpenAI wire format. Turns with images use the
// content-parts form, plain text turns stay a string.
func buildMessages(msgs []types.Message) []any {
	out := make([]any, 0, len(msgs))
	for _, m := range msgs {
		role := m.Role
		if role == "" {
			role = "user"
		}
		if len(m.Images) == 0 {
			out = append(out, map[string]any{"role": role, "content": m.Text})
			continue
		}
		parts := make([]any, 0, len(m.Images)+1)
		for _, img := range m.Images {
			detail := img.Detail
			if detail == "" {
				detail = types.DetailAuto
			}
			parts = append(parts, map[string]any{
				"type": "image_url",
				"image_url": map[string]any{
					"url":    util.MakeDataURL(util.PickMIME(img.MIME, img.Data), img.Data),
					"detail": string(detail),
				},
			})
		}
		if strings.TrimSpace(m.Text) != "" {
			parts = append(parts, map[string]any{"type": "text", "text": m.Text})
		}
		out = append(out, map[string]any{"role": role, "content": parts})
	}
	return out
}
