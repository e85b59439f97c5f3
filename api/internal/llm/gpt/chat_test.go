package gpt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"exam-reader/api/internal/llm/types"
)

func TestCompleteJSONWithImage(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("authorization header = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"` + "```json\\n{\\\"set\\\":[],\\\"number\\\":[1]}\\n```" + `"}}]}`))
	}))
	defer srv.Close()

	e := New("sk-test", "gpt-4o").WithEndpoint(srv.URL).WithHTTPClient(srv.Client())
	reply := e.Complete(context.Background(), types.Request{
		Messages: []types.Message{
			types.UserImages(types.DetailHigh, []byte{0xFF, 0xD8, 0xFF, 0xE0}),
			types.UserText("list numbers"),
		},
		JSON:        true,
		Temperature: types.Float(0.2),
	})
	if reply.Failed() {
		t.Fatalf("unexpected failure: %v", reply.Err)
	}
	if reply.Content != `{"set":[],"number":[1]}` {
		t.Errorf("content = %q", reply.Content)
	}

	if got["model"] != "gpt-4o" {
		t.Errorf("model = %v", got["model"])
	}
	if rf, _ := got["response_format"].(map[string]any); rf["type"] != "json_object" {
		t.Errorf("response_format = %v", got["response_format"])
	}
	if got["temperature"] != 0.2 {
		t.Errorf("temperature = %v", got["temperature"])
	}
	msgs := got["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	parts := msgs[0].(map[string]any)["content"].([]any)
	img := parts[0].(map[string]any)["image_url"].(map[string]any)
	if !strings.HasPrefix(img["url"].(string), "data:image/jpeg;base64,") {
		t.Errorf("image url = %v", img["url"])
	}
	if img["detail"] != "high" {
		t.Errorf("detail = %v", img["detail"])
	}
	if msgs[1].(map[string]any)["content"] != "list numbers" {
		t.Errorf("text turn = %v", msgs[1])
	}
}

func TestCompleteAzureURLAndKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/openai/deployments/gpt4o/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if v := r.URL.Query().Get("api-version"); v != "2024-09-01-preview" {
			t.Errorf("api-version = %q", v)
		}
		if k := r.Header.Get("api-key"); k != "az-key" {
			t.Errorf("api-key = %q", k)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"3"}}]}`))
	}))
	defer srv.Close()

	e := NewAzure(srv.URL+"/", "az-key", "gpt4o", "2024-09-01-preview").WithHTTPClient(srv.Client())
	reply := e.Complete(context.Background(), types.Request{Messages: []types.Message{types.UserText("q")}})
	if reply.Failed() || reply.Content != "3" {
		t.Fatalf("reply = %+v", reply)
	}
	if e.Name() != "azure" {
		t.Errorf("name = %q", e.Name())
	}
}

func TestCompleteFailsSoft(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	e := New("sk-test", "gpt-4o").WithEndpoint(srv.URL).WithHTTPClient(srv.Client())
	reply := e.Complete(context.Background(), types.Request{Messages: []types.Message{types.UserText("q")}})
	if !reply.Failed() {
		t.Fatal("expected failure")
	}
	if !strings.Contains(reply.Err.Error(), "429") {
		t.Errorf("error = %v", reply.Err)
	}

	if r := New("", "gpt-4o").Complete(context.Background(), types.Request{}); !r.Failed() {
		t.Error("expected missing key failure")
	}
}
