package speech

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

type playerFunc func(path string) error

func (f playerFunc) Play(_ context.Context, path string) error { return f(path) }

func TestSplitText(t *testing.T) {
	if got := splitText("  短句  ", 100); len(got) != 1 || got[0] != "短句" {
		t.Errorf("short text = %q", got)
	}
	long := strings.Repeat("第1題答案是3，", 20)
	chunks := splitText(long, 100)
	if len(chunks) < 2 {
		t.Fatalf("chunks = %d", len(chunks))
	}
	var joined strings.Builder
	for _, c := range chunks {
		if n := len([]rune(c)); n > 100 {
			t.Errorf("chunk too long: %d runes", n)
		}
		if !strings.HasSuffix(c, "，") && c != chunks[len(chunks)-1] {
			t.Errorf("chunk not cut at punctuation: %q", c)
		}
		joined.WriteString(c)
	}
	if joined.String() != long {
		t.Error("chunks lost text")
	}
	if got := splitText("   ", 10); len(got) != 0 {
		t.Errorf("blank text = %q", got)
	}
}

func TestSpeak(t *testing.T) {
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("tl") != "zh-TW" {
			t.Errorf("tl = %q", r.URL.Query().Get("tl"))
		}
		queries = append(queries, r.URL.Query().Get("q"))
		_, _ = w.Write([]byte("ID3"))
	}))
	defer srv.Close()

	var played []byte
	tts := New("zh-TW", playerFunc(func(path string) error {
		b, err := os.ReadFile(path)
		played = b
		return err
	}), zerolog.Nop()).WithHTTPClient(srv.Client())
	tts.Endpoint = srv.URL

	tts.Speak(context.Background(), "拍照成功")
	if len(queries) != 1 || queries[0] != "拍照成功" {
		t.Errorf("queries = %q", queries)
	}
	if string(played) != "ID3" {
		t.Errorf("played = %q", played)
	}
}

func TestSpeakSwallowsErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	called := false
	tts := New("zh-TW", playerFunc(func(string) error { called = true; return nil }), zerolog.Nop()).WithHTTPClient(srv.Client())
	tts.Endpoint = srv.URL
	tts.Speak(context.Background(), "測試")
	if called {
		t.Error("player should not run when synthesis fails")
	}
	if _, err := tts.Synthesize(context.Background(), "測試"); err == nil || !strings.Contains(err.Error(), "503") {
		t.Errorf("err = %v", err)
	}
}
