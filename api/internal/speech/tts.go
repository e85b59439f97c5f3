package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"exam-reader/api/internal/util"
)

const (
	defaultEndpoint = "https://translate.google.com/translate_tts"
	// the endpoint rejects longer queries
	maxChunkRunes = 100
)

// Player plays an audio file to completion.
type Player interface {
	Play(ctx context.Context, path string) error
}

// TTS synthesizes speech with the Google Translate voice and plays it synchronously.
type TTS struct {
	Lang     string
	Endpoint string

	player Player
	httpc  *http.Client
	log    zerolog.Logger
}

func New(lang string, player Player, log zerolog.Logger) *TTS {
	return &TTS{
		Lang:     lang,
		Endpoint: defaultEndpoint,
		player:   player,
		httpc:    &http.Client{Timeout: 30 * time.Second},
		log:      log,
	}
}

// WithHTTPClient overrides the internal HTTP client.
func (t *TTS) WithHTTPClient(c *http.Client) *TTS {
	if c != nil {
		t.httpc = c
	}
	return t
}

// Speak is best-effort: errors are logged and swallowed.
func (t *TTS) Speak(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	t.log.Info().Str("text", text).Msg("speak")
	if err := t.speak(ctx, text); err != nil {
		t.log.Warn().Err(err).Msg("tts")
	}
}

func (t *TTS) speak(ctx context.Context, text string) error {
	audio, err := t.Synthesize(ctx, text)
	if err != nil {
		return err
	}
	f, err := os.CreateTemp("", "speech-*.mp3")
	if err != nil {
		return err
	}
	path := f.Name()
	defer os.Remove(path)
	if _, err := f.Write(audio); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if t.player == nil {
		return fmt.Errorf("no audio player configured")
	}
	return t.player.Play(ctx, path)
}

// Synthesize returns MP3 audio for text. Long text is fetched in chunks and concatenated.
func (t *TTS) Synthesize(ctx context.Context, text string) ([]byte, error) {
	chunks := splitText(text, maxChunkRunes)
	var out bytes.Buffer
	for i, chunk := range chunks {
		q := url.Values{}
		q.Set("ie", "UTF-8")
		q.Set("q", chunk)
		q.Set("tl", t.Lang)
		q.Set("client", "tw-ob")
		q.Set("ttsspeed", "1")
		q.Set("total", strconv.Itoa(len(chunks)))
		q.Set("idx", strconv.Itoa(i))
		q.Set("textlen", strconv.Itoa(len([]rune(chunk))))

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.Endpoint+"?"+q.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "Mozilla/5.0")
		resp, err := t.httpc.Do(req)
		if err != nil {
			return nil, fmt.Errorf("tts: %w", err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("tts: read: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("tts %d: %s", resp.StatusCode, util.TruncateBytes(body, 256))
		}
		out.Write(body)
	}
	return out.Bytes(), nil
}

// splitText cuts text into pieces of at most limit runes, preferring to break after
// punctuation or spaces.
func splitText(text string, limit int) []string {
	runes := []rune(strings.TrimSpace(text))
	var chunks []string
	for len(runes) > limit {
		cut := limit
		for i := limit; i > limit/2; i-- {
			if isBreak(runes[i-1]) {
				cut = i
				break
			}
		}
		if s := strings.TrimSpace(string(runes[:cut])); s != "" {
			chunks = append(chunks, s)
		}
		runes = runes[cut:]
	}
	if s := strings.TrimSpace(string(runes)); s != "" {
		chunks = append(chunks, s)
	}
	return chunks
}

func isBreak(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsPunct(r)
}
