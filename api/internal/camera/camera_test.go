package camera

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type speakerFunc func(string)

func (f speakerFunc) Speak(_ context.Context, text string) { f(text) }

func TestCapture(t *testing.T) {
	dir := t.TempDir()
	var spoken []string
	c := New("libcamera-still", dir, 500*time.Millisecond, 90, 0,
		speakerFunc(func(s string) { spoken = append(spoken, s) }), zerolog.Nop())
	c.now = func() time.Time { return time.Date(2024, 5, 1, 9, 30, 15, 0, time.UTC) }

	var gotArgs []string
	c.run = func(_ context.Context, name string, args ...string) error {
		gotArgs = args
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 4)), nil); err != nil {
			return err
		}
		return os.WriteFile(args[len(args)-1], buf.Bytes(), 0o644)
	}

	path, err := c.Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if want := filepath.Join(dir, "20240501_093015.jpg"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	if len(gotArgs) < 3 || gotArgs[2] != "500" {
		t.Errorf("args = %v", gotArgs)
	}
	if len(spoken) != 1 || spoken[0] != "拍照成功" {
		t.Errorf("spoken = %v", spoken)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 4 || cfg.Height != 8 {
		t.Errorf("photo not rotated: %dx%d", cfg.Width, cfg.Height)
	}
}

func TestCaptureKeepsUnrotatedPhoto(t *testing.T) {
	c := New("cam", t.TempDir(), 0, 90, 0, nil, zerolog.Nop())
	c.run = func(_ context.Context, _ string, args ...string) error {
		return os.WriteFile(args[len(args)-1], []byte("not an image"), 0o644)
	}
	path, err := c.Capture(context.Background())
	if err != nil {
		t.Fatalf("rotation failure must not fail the capture: %v", err)
	}
	if b, _ := os.ReadFile(path); string(b) != "not an image" {
		t.Errorf("photo changed: %q", b)
	}
}

func TestCaptureCommandFailure(t *testing.T) {
	c := New("cam", t.TempDir(), 0, 90, 0, nil, zerolog.Nop())
	c.run = func(context.Context, string, ...string) error { return errors.New("no camera") }
	if _, err := c.Capture(context.Background()); err == nil {
		t.Error("expected error")
	}
}
