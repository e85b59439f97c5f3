package camera

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"exam-reader/api/internal/imaging"
)

// Speaker is the voice channel used for capture feedback.
type Speaker interface {
	Speak(ctx context.Context, text string)
}

type runFunc func(ctx context.Context, name string, args ...string) error

// Camera captures stills with a libcamera-compatible command line tool.
type Camera struct {
	Cmd           string
	Dir           string
	Warmup        time.Duration
	RotateDegrees int
	MaxPixels     int

	speaker Speaker
	log     zerolog.Logger
	run     runFunc
	now     func() time.Time
}

func New(cmd, dir string, warmup time.Duration, rotate, maxPixels int, speaker Speaker, log zerolog.Logger) *Camera {
	return &Camera{
		Cmd:           cmd,
		Dir:           dir,
		Warmup:        warmup,
		RotateDegrees: rotate,
		MaxPixels:     maxPixels,
		speaker:       speaker,
		log:           log,
		run:           runCommand,
		now:           time.Now,
	}
}

func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Capture takes one photo named by its timestamp and returns its path. The photo is
// rotated afterwards; a failed rotation is logged and the photo is used as shot.
func (c *Camera) Capture(ctx context.Context) (string, error) {
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return "", fmt.Errorf("capture dir: %w", err)
	}
	path := filepath.Join(c.Dir, c.now().Format("20060102_150405")+".jpg")

	args := []string{"-n", "-t", strconv.FormatInt(c.Warmup.Milliseconds(), 10), "-o", path}
	if err := c.run(ctx, c.Cmd, args...); err != nil {
		return "", fmt.Errorf("capture %s: %w", c.Cmd, err)
	}
	c.log.Info().Str("path", path).Msg("photo saved")
	if c.speaker != nil {
		c.speaker.Speak(ctx, "拍照成功")
	}

	if err := imaging.PrepareFile(path, c.RotateDegrees, c.MaxPixels); err != nil {
		c.log.Warn().Err(err).Str("path", path).Msg("rotate photo")
	} else {
		c.log.Debug().Int("degrees", c.RotateDegrees).Str("path", path).Msg("photo rotated")
	}
	return path, nil
}
