// Command console is the exam reader driver: press 1 to photograph a page, hear what
// was found and the answers, and carry question groups over to the next page.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog"

	"exam-reader/api/internal/app"
	"exam-reader/api/internal/camera"
	"exam-reader/api/internal/config"
	"exam-reader/api/internal/exam"
	"exam-reader/api/internal/logger"
	"exam-reader/api/internal/speech"
	"exam-reader/api/internal/store"
)

const usage = "輸入 1 拍照，q 離開（f <路徑> 讀取照片，r 重新開始）"

type driver struct {
	proc    *exam.Processor
	cam     *camera.Camera
	speaker exam.Speaker
	answers *store.AnswerRepo
	out     io.Writer
	log     zerolog.Logger
}

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipe, err := app.NewPipeline(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("engines")
	}

	db, answers, err := app.OpenStore(ctx, log)
	if err != nil {
		log.Fatal().Err(err).Msg("database")
	}
	if db != nil {
		defer db.Close()
	}

	tts := speech.New(cfg.TTSLang, speech.NewCmdPlayer(cfg.TTSPlayer), log)
	d := &driver{
		proc:    exam.NewProcessor(pipe.Analyzer, pipe.Answerer, tts, pipe.Templates, log),
		cam:     camera.New(cfg.CameraCmd, cfg.CaptureDir, cfg.CameraWarmup, cfg.RotateDegrees, cfg.MaxImagePixels, tts, log),
		speaker: tts,
		answers: answers,
		out:     os.Stdout,
		log:     log,
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "q",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("readline")
	}
	defer rl.Close()
	d.out = rl.Stdout()

	fmt.Fprintln(d.out, usage)
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("readline")
			return
		}
		if quit := d.handle(ctx, strings.TrimSpace(line)); quit {
			return
		}
		if ctx.Err() != nil {
			return
		}
	}
}

// handle runs one REPL command and reports whether the loop should stop.
func (d *driver) handle(ctx context.Context, line string) bool {
	switch {
	case line == "q":
		return true
	case line == "1":
		path, err := d.cam.Capture(ctx)
		if err != nil {
			d.log.Error().Err(err).Msg("capture")
			d.speaker.Speak(ctx, "拍照失敗")
			return false
		}
		d.processFile(ctx, path)
	case strings.HasPrefix(line, "f "):
		d.processFile(ctx, strings.TrimSpace(strings.TrimPrefix(line, "f ")))
	case line == "r":
		d.proc.Reset()
		fmt.Fprintln(d.out, "已重新開始")
	default:
		fmt.Fprintln(d.out, usage)
	}
	return false
}

func (d *driver) processFile(ctx context.Context, path string) {
	page, err := d.proc.ProcessFile(ctx, path)
	if err != nil {
		fmt.Fprintln(d.out, err)
		return
	}
	image, _ := os.ReadFile(path)
	rec := d.answers.ForPage(page.ID, "console", image, d.proc.Answerer().Name())

	for a := range page.Results() {
		fmt.Fprintln(d.out, a.String())
		d.speaker.Speak(ctx, a.String())
		if err := rec.Record(ctx, a); err != nil {
			d.log.Warn().Err(err).Str("page_id", page.ID).Msg("record answer")
		}
	}
}
