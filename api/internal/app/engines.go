package app

import (
	"fmt"

	"github.com/rs/zerolog"

	"exam-reader/api/internal/config"
	"exam-reader/api/internal/exam"
	"exam-reader/api/internal/llm"
	"exam-reader/api/internal/llm/gemini"
	"exam-reader/api/internal/llm/gpt"
)

// Engines builds every backend that has credentials; the rest stay nil.
func Engines(cfg *config.Config) llm.Engines {
	e := llm.Engines{Placeholder: llm.NewPlaceholder("")}
	if cfg.AzureAPIKey != "" && cfg.AzureEndpoint != "" {
		e.Azure = gpt.NewAzure(cfg.AzureEndpoint, cfg.AzureAPIKey, cfg.AzureDeployment, cfg.AzureAPIVersion)
	}
	if cfg.OpenAIAPIKey != "" {
		e.OpenAI = gpt.New(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}
	if cfg.GeminiAPIKey != "" {
		e.Gemini = gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel)
	}
	return e
}

// Pipeline is what both front ends need to process pages.
type Pipeline struct {
	Engines   llm.Engines
	Analyzer  *exam.Analyzer
	Answerer  llm.Engine
	Templates exam.Templates
}

// NewPipeline resolves the configured engines. The analysis engine must be a real
// vision backend; the answer engine may be the placeholder.
func NewPipeline(cfg *config.Config, log zerolog.Logger) (*Pipeline, error) {
	engines := Engines(cfg)
	analyze, err := engines.GetEngine(cfg.AnalyzeEngine)
	if err != nil {
		return nil, fmt.Errorf("analyze engine: %w", err)
	}
	if analyze.Name() == "skip" {
		return nil, fmt.Errorf("analyze engine: %q cannot read photos", cfg.AnalyzeEngine)
	}
	answer, err := engines.GetEngine(cfg.AnswerEngine)
	if err != nil {
		return nil, fmt.Errorf("answer engine: %w", err)
	}

	templates := exam.DefaultTemplates()
	if cfg.PromptsFile != "" {
		if templates, err = exam.LoadTemplates(cfg.PromptsFile); err != nil {
			return nil, err
		}
	}

	log.Info().
		Str("analyze_engine", analyze.Name()).
		Str("analyze_model", analyze.GetModel()).
		Str("answer_engine", answer.Name()).
		Str("answer_model", answer.GetModel()).
		Msg("engines ready")

	return &Pipeline{
		Engines:   engines,
		Analyzer:  exam.NewAnalyzer(analyze, cfg.AnalyzeTemperature, log),
		Answerer:  answer,
		Templates: templates,
	}, nil
}
