package app

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"exam-reader/api/internal/config"
)

func clearDBEnv(t *testing.T) {
	for _, k := range []string{"DATABASE_URL", "POSTGRES_PASSWORD", "POSTGRES_USER", "PGHOST", "PGPORT", "POSTGRES_DB"} {
		t.Setenv(k, "")
	}
}

func TestResolveDSN(t *testing.T) {
	clearDBEnv(t)
	if got := resolveDSN(); got != "" {
		t.Errorf("empty env dsn = %q", got)
	}

	t.Setenv("POSTGRES_PASSWORD", "s3cret")
	t.Setenv("PGHOST", "pg")
	got := resolveDSN()
	if got != "postgres://exam:s3cret@pg:5432/exam?sslmode=disable" {
		t.Errorf("dsn = %q", got)
	}
	if sum := safeDSNSummary(got); sum != "host=pg port=5432 db=exam user=exam" || strings.Contains(sum, "s3cret") {
		t.Errorf("summary = %q", sum)
	}

	t.Setenv("DATABASE_URL", "postgres://u:p@h/d")
	if got := resolveDSN(); got != "postgres://u:p@h/d" {
		t.Errorf("DATABASE_URL not preferred: %q", got)
	}
	if sum := safeDSNSummary("postgres://u:p@h/d"); sum != "host=h db=d user=u" {
		t.Errorf("summary = %q", sum)
	}
}

func TestEnginesOnlyConfigured(t *testing.T) {
	e := Engines(&config.Config{OpenAIAPIKey: "k", OpenAIModel: "o1"})
	if e.OpenAI == nil || e.OpenAI.GetModel() != "o1" {
		t.Errorf("openai = %v", e.OpenAI)
	}
	if e.Azure != nil || e.Gemini != nil {
		t.Error("unconfigured engines built")
	}
	if e.Placeholder == nil {
		t.Error("placeholder missing")
	}
}

func TestNewPipeline(t *testing.T) {
	log := zerolog.Nop()
	cfg := &config.Config{
		AzureAPIKey: "k", AzureEndpoint: "https://x.openai.azure.com", AzureDeployment: "gpt4o",
		AnalyzeEngine: "azure", AnswerEngine: "skip", AnalyzeTemperature: 0.2,
	}
	p, err := NewPipeline(cfg, log)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	if p.Answerer.Name() != "skip" {
		t.Errorf("answerer = %s", p.Answerer.Name())
	}

	cfg.AnalyzeEngine = "skip"
	if _, err := NewPipeline(cfg, log); err == nil {
		t.Error("placeholder accepted as analysis engine")
	}
	cfg.AnalyzeEngine = "gemini"
	if _, err := NewPipeline(cfg, log); err == nil {
		t.Error("unconfigured analysis engine accepted")
	}
}
