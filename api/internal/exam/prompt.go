package exam

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type QuestionType int

const (
	None QuestionType = iota
	SingleChoice
	MultiChoice
	FillIn
	Mixed
)

// labels are the section headings the type-change prompt asks the model to return.
var labels = map[QuestionType]string{
	None:         "無",
	SingleChoice: "單選題",
	MultiChoice:  "多選題",
	FillIn:       "選填題",
	Mixed:        "混合題",
}

func (q QuestionType) Label() string {
	if l, ok := labels[q]; ok {
		return l
	}
	return labels[None]
}

func (q QuestionType) String() string {
	switch q {
	case SingleChoice:
		return "single_choice"
	case MultiChoice:
		return "multi_choice"
	case FillIn:
		return "fill_in"
	case Mixed:
		return "mixed"
	default:
		return "none"
	}
}

// ParseQuestionType maps a model heading to a type. Unknown headings mean no change.
func ParseQuestionType(label string) QuestionType {
	switch strings.TrimSpace(label) {
	case "單選題":
		return SingleChoice
	case "多選題":
		return MultiChoice
	case "選填題", "填充題":
		return FillIn
	case "混合題", "非選擇題", "混合題或非選擇題":
		return Mixed
	default:
		return None
	}
}

// Templates holds the answer instruction for every question type.
type Templates struct {
	SingleChoice string `yaml:"single_choice"`
	MultiChoice  string `yaml:"multi_choice"`
	FillIn       string `yaml:"fill_in"`
	Mixed        string `yaml:"mixed"`
}

func DefaultTemplates() Templates {
	return Templates{
		SingleChoice: "這是單選題 只有一個正確答案 只要回答我答案選項12345就好 不用答案内容",
		MultiChoice:  "這是多選題 可能有多個正確答案 只要回答我答案選項12345就好 不用答案内容 請用list回答",
		FillIn:       "這是選填題 只要回答我答案就好 請用latex回答",
		Mixed: "這是混合題 可能是 單選題（只要回答我答案就好） " +
			"多選題（用list回答 只要回答我答案就好） " +
			"填充題（用latex回答 只要回答我答案就好） " +
			"非選擇題（用latex回答 給我最簡計算過程）",
	}
}

// LoadTemplates reads a YAML override; missing keys keep their defaults.
func LoadTemplates(path string) (Templates, error) {
	t := DefaultTemplates()
	if strings.TrimSpace(path) == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("prompt templates: %w", err)
	}
	var override Templates
	if err := yaml.Unmarshal(data, &override); err != nil {
		return t, fmt.Errorf("prompt templates %s: %w", path, err)
	}
	if override.SingleChoice != "" {
		t.SingleChoice = override.SingleChoice
	}
	if override.MultiChoice != "" {
		t.MultiChoice = override.MultiChoice
	}
	if override.FillIn != "" {
		t.FillIn = override.FillIn
	}
	if override.Mixed != "" {
		t.Mixed = override.Mixed
	}
	return t, nil
}

// For returns the instruction for q; None falls back to single choice.
func (t Templates) For(q QuestionType) string {
	switch q {
	case MultiChoice:
		return t.MultiChoice
	case FillIn:
		return t.FillIn
	case Mixed:
		return t.Mixed
	case SingleChoice, None:
		return t.SingleChoice
	}
	return t.SingleChoice
}

// PromptState is the instruction sent with every answer request.
// Once Mixed is set it stays set for the rest of the session.
type PromptState struct {
	Active string
	Mixed  bool
}

func (s PromptState) switchTo(q QuestionType, t Templates) PromptState {
	switch {
	case q == None || s.Mixed:
		return s
	case q == Mixed:
		return PromptState{Active: t.Mixed, Mixed: true}
	default:
		return PromptState{Active: t.For(q)}
	}
}

// ForBlock applies tc when the block starts exactly at the changed section.
func (s PromptState) ForBlock(first int, tc TypeChange, t Templates) PromptState {
	if !tc.Present() || first != tc.Start {
		return s
	}
	return s.switchTo(tc.Type, t)
}

// ForSet applies tc when any question of a carried-over group is where the section starts.
func (s PromptState) ForSet(set []int, tc TypeChange, t Templates) PromptState {
	if !tc.Present() {
		return s
	}
	for _, n := range set {
		if n == tc.Start {
			return s.switchTo(tc.Type, t)
		}
	}
	return s
}
