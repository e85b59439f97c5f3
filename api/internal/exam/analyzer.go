package exam

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"exam-reader/api/internal/llm"
	"exam-reader/api/internal/llm/types"
)

const numbersPrompt = `
1.請忽略題目内容 列出本圖片中有題號且出現的獨立題目的題號，或是題組中在本圖片中出現的題目，但不包含題組中未在圖片中出現的題目。最後輸出一個題號list:"number":[int]
2.假如看到紙上有寫 "xx-xx題為題組"（xx是一個整數 可能是個位數或十位數）列出題組的題號(xx-xx中的所有數字) 給我一個"set"list 告訴我幾到幾題為題組 假如沒有題組就給我一個空list
3.注意1.和2.是互相獨立的任務
4.有可能set不完全在number中 但set中至少有一題在number中
Use JSON with keys: "set":[int],"number":[int]
Example of a valid JSON response:
{
    "set":[2,3],
    "number":[1,2,3,4]
}`

const typeChangePrompt = `
假如有粗體字寫題型和配分 比如："一、單選題（占xx分）" , "二、多選題（占xx分）" , "第貳部分、混合題或非選擇題（占xx分）"
請在json response中寫新題型和新題型的第一題的題號入比如:{"class":"單選題","n":4} 題型可能是"單選題" "多選題" "選填題" "混合題"(混合題或非選擇題) 之一
若沒有有粗體字寫題型和配分 則 {"class":"無","n":0}

Use JSON with keys: "class":str,"n":int
Example of a valid JSON response:
{
    "class": "單選題",
    "n": 4
}`

// DefaultAnalyzeTemperature keeps segmentation close to deterministic.
const DefaultAnalyzeTemperature = 0.2

// Analyzer segments a page with a JSON-mode engine.
type Analyzer struct {
	engine      llm.Engine
	temperature float64
	log         zerolog.Logger
}

func NewAnalyzer(engine llm.Engine, temperature float64, log zerolog.Logger) *Analyzer {
	return &Analyzer{engine: engine, temperature: temperature, log: log}
}

// Analyze runs number/set detection and type-change detection concurrently and waits
// for both. Failures come back as PageAnalysis.Failed / TypeChange.Failed.
func (a *Analyzer) Analyze(ctx context.Context, image []byte) (PageAnalysis, TypeChange) {
	var (
		pa PageAnalysis
		tc TypeChange
		g  errgroup.Group
	)
	g.Go(func() error {
		var err error
		if pa, err = a.DetectNumbers(ctx, image); err != nil {
			a.log.Warn().Err(err).Msg("number detection failed")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if tc, err = a.DetectTypeChange(ctx, image); err != nil {
			a.log.Warn().Err(err).Msg("type change detection failed")
		}
		return nil
	})
	_ = g.Wait()
	return pa, tc
}

// DetectNumbers returns the question numbers and the question group on the page.
// On error the result is empty and Failed.
func (a *Analyzer) DetectNumbers(ctx context.Context, image []byte) (PageAnalysis, error) {
	var out struct {
		Set    []int  `json:"set"`
		Number []int  `json:"number"`
		Error  string `json:"error"`
	}
	if err := a.requestJSON(ctx, image, numbersPrompt, &out); err != nil {
		return PageAnalysis{Failed: true}, &AnalysisError{Kind: "numbers", Err: err}
	}
	if out.Error != "" {
		return PageAnalysis{Failed: true}, &AnalysisError{Kind: "numbers", Err: errors.New(out.Error)}
	}
	return PageAnalysis{Numbers: out.Number, Set: out.Set}, nil
}

// DetectTypeChange returns the section heading on the page, if any.
func (a *Analyzer) DetectTypeChange(ctx context.Context, image []byte) (TypeChange, error) {
	var out struct {
		Class string `json:"class"`
		N     int    `json:"n"`
		Error string `json:"error"`
	}
	if err := a.requestJSON(ctx, image, typeChangePrompt, &out); err != nil {
		return TypeChange{Type: None, Failed: true}, &AnalysisError{Kind: "type_change", Err: err}
	}
	if out.Error != "" {
		return TypeChange{Type: None, Failed: true}, &AnalysisError{Kind: "type_change", Err: errors.New(out.Error)}
	}
	label := strings.TrimSpace(out.Class)
	return TypeChange{Type: ParseQuestionType(label), Label: label, Start: out.N}, nil
}

func (a *Analyzer) requestJSON(ctx context.Context, image []byte, prompt string, v any) error {
	start := time.Now()
	reply := a.engine.Complete(ctx, types.Request{
		Messages: []types.Message{
			types.UserImages(types.DetailHigh, image),
			types.UserText(strings.TrimSpace(prompt)),
		},
		JSON:        true,
		Temperature: types.Float(a.temperature),
	})
	a.log.Debug().
		Str("engine", a.engine.Name()).
		Int64("took_ms", time.Since(start).Milliseconds()).
		Msg("analysis request")
	if reply.Failed() {
		return reply.Err
	}
	return json.Unmarshal([]byte(reply.Content), v)
}
