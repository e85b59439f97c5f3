package exam

import (
	"slices"

	"exam-reader/api/internal/util"
)

// PageAnalysis lists the questions detected on one photo. Set may reach beyond
// Numbers when a question group continues on the next page.
type PageAnalysis struct {
	Numbers []int `json:"number"`
	Set     []int `json:"set"`
	Failed  bool  `json:"-"`
}

// TypeChange is a section heading seen on the page: questions of Type start at Start.
type TypeChange struct {
	Type   QuestionType
	Label  string // heading text as the model returned it
	Start  int
	Failed bool
}

// NoChange is the zero TypeChange.
var NoChange = TypeChange{Type: None}

// Present reports whether the change names a real question type.
func (tc TypeChange) Present() bool { return tc.Type != None }

// CarryOver is a question group that started on the previous photo and is answered
// together with the next one.
type CarryOver struct {
	Image      []byte
	Set        []int
	TypeChange TypeChange
}

// Block is a list of question numbers answered in one request.
type Block []int

func (b Block) String() string { return util.FormatInts(b) }

// Session is the state carried between photos of one run.
type Session struct {
	Prompt  PromptState
	Pending *CarryOver
}

// NewSession starts with the single-choice instruction active.
func NewSession(t Templates) Session {
	return Session{Prompt: PromptState{Active: t.For(SingleChoice)}}
}

// Answer is one answered block.
type Answer struct {
	Block     Block
	Prompt    string
	Text      string
	CarryOver bool
}

// String formats the answer the way it is printed and spoken: 第[1]題B.
func (a Answer) String() string {
	return "第" + a.Block.String() + "題" + a.Text
}

func containsAll(haystack, needles []int) bool {
	for _, n := range needles {
		if !slices.Contains(haystack, n) {
			return false
		}
	}
	return true
}
