package types

import "fmt"

// Detail is the resolution hint passed to vision models along with an image.
type Detail string

const (
	DetailHigh Detail = "high"
	DetailLow  Detail = "low"
	DetailAuto Detail = "auto"
)

// Image is an inline image part. MIME is sniffed from Data when empty.
type Image struct {
	Data   []byte
	MIME   string
	Detail Detail
}

// Message is one chat turn. A message may carry text, images or both.
type Message struct {
	Role   string
	Text   string
	Images []Image
}

// Request is one completion call.
type Request struct {
	Messages    []Message
	JSON        bool     // ask the engine for a JSON object reply
	Temperature *float64 // nil = engine default
	Model       string   // overrides the engine model when set
}

// Reply is the fail-soft outcome of a completion: either Content or Err is meaningful,
// engines never panic and never return a bare error past this type.
type Reply struct {
	Content string
	Err     error
}

func (r Reply) Failed() bool { return r.Err != nil }

func Fail(format string, args ...any) Reply {
	return Reply{Err: fmt.Errorf(format, args...)}
}

func UserText(s string) Message {
	return Message{Role: "user", Text: s}
}

// UserImages builds a user turn with every image sharing the same detail hint.
func UserImages(detail Detail, images ...[]byte) Message {
	m := Message{Role: "user", Images: make([]Image, 0, len(images))}
	for _, b := range images {
		m.Images = append(m.Images, Image{Data: b, Detail: detail})
	}
	return m
}

func Float(v float64) *float64 { return &v }
