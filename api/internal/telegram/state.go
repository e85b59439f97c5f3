package telegram

import (
	"context"

	"exam-reader/api/internal/exam"
)

// processorFor returns the chat's processor, creating it with the default answer engine.
func (r *Router) processorFor(chatID int64) *exam.Processor {
	if v, ok := r.chats.Load(chatID); ok {
		return v.(*exam.Processor)
	}
	eng, err := r.Engines.GetEngine(r.Answerer)
	if err != nil {
		r.Log.Warn().Err(err).Str("engine", r.Answerer).Msg("falling back to placeholder answers")
		eng, _ = r.Engines.GetEngine("skip")
	}
	log := r.Log.With().Int64("chat_id", chatID).Logger()
	p := exam.NewProcessor(r.Analyzer, eng, chatSpeaker{r: r, chatID: chatID}, r.Templates, log)
	v, _ := r.chats.LoadOrStore(chatID, p)
	return v.(*exam.Processor)
}

// chatSpeaker delivers spoken messages as chat text.
type chatSpeaker struct {
	r      *Router
	chatID int64
}

func (s chatSpeaker) Speak(_ context.Context, text string) {
	s.r.send(s.chatID, "🔊 "+text)
}
