package telegram

import (
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"exam-reader/api/internal/exam"
	"exam-reader/api/internal/llm"
	"exam-reader/api/internal/store"
)

// botAPI is the part of *tgbotapi.BotAPI the router uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Router turns chat updates into exam pages. Every chat runs its own session, so
// photos sent one after another behave like pages captured in a row.
type Router struct {
	Bot       botAPI
	Analyzer  *exam.Analyzer
	Engines   llm.Engines
	Answerer  string // engine name for new chats
	Templates exam.Templates
	Answers   *store.AnswerRepo // optional
	MaxPixels int
	Log       zerolog.Logger

	chats sync.Map // chatID -> *exam.Processor
}

const usageText = "請傳送考卷照片，我會逐題回答。\n" +
	"一個題組跨頁時，請接著傳下一頁。\n" +
	"指令：/reset 重新開始, /engine 切換作答引擎, /health"

func (r *Router) HandleUpdate(upd tgbotapi.Update) {
	if upd.CallbackQuery != nil {
		r.handleCallback(*upd.CallbackQuery)
		return
	}
	if upd.Message == nil {
		return
	}
	msg := *upd.Message
	switch {
	case msg.IsCommand():
		r.HandleCommand(msg)
	case len(msg.Photo) > 0:
		r.acceptPhoto(msg)
	case msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/"):
		r.acceptDocument(msg)
	default:
		r.send(msg.Chat.ID, usageText)
	}
}

func (r *Router) HandleCommand(msg tgbotapi.Message) {
	cid := msg.Chat.ID
	switch msg.Command() {
	case "start", "help":
		r.send(cid, usageText)
	case "health":
		r.send(cid, "✅ OK")
	case "reset":
		r.resetChat(cid)
	case "engine":
		r.handleEngineCommand(cid, msg.CommandArguments())
	default:
		r.send(cid, "未知的指令")
	}
}

func (r *Router) resetChat(chatID int64) {
	r.processorFor(chatID).Reset()
	r.send(chatID, "已重新開始，題組與題型都已清除。")
}

// handleEngineCommand switches the answer engine of the chat:
//
//	/engine
//	/engine gpt [model]
//	/engine gemini [model]
//	/engine azure
//	/engine skip
func (r *Router) handleEngineCommand(chatID int64, args string) {
	fields := strings.Fields(args)
	proc := r.processorFor(chatID)
	if len(fields) == 0 {
		cur := proc.Answerer()
		msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("目前作答引擎：%s %s", cur.Name(), cur.GetModel()))
		msg.ReplyMarkup = makeEngineKeyboard()
		r.sendMsg(msg)
		return
	}
	var model string
	if len(fields) > 1 {
		model = fields[1]
	}
	r.switchEngine(chatID, fields[0], model)
}

// modelSetter is implemented by engines that can change their default model.
type modelSetter interface{ SetModel(string) }

func (r *Router) switchEngine(chatID int64, name, model string) {
	eng, err := r.Engines.GetEngine(name)
	if err != nil {
		r.send(chatID, "❌ "+err.Error())
		return
	}
	if model != "" {
		if ms, ok := eng.(modelSetter); ok {
			ms.SetModel(model)
		}
	}
	r.processorFor(chatID).SetAnswerer(eng)
	r.Log.Info().Int64("chat_id", chatID).Str("engine", eng.Name()).Str("model", eng.GetModel()).Msg("answer engine switched")
	r.send(chatID, fmt.Sprintf("✅ 作答引擎：%s %s", eng.Name(), eng.GetModel()))
}

func (r *Router) send(chatID int64, text string) {
	r.sendMsg(tgbotapi.NewMessage(chatID, text))
}

func (r *Router) sendMsg(msg tgbotapi.MessageConfig) {
	if _, err := r.Bot.Send(msg); err != nil {
		r.Log.Warn().Err(err).Int64("chat_id", msg.ChatID).Msg("telegram send")
	}
}

func (r *Router) SendError(chatID int64, err error) {
	r.Log.Error().Err(err).Int64("chat_id", chatID).Msg("page failed")
	r.send(chatID, fmt.Sprintf("處理失敗：%v", err))
}
