package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (r *Router) handleCallback(cb tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	cid := cb.Message.Chat.ID
	if _, err := r.Bot.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil { // ack
		r.Log.Debug().Err(err).Msg("callback ack")
	}

	// drop the keyboard so a button works once
	edit := tgbotapi.NewEditMessageReplyMarkup(cid, cb.Message.MessageID, tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{},
	})
	if _, err := r.Bot.Request(edit); err != nil {
		r.Log.Debug().Err(err).Msg("drop keyboard")
	}

	switch {
	case cb.Data == cbReset:
		r.resetChat(cid)
	case strings.HasPrefix(cb.Data, cbEnginePrefix):
		r.switchEngine(cid, strings.TrimPrefix(cb.Data, cbEnginePrefix), "")
	}
}
