package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	cbReset        = "reset"
	cbEnginePrefix = "engine:"
)

// Shown under the last answer of a page.
func makeResetKeyboard() tgbotapi.InlineKeyboardMarkup {
	btn := tgbotapi.NewInlineKeyboardButtonData("重新開始", cbReset)
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(btn))
}

func makeEngineKeyboard() tgbotapi.InlineKeyboardMarkup {
	row := tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("skip", cbEnginePrefix+"skip"),
		tgbotapi.NewInlineKeyboardButtonData("azure", cbEnginePrefix+"azure"),
		tgbotapi.NewInlineKeyboardButtonData("gpt", cbEnginePrefix+"gpt"),
		tgbotapi.NewInlineKeyboardButtonData("gemini", cbEnginePrefix+"gemini"),
	)
	return tgbotapi.NewInlineKeyboardMarkup(row)
}
