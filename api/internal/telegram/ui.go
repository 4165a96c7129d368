package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"homework-tutor/api/internal/session"
)

const (
	cbAnalyze = "analyze"
	cbRetry   = "retry"
	cbClear   = "clear"
)

// keyboardFor offers only the actions valid in v. ok is false when there is nothing to offer.
func keyboardFor(v session.View) (kb tgbotapi.InlineKeyboardMarkup, ok bool) {
	var row []tgbotapi.InlineKeyboardButton
	switch v.State {
	case session.Idle:
		if v.HasImage() {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData("🔍 Analyze", cbAnalyze))
		}
	case session.Error:
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("🔁 Retry", cbRetry))
	case session.Success:
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("➡️ Next problem", cbClear))
		return tgbotapi.NewInlineKeyboardMarkup(row), true
	case session.Analyzing:
		return kb, false
	}
	if v.HasImage() {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("🗑 Clear", cbClear))
	}
	if len(row) == 0 {
		return kb, false
	}
	return tgbotapi.NewInlineKeyboardMarkup(row), true
}

func removeKeyboard(chatID int64, msgID int) tgbotapi.EditMessageReplyMarkupConfig {
	return tgbotapi.NewEditMessageReplyMarkup(chatID, msgID, tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{},
	})
}
