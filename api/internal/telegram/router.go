package telegram

import (
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"homework-tutor/api/internal/session"
)

// Bot is the part of *tgbotapi.BotAPI the router uses.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

type Router struct {
	Bot      Bot
	Sessions *session.Store
	Analyzer session.Analyzer

	// Debounce is how long to wait for more photos of the same album. Zero means the default.
	Debounce time.Duration
}

func (r *Router) machine(chatID int64) *session.Machine {
	return r.Sessions.GetOrCreate(sessionKey(chatID))
}

func (r *Router) HandleUpdate(upd tgbotapi.Update) {
	// callback-кнопки
	if upd.CallbackQuery != nil {
		r.handleCallback(*upd.CallbackQuery)
		return
	}
	if upd.Message == nil {
		return
	}
	msg := upd.Message

	if msg.IsCommand() {
		r.HandleCommand(msg)
		return
	}
	if len(msg.Photo) > 0 || isImageDocument(msg.Document) {
		r.acceptPhoto(*msg)
		return
	}
	if msg.Document != nil {
		r.send(msg.Chat.ID, "Please upload an image file.")
		return
	}
	if msg.Text != "" {
		r.send(msg.Chat.ID, "Send me a photo of a math problem and I will check it.")
	}
}

func (r *Router) HandleCommand(msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	switch msg.Command() {
	case "start", "help":
		r.send(cid, "Send a photo of your math homework. I will find the problem, check the work and explain the solution step by step.\nCommands: /clear, /health")
	case "health":
		r.send(cid, "✅ OK")
	case "clear":
		r.machine(cid).Clear()
		r.send(cid, "Cleared. Send the next problem.")
	default:
		r.send(cid, "Unknown command")
	}
}

func (r *Router) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := r.Bot.Send(msg); err != nil {
		log.Printf("telegram: send to %d: %v", chatID, err)
	}
}

func (r *Router) sendWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	if _, err := r.Bot.Send(msg); err != nil {
		log.Printf("telegram: send to %d: %v", chatID, err)
	}
}

func (r *Router) SendError(chatID int64, err error) {
	log.Printf("telegram: chat %d: %v", chatID, err)
	r.send(chatID, fmt.Sprintf("Something went wrong: %s", short(err.Error(), 200)))
}

// short cuts s to at most n runes.
func short(s string, n int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	rs := []rune(s)
	return string(rs[:n]) + "…"
}
