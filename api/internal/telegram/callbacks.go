package telegram

import (
	"errors"
	"log"

	"github.com/disintegration/imaging"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"homework-tutor/api/internal/render"
	"homework-tutor/api/internal/session"
)

func (r *Router) handleCallback(cb tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	cid := cb.Message.Chat.ID
	_, _ = r.Bot.Request(tgbotapi.NewCallback(cb.ID, "")) // ack

	m := r.machine(cid)
	switch cb.Data {
	case cbAnalyze:
		r.start(cid, cb.Message.MessageID, m, false)
	case cbRetry:
		r.start(cid, cb.Message.MessageID, m, true)
	case cbClear:
		_, _ = r.Bot.Send(removeKeyboard(cid, cb.Message.MessageID))
		m.Clear()
		r.send(cid, "Cleared. Send the next problem.")
	}
}

func (r *Router) start(chatID int64, msgID int, m *session.Machine, retry bool) {
	var (
		done <-chan struct{}
		err  error
	)
	if retry {
		done, err = m.Retry(r.Analyzer)
	} else {
		done, err = m.Analyze(r.Analyzer)
	}
	switch {
	case errors.Is(err, session.ErrNoImage):
		r.send(chatID, "Send a photo first.")
		return
	case errors.Is(err, session.ErrInvalidTransition):
		// повторное нажатие во время анализа или после результата
		return
	case err != nil:
		r.SendError(chatID, err)
		return
	}

	_, _ = r.Bot.Send(removeKeyboard(chatID, msgID))
	r.send(chatID, "⏳ Analyzing the problem…")
	go func() {
		<-done
		r.deliver(chatID, m.Snapshot())
	}()
}

// deliver reports a settled attempt. Views still in Analyzing belong to a newer attempt.
func (r *Router) deliver(chatID int64, v session.View) {
	switch v.State {
	case session.Success:
		text := short(render.Text(*v.Result), maxMessageRunes)
		kb, _ := keyboardFor(v)
		r.sendWithKeyboard(chatID, text, kb)
		r.sendAnnotated(chatID, v)
	case session.Error:
		kb, _ := keyboardFor(v)
		r.sendWithKeyboard(chatID, v.ErrorMessage, kb)
	}
}

func (r *Router) sendAnnotated(chatID int64, v session.View) {
	if v.Image == nil || v.Result == nil || v.Result.ErrorBoundingBox == nil {
		return
	}
	jpg, err := render.Annotate(v.Image.Data, v.Result.ErrorBoundingBox, imaging.JPEG)
	if err != nil {
		if !errors.Is(err, render.ErrNoOverlay) {
			log.Printf("telegram: annotate: %v", err)
		}
		return
	}
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "mistake.jpg", Bytes: jpg})
	photo.Caption = "The mistake is marked in red."
	if _, err := r.Bot.Send(photo); err != nil {
		log.Printf("telegram: send photo to %d: %v", chatID, err)
	}
}
