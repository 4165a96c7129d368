package telegram

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"homework-tutor/api/internal/analysis/types"
	"homework-tutor/api/internal/session"
	"homework-tutor/api/internal/upload"
)

type fakeBot struct {
	mu      sync.Mutex
	sent    []tgbotapi.Chattable
	fileURL string
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeBot) GetFileDirectURL(fileID string) (string, error) {
	return f.fileURL + "/" + fileID, nil
}

func (f *fakeBot) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeBot) photos() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.sent {
		if _, ok := c.(tgbotapi.PhotoConfig); ok {
			n++
		}
	}
	return n
}

// waitFor polls until some sent text contains want.
func (f *fakeBot) waitFor(t *testing.T, want string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		for _, s := range f.texts() {
			if strings.Contains(s, want) {
				return
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("no message containing %q, got %q", want, f.texts())
}

type fakeAnalyzer struct {
	mu    sync.Mutex
	calls int
	res   types.Result
	err   error
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, b64 string) (types.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.res, f.err
}

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	img := imaging.New(w, h, color.White)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newRouter(t *testing.T, a session.Analyzer) (*Router, *fakeBot) {
	t.Helper()
	return newRouterServing(t, a, pngOf(t, 60, 40))
}

// newRouterServing answers every file download with page.
func newRouterServing(t *testing.T, a session.Analyzer, page []byte) (*Router, *fakeBot) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(page)
	}))
	t.Cleanup(srv.Close)
	bot := &fakeBot{fileURL: srv.URL}
	return &Router{Bot: bot, Sessions: session.NewStore(), Analyzer: a, Debounce: 10 * time.Millisecond}, bot
}

func photoUpdate(chatID int64, fileID, group string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:         &tgbotapi.Chat{ID: chatID},
		Photo:        []tgbotapi.PhotoSize{{FileID: fileID, Width: 60, Height: 40}},
		MediaGroupID: group,
	}}
}

func callback(chatID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		Data:    data,
		Message: &tgbotapi.Message{MessageID: 7, Chat: &tgbotapi.Chat{ID: chatID}},
	}}
}

func TestPhotoAnalyzeDeliversResult(t *testing.T) {
	a := &fakeAnalyzer{res: types.Result{
		ProblemIdentified: "2+2=?",
		IsCorrect:         types.VerdictIncorrect,
		ErrorBoundingBox:  &types.BoundingBox{YMin: 100, XMin: 100, YMax: 500, XMax: 500},
		SolutionSteps:     []string{"2+2=4"},
		Feedback:          "Off by one",
	}}
	r, bot := newRouter(t, a)

	r.HandleUpdate(photoUpdate(1, "p1", ""))
	bot.waitFor(t, "Photo received")
	if st := r.machine(1).State(); st != session.Idle || !r.machine(1).Snapshot().HasImage() {
		t.Fatalf("expected Idle with image, got %s", st)
	}

	r.HandleUpdate(callback(1, cbAnalyze))
	bot.waitFor(t, "2+2=?")
	bot.waitFor(t, "1. 2+2=4")
	if r.machine(1).State() != session.Success {
		t.Errorf("expected Success, got %s", r.machine(1).State())
	}
	deadline := time.Now().Add(time.Second)
	for bot.photos() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if bot.photos() != 1 {
		t.Errorf("expected one annotated photo, got %d", bot.photos())
	}
}

func TestFailureOffersRetry(t *testing.T) {
	a := &fakeAnalyzer{err: context.DeadlineExceeded}
	r, bot := newRouter(t, a)

	r.HandleUpdate(photoUpdate(2, "p1", ""))
	bot.waitFor(t, "Photo received")
	r.HandleUpdate(callback(2, cbAnalyze))
	bot.waitFor(t, session.ErrorMessage)

	a.mu.Lock()
	a.err = nil
	a.res = types.Result{Feedback: "Looks right", IsCorrect: types.VerdictCorrect}
	a.mu.Unlock()

	r.HandleUpdate(callback(2, cbRetry))
	bot.waitFor(t, "Looks right")
	if a.calls != 2 {
		t.Errorf("expected 2 calls, got %d", a.calls)
	}
}

func TestAnalyzeWithoutPhoto(t *testing.T) {
	a := &fakeAnalyzer{}
	r, bot := newRouter(t, a)
	r.HandleUpdate(callback(3, cbAnalyze))
	bot.waitFor(t, "Send a photo first.")
	if a.calls != 0 {
		t.Error("no request expected")
	}
}

func TestAlbumIsMerged(t *testing.T) {
	r, bot := newRouter(t, &fakeAnalyzer{})
	r.Debounce = 300 * time.Millisecond
	r.HandleUpdate(photoUpdate(4, "p1", "album"))
	r.HandleUpdate(photoUpdate(4, "p2", "album"))
	bot.waitFor(t, "2 pages received")
	v := r.machine(4).Snapshot()
	if v.Image == nil || v.Image.Width != 60 || v.Image.Height != 80 {
		t.Fatalf("expected a 60x80 merged page, got %+v", v.Image)
	}
}

func TestClearCommand(t *testing.T) {
	r, bot := newRouter(t, &fakeAnalyzer{})
	r.HandleUpdate(photoUpdate(5, "p1", ""))
	bot.waitFor(t, "Photo received")
	r.HandleUpdate(tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: 5},
		Text:     "/clear",
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}},
	}})
	if r.machine(5).Snapshot().HasImage() {
		t.Error("expected image to be cleared")
	}
}

func TestNonImageDocument(t *testing.T) {
	r, bot := newRouter(t, &fakeAnalyzer{})
	r.HandleUpdate(tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: 6},
		Document: &tgbotapi.Document{FileID: "d1", FileName: "notes.pdf", MimeType: "application/pdf"},
	}})
	bot.waitFor(t, "Please upload an image file.")
}

func TestKeyboardFor(t *testing.T) {
	img := &upload.Image{Name: "hw.png"}
	cases := []struct {
		view session.View
		want []string
	}{
		{session.View{State: session.Idle}, nil},
		{session.View{State: session.Idle, Image: img}, []string{cbAnalyze, cbClear}},
		{session.View{State: session.Analyzing, Image: img}, nil},
		{session.View{State: session.Error, Image: img}, []string{cbRetry, cbClear}},
		{session.View{State: session.Success, Image: img}, []string{cbClear}},
	}
	for _, tc := range cases {
		kb, ok := keyboardFor(tc.view)
		var got []string
		if ok {
			for _, b := range kb.InlineKeyboard[0] {
				got = append(got, *b.CallbackData)
			}
		}
		if strings.Join(got, ",") != strings.Join(tc.want, ",") {
			t.Errorf("%s: expected %v, got %v", tc.view.State, tc.want, got)
		}
	}
}

func TestCombineAsOne(t *testing.T) {
	out, err := combineAsOne([][]byte{pngOf(t, 30, 10), pngOf(t, 50, 20)})
	if err != nil {
		t.Fatal(err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 50 || cfg.Height != 30 {
		t.Errorf("expected 50x30, got %dx%d", cfg.Width, cfg.Height)
	}
	if _, err := combineAsOne([][]byte{[]byte("nope")}); err == nil {
		t.Error("expected decode error")
	}
}

func TestPhotoRejectionsAreDistinguished(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want string
	}{
		{"undecodable", append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}, []byte("truncated")...), "The image could not be read."},
		{"not an image", []byte("plain text, not a picture"), "Please upload an image file."},
	}
	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, bot := newRouterServing(t, &fakeAnalyzer{}, tc.data)
			chat := int64(100 + i)
			r.HandleUpdate(photoUpdate(chat, "p1", ""))
			bot.waitFor(t, tc.want)
			if r.machine(chat).Snapshot().HasImage() {
				t.Error("rejected photo must not be selected")
			}
		})
	}
}
