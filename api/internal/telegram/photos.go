package telegram

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"homework-tutor/api/internal/upload"
)

func isImageDocument(d *tgbotapi.Document) bool {
	return d != nil && upload.IsImageType(strings.ToLower(d.MimeType))
}

func (r *Router) acceptPhoto(msg tgbotapi.Message) {
	cid := msg.Chat.ID

	var fileID, name string
	if len(msg.Photo) > 0 {
		ph := msg.Photo[len(msg.Photo)-1]
		fileID, name = ph.FileID, "photo.jpg"
	} else {
		fileID, name = msg.Document.FileID, msg.Document.FileName
	}

	url, err := r.Bot.GetFileDirectURL(fileID)
	if err != nil {
		r.SendError(cid, err)
		return
	}
	imgBytes, err := download(url)
	if err != nil {
		r.SendError(cid, err)
		return
	}

	key := batchKey(cid, msg.MediaGroupID)
	bi, _ := batches.LoadOrStore(key, &photoBatch{
		ChatID: cid, Key: key, MediaGroupID: msg.MediaGroupID, images: make([][]byte, 0, 4),
	})
	b := bi.(*photoBatch)

	wait := r.Debounce
	if wait <= 0 {
		wait = debounce
	}
	b.mu.Lock()
	b.images = append(b.images, imgBytes)
	b.names = append(b.names, name)
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(wait, func() { r.processBatch(key) })
	b.mu.Unlock()
}

// processBatch turns the collected photos into the chat's selected image.
func (r *Router) processBatch(key string) {
	bi, ok := batches.LoadAndDelete(key)
	if !ok {
		return
	}
	b := bi.(*photoBatch)

	b.mu.Lock()
	images := append([][]byte(nil), b.images...)
	names := append([]string(nil), b.names...)
	chatID := b.ChatID
	b.mu.Unlock()

	if len(images) == 0 {
		return
	}

	data, name := images[0], names[0]
	if len(images) > 1 {
		merged, err := combineAsOne(images)
		if err != nil {
			r.SendError(chatID, fmt.Errorf("merge pages: %w", err))
			return
		}
		data, name = merged, "pages.jpg"
	}

	img, err := upload.FromBytes(name, data)
	if err != nil {
		msg := upload.Message(err)
		if msg == "" {
			r.SendError(chatID, err)
			return
		}
		log.Printf("telegram: chat %d: %v", chatID, err)
		r.send(chatID, msg)
		return
	}
	m := r.machine(chatID)
	if err := m.Select(img); err != nil {
		r.SendError(chatID, err)
		return
	}

	text := "Photo received. Tap Analyze when ready."
	if len(images) > 1 {
		text = fmt.Sprintf("%d pages received and merged into one image. Tap Analyze when ready.", len(images))
	}
	if kb, ok := keyboardFor(m.Snapshot()); ok {
		r.sendWithKeyboard(chatID, text, kb)
		return
	}
	r.send(chatID, text)
}

// combineAsOne stacks pages vertically on white, centred, and downsizes the result past maxPixels.
func combineAsOne(images [][]byte) ([]byte, error) {
	decoded := make([]image.Image, 0, len(images))
	maxW, sumH := 0, 0
	for i, b := range images {
		img, err := imaging.Decode(bytes.NewReader(b), imaging.AutoOrientation(true))
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		decoded = append(decoded, img)
		maxW = max(maxW, img.Bounds().Dx())
		sumH += img.Bounds().Dy()
	}
	if maxW == 0 || sumH == 0 {
		return nil, fmt.Errorf("пустые изображения")
	}

	dst := imaging.New(maxW, sumH, color.White)
	y := 0
	for _, img := range decoded {
		w, h := img.Bounds().Dx(), img.Bounds().Dy()
		dst = imaging.Paste(dst, img, image.Pt((maxW-w)/2, y))
		y += h
	}

	final := dst
	if total := maxW * sumH; total > maxPixels {
		scale := math.Sqrt(float64(maxPixels) / float64(total))
		newW := max(1, int(float64(maxW)*scale))
		final = imaging.Resize(dst, newW, 0, imaging.Lanczos)
	}

	var out bytes.Buffer
	if err := imaging.Encode(&out, final, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func download(url string) ([]byte, error) {
	resp, err := httpClient().Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("download: status %d: %s", resp.StatusCode, string(b))
	}
	return io.ReadAll(io.LimitReader(resp.Body, upload.DefaultMaxBytes*2))
}

func httpClient() *http.Client {
	return &http.Client{Timeout: 60 * time.Second}
}
