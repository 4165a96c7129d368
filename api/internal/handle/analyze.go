package handle

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"homework-tutor/api/internal/analysis/types"
	"homework-tutor/api/internal/util"
)

const (
	maxRequestBytes = 20 << 20
	defaultDeadline = 180 * time.Second
)

type analyzeReq struct {
	LLMName string `json:"llm_name"`
	types.AnalyzeRequest
}

// Analyze forwards one image to the selected engine and returns the Result JSON.
// Provider errors are logged; the caller only sees a generic message.
func (h *Handle) Analyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	var req analyzeReq
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "image is too large")
			return
		}
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}

	img, hintMIME, err := util.DecodeBase64MaybeDataURL(req.ImageBase64)
	if err != nil || len(img) == 0 {
		writeError(w, http.StatusBadRequest, "bad imageBase64")
		return
	}
	mime := util.PickMIME("", hintMIME, img)
	if !strings.HasPrefix(mime, "image/") {
		writeError(w, http.StatusBadRequest, "imageBase64 is not an image")
		return
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		prompt = h.prompt
	}

	if h.engs.Len() == 0 {
		writeError(w, http.StatusServiceUnavailable, "no analysis engine configured")
		return
	}
	engine, err := h.engs.GetEngine(req.LLMName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestDeadline(r))
	defer cancel()

	started := time.Now()
	out, err := engine.Analyze(ctx, types.AnalyzeInput{Image: img, MIME: mime, Prompt: prompt})
	if err != nil {
		log.Printf("analyze: engine=%s model=%s image=%s: %v", engine.Name(), engine.GetModel(), util.ShortID(util.SHA256Hex(img)), err)
		writeError(w, http.StatusBadGateway, "analysis failed, check server logs")
		return
	}
	log.Printf("analyze: engine=%s model=%s verdict=%s steps=%d in %s",
		engine.Name(), engine.GetModel(), out.IsCorrect, len(out.SolutionSteps), time.Since(started).Round(time.Millisecond))

	writeJSON(w, http.StatusOK, out.Normalize())
}

func requestDeadline(r *http.Request) time.Duration {
	if ts := r.Header.Get("X-Request-Timeout"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			return time.Duration(v) * time.Second
		}
	} else if ts := r.URL.Query().Get("timeoutSec"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			return time.Duration(v) * time.Second
		}
	}
	return defaultDeadline
}
