package handle

import (
	"encoding/json"
	"net/http"

	"homework-tutor/api/internal/analysis"
)

type Handle struct {
	engs *analysis.Engines
	// prompt is used when the caller sends none.
	prompt string
}

func New(engs *analysis.Engines, defaultPrompt string) *Handle {
	return &Handle{
		engs:   engs,
		prompt: defaultPrompt,
	}
}

// Routes registers the proxy endpoints on mux.
func (h *Handle) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", h.Healthz)
	mux.HandleFunc("/v1/engines", h.ListEngines)
	mux.HandleFunc("/v1/analyze", h.Analyze)
	// путь из прежнего деплоя (serverless-функция), чтобы старые клиенты не ломались
	mux.HandleFunc("/.netlify/functions/analyze", h.Analyze)
}

func (h *Handle) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handle) ListEngines(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "GET only", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.engs.Describe())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
