package handle

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ocrapp/api/internal/ocr"
	"ocrapp/api/internal/store"
)

type languageInfo struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"native_name"`
	Default    bool   `json:"default"`
}

// Languages — поддерживаемые языки, доступные движки и допустимые файлы.
func (h *Handle) Languages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET only")
		return
	}
	def := map[ocr.Language]bool{}
	for _, l := range h.langs {
		def[l] = true
	}
	langs := make([]languageInfo, 0, len(ocr.SupportedLanguages))
	for _, l := range ocr.SupportedLanguages {
		langs = append(langs, languageInfo{Code: string(l), Name: l.Name(), NativeName: l.NativeName(), Default: def[l]})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"languages":      langs,
		"default":        h.langs.Spec(),
		"engines":        h.engs.Names(),
		"default_engine": h.engs.Default(),
		"mime_types":     ocr.AllowedMIME,
		"max_bytes":      ocr.MaxImageSize,
	})
}

// History — последние записи журнала; без БД отвечает 404.
func (h *Handle) History(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET only")
		return
	}
	if h.history == nil {
		writeError(w, http.StatusNotFound, "history is disabled: DATABASE_URL is not set")
		return
	}
	if hash := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("sha256"))); hash != "" {
		h.historyByHash(w, r, hash)
		return
	}
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	rows, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		log.Printf("history: %v", err)
		writeError(w, http.StatusInternalServerError, "history is unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": rows})
}

// historyByHash — последняя запись по SHA-256 изображения.
func (h *Handle) historyByHash(w http.ResponseWriter, r *http.Request, hash string) {
	if len(hash) != 64 || strings.Trim(hash, "0123456789abcdef") != "" {
		writeError(w, http.StatusBadRequest, "sha256 must be 64 hex characters")
		return
	}
	row, err := h.history.FindByHash(r.Context(), hash)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no extraction for this image")
		return
	}
	if err != nil {
		log.Printf("history: %v", err)
		writeError(w, http.StatusInternalServerError, "history is unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": []store.ExtractionRow{*row}})
}

type engineInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	Model   string `json:"model,omitempty"`
}

// engineInfos — версия библиотеки и модель там, где движок их сообщает.
func (h *Handle) engineInfos() []engineInfo {
	names := h.engs.Names()
	out := make([]engineInfo, 0, len(names))
	for _, name := range names {
		info := engineInfo{Name: name}
		if eng, err := h.engs.GetEngine(name); err == nil {
			if v, ok := eng.(interface{ Version() string }); ok {
				info.Version = v.Version()
			}
			if m, ok := eng.(interface{ GetModel() string }); ok {
				info.Model = m.GetModel()
			}
		}
		out = append(out, info)
	}
	return out
}

func (h *Handle) Healthz(w http.ResponseWriter, r *http.Request) {
	out := map[string]any{"status": "ok", "engines": h.engs.Names(), "engine_info": h.engineInfos()}
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			out["status"] = "degraded"
			out["db"] = err.Error()
			writeJSON(w, http.StatusServiceUnavailable, out)
			return
		}
		out["db"] = "ok"
	}
	writeJSON(w, http.StatusOK, out)
}
