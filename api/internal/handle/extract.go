package handle

import (
	"net/http"

	"ocrapp/api/internal/ocr"
)

type ExtractResponse struct {
	Text       string `json:"text"`
	Engine     string `json:"engine"`
	Languages  string `json:"languages"`
	DurationMS int64  `json:"duration_ms"`
}

func newExtractResponse(res ocr.Result) ExtractResponse {
	return ExtractResponse{
		Text:       res.Text,
		Engine:     res.Engine,
		Languages:  res.Languages,
		DurationMS: res.Duration.Milliseconds(),
	}
}

// Extract — синхронное распознавание: ответ приходит, когда текст готов.
func (h *Handle) Extract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	in, err := h.readInput(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	svc, err := h.service(in.engine)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := svc.ExtractText(r.Context(), in.img, in.langs, nil)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newExtractResponse(res))
}
