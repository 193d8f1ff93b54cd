package handle

import (
	"bufio"
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"ocrapp/api/internal/ocr"
)

type progressPayload struct {
	Status   string  `json:"status"`
	Progress float64 `json:"progress"`
	Percent  int     `json:"percent"`
}

type streamEvent struct {
	Type     string           `json:"type"` // progress | result | error
	Progress *progressPayload `json:"progress,omitempty"`
	Result   *ExtractResponse `json:"result,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// eventWriter пишет NDJSON и сбрасывает буфер после каждого события,
// чтобы прогресс доходил до браузера сразу.
type eventWriter struct {
	mu  sync.Mutex
	w   *bufio.Writer
	enc *json.Encoder
	fl  http.Flusher
}

func newEventWriter(w io.Writer) *eventWriter {
	buf := bufio.NewWriter(w)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	fl, _ := w.(http.Flusher)
	return &eventWriter{w: buf, enc: enc, fl: fl}
}

func (e *eventWriter) write(ev streamEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	_ = e.enc.Encode(ev)
	_ = e.w.Flush()
	if e.fl != nil {
		e.fl.Flush()
	}
}

func (e *eventWriter) Progress(p ocr.Progress) {
	e.write(streamEvent{Type: "progress", Progress: &progressPayload{
		Status: p.Status, Progress: p.Progress, Percent: p.Percent(),
	}})
}

func (e *eventWriter) Result(res ocr.Result) {
	out := newExtractResponse(res)
	e.write(streamEvent{Type: "result", Result: &out})
}

func (e *eventWriter) Error(err error) {
	e.write(streamEvent{Type: "error", Error: err.Error()})
}

// Stream — распознавание с прогрессом: application/x-ndjson, одно событие на строку.
// Ошибки разбора запроса отдаются обычным JSON до начала потока.
func (h *Handle) Stream(w http.ResponseWriter, r *http.Request) {
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

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	ev := newEventWriter(w)
	res, err := svc.ExtractText(r.Context(), in.img, in.langs, ev.Progress)
	if err != nil {
		ev.Error(err)
		return
	}
	ev.Result(res)
}
