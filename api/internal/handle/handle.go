package handle

import (
	"context"
	"encoding/json"
	"net/http"

	"ocrapp/api/internal/ocr"
	"ocrapp/api/internal/store"
)

// History — источник записей журнала для /v1/ocr/history.
type History interface {
	Recent(ctx context.Context, limit int) ([]store.ExtractionRow, error)
	FindByHash(ctx context.Context, imageHash string) (*store.ExtractionRow, error)
}

// Pinger — проверка зависимостей для /healthz (обычно *sql.DB).
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handle struct {
	engs    *ocr.Engines
	langs   ocr.LanguageSet
	rec     ocr.Recorder
	history History
	db      Pinger
}

type Option func(*Handle)

// WithStore включает журнал вызовов, историю и проверку БД в /healthz.
func WithStore(repo *store.ExtractionRepo) Option {
	return func(h *Handle) {
		h.rec = repo
		h.history = repo
		h.db = repo.DB
	}
}

func New(engs *ocr.Engines, langs ocr.LanguageSet, opts ...Option) *Handle {
	if len(langs) == 0 {
		langs = ocr.DefaultLanguages()
	}
	h := &Handle{engs: engs, langs: langs}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Routes регистрирует все эндпоинты на mux.
func (h *Handle) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/", h.Index)
	mux.HandleFunc("/healthz", h.Healthz)
	mux.HandleFunc("/v1/languages", h.Languages)
	mux.HandleFunc("/v1/ocr/extract", h.Extract)
	mux.HandleFunc("/v1/ocr/stream", h.Stream)
	mux.HandleFunc("/v1/ocr/history", h.History)
	mux.HandleFunc("/v1/text/download", h.Download)
}

// service — оркестратор для выбранного движка, новый на каждый запрос.
func (h *Handle) service(engineName string) (*ocr.Service, error) {
	eng, err := h.engs.GetEngine(engineName)
	if err != nil {
		return nil, err
	}
	var opts []ocr.Option
	if h.rec != nil {
		opts = append(opts, ocr.WithRecorder(h.rec))
	}
	return ocr.NewService(eng, opts...), nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// statusFor сопоставляет вид ошибки оркестратора с HTTP-статусом.
func statusFor(err error) int {
	switch ocr.KindOf(err) {
	case ocr.KindValidation:
		return http.StatusBadRequest
	case ocr.KindEngineInit, ocr.KindRecognition:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
