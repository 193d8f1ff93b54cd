package yandex

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ocrapp/api/internal/ocr"
	"ocrapp/api/internal/util"
)

const defaultOCRURL = "https://ocr.api.cloud.yandex.net/ocr/v1/recognizeText"

// коды Vision OCR отличаются от кодов tesseract
var languageCodes = map[ocr.Language]string{
	ocr.English: "en",
	ocr.Bengali: "bn",
}

type Engine struct {
	iamc     *IamClient
	folderID string
	model    string
	url      string
	httpc    *http.Client
}

func New(oauth2Token, folderID string) *Engine {
	return &Engine{
		iamc:     NewIamClient(oauth2Token),
		folderID: folderID,
		model:    "page",
		url:      defaultOCRURL,
		httpc:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (e *Engine) Name() string { return "yandex" }

// NewWorker получает IAM-токен: без него распознавание невозможно.
func (e *Engine) NewWorker(ctx context.Context) (ocr.Worker, error) {
	if e.folderID == "" {
		return nil, errors.New("YC_FOLDER_ID is empty")
	}
	if _, err := e.iamc.Token(ctx); err != nil {
		return nil, err
	}
	return &worker{e: e}, nil
}

type request struct {
	Content       string   `json:"content"`
	MimeType      string   `json:"mimeType,omitempty"`      // "JPEG" | "PNG"
	LanguageCodes []string `json:"languageCodes,omitempty"` // ["en","bn"]
	Model         string   `json:"model,omitempty"`         // "page" | "handwritten"
}

type textAnnotation struct {
	FullText string `json:"fullText,omitempty"`
	Blocks   []struct {
		Lines []struct {
			Text string `json:"text,omitempty"`
		} `json:"lines,omitempty"`
	} `json:"blocks,omitempty"`
}

type response struct {
	Result *struct {
		TextAnnotation *textAnnotation `json:"textAnnotation,omitempty"`
	} `json:"result,omitempty"`
}

type worker struct {
	e        *Engine
	langs    []string
	progress func(ocr.EngineProgress)
}

func (w *worker) emit(status string, p float64) {
	if w.progress != nil {
		w.progress(ocr.EngineProgress{Status: status, Progress: p})
	}
}

func (w *worker) LoadLanguage(ctx context.Context, spec string) error {
	w.langs = w.langs[:0]
	for _, code := range strings.Split(spec, "+") {
		l, err := ocr.ParseLanguage(code)
		if err != nil {
			return err
		}
		yc, ok := languageCodes[l]
		if !ok {
			return fmt.Errorf("yandex: language %s is not supported", l.Name())
		}
		w.langs = append(w.langs, yc)
	}
	return nil
}

func (w *worker) Initialize(ctx context.Context, spec string) error {
	if len(w.langs) == 0 {
		return errors.New("yandex: languages are not loaded")
	}
	return nil
}

func (w *worker) SetProgressHandler(fn func(ocr.EngineProgress)) { w.progress = fn }

func (w *worker) Recognize(ctx context.Context, img ocr.Image) (string, error) {
	data := img.Data
	if util.SniffImageMIME(data) == ocr.MimeWebP {
		png, err := util.WebPToPNG(data)
		if err != nil {
			return "", err
		}
		data = png
	}
	payload, _ := json.Marshal(request{
		Content:       base64.StdEncoding.EncodeToString(data),
		MimeType:      util.SniffMimeForOCR(data),
		LanguageCodes: w.langs,
		Model:         w.e.model,
	})

	w.emit(ocr.StatusRecognizing, 0)
	resp, err := w.post(ctx, payload)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// токен мог протухнуть раньше срока — обновляем один раз
		w.e.iamc.Reset()
		if resp, err = w.post(ctx, payload); err != nil {
			return "", err
		}
		defer resp.Body.Close()
	}
	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("yandex ocr %d: %s", resp.StatusCode, string(x))
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("yandex ocr: bad json: %w", err)
	}
	w.emit(ocr.StatusRecognizing, 1)
	return out.text(), nil
}

func (w *worker) post(ctx context.Context, payload []byte) (*http.Response, error) {
	token, err := w.e.iamc.Token(ctx)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.e.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("x-folder-id", w.e.folderID)
	req.Header.Set("x-data-logging-enabled", "false")
	return w.e.httpc.Do(req)
}

// Terminate — HTTP-воркер ничего не держит.
func (w *worker) Terminate() error { return nil }

// text — fullText как есть; если его нет, склеиваем строки блоков.
func (r *response) text() string {
	if r == nil || r.Result == nil || r.Result.TextAnnotation == nil {
		return ""
	}
	ta := r.Result.TextAnnotation
	if ta.FullText != "" {
		return ta.FullText
	}
	var lines []string
	for _, b := range ta.Blocks {
		for _, l := range b.Lines {
			if s := strings.TrimSpace(l.Text); s != "" {
				lines = append(lines, s)
			}
		}
	}
	return strings.Join(lines, "\n")
}
