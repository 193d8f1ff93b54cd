// Package openai — распознавание через chat completions с картинкой.
package openai

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
)

const defaultURL = "https://api.openai.com/v1/chat/completions"

type Engine struct {
	APIKey string
	Model  string
	URL    string
	httpc  *http.Client
}

func New(key, model string) *Engine {
	return &Engine{
		APIKey: strings.TrimSpace(key),
		Model:  strings.TrimSpace(model),
		URL:    defaultURL,
		httpc:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (e *Engine) Name() string     { return "openai" }
func (e *Engine) GetModel() string { return e.Model }

// NewWorker — HTTP-клиент общий, воркер хранит только промпт вызова.
func (e *Engine) NewWorker(ctx context.Context) (ocr.Worker, error) {
	if e.APIKey == "" {
		return nil, errors.New("OPENAI_API_KEY is empty")
	}
	if e.Model == "" {
		return nil, errors.New("openai model is empty")
	}
	return &worker{e: e}, nil
}

type worker struct {
	e        *Engine
	names    []string
	system   string
	progress func(ocr.EngineProgress)
}

func (w *worker) emit(status string, p float64) {
	if w.progress != nil {
		w.progress(ocr.EngineProgress{Status: status, Progress: p})
	}
}

func (w *worker) LoadLanguage(ctx context.Context, spec string) error {
	names, err := ocr.LanguageNames(spec)
	if err != nil {
		return err
	}
	w.names = names
	return nil
}

func (w *worker) Initialize(ctx context.Context, spec string) error {
	if len(w.names) == 0 {
		return errors.New("openai: languages are not loaded")
	}
	w.system = ocr.TranscriptionPrompt(w.names)
	return nil
}

func (w *worker) SetProgressHandler(fn func(ocr.EngineProgress)) { w.progress = fn }

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (w *worker) Recognize(ctx context.Context, img ocr.Image) (string, error) {
	if w.system == "" {
		return "", errors.New("openai: worker is not initialized")
	}
	dataURL := "data:" + img.MIME + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
	body := map[string]any{
		"model": w.e.Model,
		"messages": []any{
			map[string]any{"role": "system", "content": w.system},
			map[string]any{
				"role": "user",
				"content": []any{
					map[string]any{"type": "text", "text": ocr.UserPrompt},
					map[string]any{"type": "image_url", "image_url": map[string]any{"url": dataURL, "detail": "high"}},
				},
			},
		},
		"temperature": 0,
	}
	payload, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.e.URL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+w.e.APIKey)

	w.emit(ocr.StatusRecognizing, 0)
	resp, err := w.e.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("openai %d: %s", resp.StatusCode, strings.TrimSpace(string(x)))
	}

	var raw chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", fmt.Errorf("openai: bad json: %w", err)
	}
	if len(raw.Choices) == 0 {
		return "", errors.New("openai: empty response")
	}
	w.emit(ocr.StatusRecognizing, 1)
	return raw.Choices[0].Message.Content, nil
}

func (w *worker) Terminate() error { return nil }
