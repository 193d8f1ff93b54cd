package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"ocrapp/api/internal/ocr"
)

type Engine struct {
	APIKey string
	Model  string
	// opts добавляются к option.WithAPIKey; в тестах сюда кладут WithEndpoint.
	opts []option.ClientOption
}

func New(apiKey, model string, opts ...option.ClientOption) *Engine {
	return &Engine{
		APIKey: strings.TrimSpace(apiKey),
		Model:  strings.TrimSpace(model),
		opts:   opts,
	}
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

// NewWorker открывает отдельный клиент genai на вызов; Terminate его закрывает.
func (e *Engine) NewWorker(ctx context.Context) (ocr.Worker, error) {
	if e.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY is empty")
	}
	if e.Model == "" {
		return nil, errors.New("gemini model is empty")
	}
	opts := append([]option.ClientOption{option.WithAPIKey(e.APIKey)}, e.opts...)
	cl, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &worker{cl: cl, model: e.Model}, nil
}

type worker struct {
	cl       *genai.Client
	model    string
	names    []string
	m        *genai.GenerativeModel
	progress func(ocr.EngineProgress)
}

func (w *worker) emit(status string, p float64) {
	if w.progress != nil {
		w.progress(ocr.EngineProgress{Status: status, Progress: p})
	}
}

// LoadLanguage у Gemini нечего загружать: переводим коды в названия для промпта.
func (w *worker) LoadLanguage(ctx context.Context, spec string) error {
	names, err := ocr.LanguageNames(spec)
	if err != nil {
		return err
	}
	w.names = names
	return nil
}

func (w *worker) Initialize(ctx context.Context, spec string) error {
	m := w.cl.GenerativeModel(w.model)
	if m == nil {
		return fmt.Errorf("gemini: model is nil")
	}
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "text/plain",
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(ocr.TranscriptionPrompt(w.names))},
	}
	w.m = m
	return nil
}

func (w *worker) SetProgressHandler(fn func(ocr.EngineProgress)) { w.progress = fn }

func (w *worker) Recognize(ctx context.Context, img ocr.Image) (string, error) {
	if w.m == nil {
		return "", errors.New("gemini: worker is not initialized")
	}
	w.emit(ocr.StatusRecognizing, 0)
	resp, err := w.m.GenerateContent(ctx,
		genai.Text(ocr.UserPrompt),
		genai.Blob{MIMEType: img.MIME, Data: img.Data},
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := firstText(resp)
	w.emit(ocr.StatusRecognizing, 1)
	return text, nil
}

func (w *worker) Terminate() error {
	return w.cl.Close()
}

// firstText склеивает текстовые части первого кандидата с контентом.
func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
