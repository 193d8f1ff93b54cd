// Package ocrtest содержит управляемый движок для тестов оркестратора и хендлеров.
package ocrtest

import (
	"context"
	"sync/atomic"

	"ocrapp/api/internal/ocr"
)

// Engine — фейковый движок. Поля Err* задают, на каком шаге воркер упадёт.
// Счётчики позволяют проверить, что каждый воркер был освобождён.
type Engine struct {
	EngineName string
	Text       string
	// TextFunc, если задан, заменяет Text: удобно для конкурентных тестов.
	TextFunc func(img ocr.Image) string
	Events   []ocr.EngineProgress

	ErrNew       error
	ErrLoad      error
	ErrInit      error
	ErrRecognize error
	ErrTerminate error

	// Block, если не nil, держит Recognize до закрытия канала.
	Block <-chan struct{}

	created    atomic.Int64
	terminated atomic.Int64
	lastSpec   atomic.Value
}

// Default — движок, который отдаёт text и прогресс 0 → 0.5 → 1.
func Default(text string) *Engine {
	return &Engine{
		Text: text,
		Events: []ocr.EngineProgress{
			{Status: "loading tesseract core", Progress: 1},
			{Status: "initializing api", Progress: 1},
			{Status: ocr.StatusRecognizing, Progress: 0},
			{Status: ocr.StatusRecognizing, Progress: 0.5},
			{Status: ocr.StatusRecognizing, Progress: 1},
		},
	}
}

func (e *Engine) Name() string {
	if e.EngineName == "" {
		return "fake"
	}
	return e.EngineName
}

func (e *Engine) Created() int64    { return e.created.Load() }
func (e *Engine) Terminated() int64 { return e.terminated.Load() }

// LastSpec — строка языков, с которой инициализировался последний воркер.
func (e *Engine) LastSpec() string {
	s, _ := e.lastSpec.Load().(string)
	return s
}

func (e *Engine) NewWorker(ctx context.Context) (ocr.Worker, error) {
	if e.ErrNew != nil {
		return nil, e.ErrNew
	}
	e.created.Add(1)
	return &worker{e: e}, nil
}

type worker struct {
	e       *Engine
	handler func(ocr.EngineProgress)
}

func (w *worker) LoadLanguage(ctx context.Context, spec string) error {
	return w.e.ErrLoad
}

func (w *worker) Initialize(ctx context.Context, spec string) error {
	w.e.lastSpec.Store(spec)
	return w.e.ErrInit
}

func (w *worker) SetProgressHandler(fn func(ocr.EngineProgress)) { w.handler = fn }

func (w *worker) Recognize(ctx context.Context, img ocr.Image) (string, error) {
	if w.e.Block != nil {
		<-w.e.Block
	}
	for _, ev := range w.e.Events {
		if w.handler != nil {
			w.handler(ev)
		}
	}
	if w.e.ErrRecognize != nil {
		return "", w.e.ErrRecognize
	}
	if w.e.TextFunc != nil {
		return w.e.TextFunc(img), nil
	}
	return w.e.Text, nil
}

func (w *worker) Terminate() error {
	w.e.terminated.Add(1)
	return w.e.ErrTerminate
}
