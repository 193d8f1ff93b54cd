package ocr

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// EngineProgress — сырое событие движка. Наружу уходят только события
// со статусом StatusRecognizing.
type EngineProgress struct {
	Status   string
	Progress float64
}

// Engine создаёт воркеры. Один воркер обслуживает ровно один вызов ExtractText.
type Engine interface {
	Name() string
	NewWorker(ctx context.Context) (Worker, error)
}

// Worker — жизненный цикл движка: load → initialize → recognize → terminate.
type Worker interface {
	LoadLanguage(ctx context.Context, spec string) error
	Initialize(ctx context.Context, spec string) error
	SetProgressHandler(fn func(EngineProgress))
	Recognize(ctx context.Context, img Image) (string, error)
	Terminate() error
}

// Engines — реестр движков по имени.
type Engines struct {
	mu  sync.RWMutex
	m   map[string]Engine
	def string
}

func NewEngines(def Engine, more ...Engine) *Engines {
	e := &Engines{m: make(map[string]Engine)}
	if def != nil {
		e.Register(def)
		e.def = strings.ToLower(def.Name())
	}
	for _, x := range more {
		e.Register(x)
	}
	return e
}

func (e *Engines) Register(eng Engine) {
	if eng == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.m[strings.ToLower(eng.Name())] = eng
	if e.def == "" {
		e.def = strings.ToLower(eng.Name())
	}
}

// GetEngine возвращает движок по имени; пустое имя — движок по умолчанию.
func (e *Engines) GetEngine(name string) (Engine, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = e.def
	}
	if eng, ok := e.m[name]; ok {
		return eng, nil
	}
	return nil, fmt.Errorf("unknown engine %q; available: %s", name, strings.Join(e.namesLocked(), ", "))
}

// SetDefault меняет движок по умолчанию; пустое имя игнорируется.
func (e *Engines) SetDefault(name string) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return
	}
	e.mu.Lock()
	e.def = name
	e.mu.Unlock()
}

func (e *Engines) Default() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.def
}

func (e *Engines) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.namesLocked()
}

func (e *Engines) namesLocked() []string {
	out := make([]string, 0, len(e.m))
	for k := range e.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
