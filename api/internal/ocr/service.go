package ocr

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"ocrapp/api/internal/util"
)

// Outcome — итог одного вызова ExtractText для журнала.
type Outcome struct {
	ImageSHA256 string
	MIME        string
	Size        int64
	Languages   string
	Engine      string
	Kind        Kind // пусто при успехе
	Error       string
	TextLen     int
	Duration    time.Duration
	At          time.Time
}

// Recorder сохраняет Outcome. Ошибки записи не влияют на результат вызова.
type Recorder interface {
	Record(ctx context.Context, o Outcome) error
}

type Option func(*Service)

func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.rec = r }
}

// Service — оркестратор распознавания. Состояния между вызовами нет:
// каждый вызов создаёт свой воркер и освобождает его.
type Service struct {
	engine Engine
	rec    Recorder
}

func NewService(engine Engine, opts ...Option) *Service {
	s := &Service{engine: engine}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ExtractText валидирует изображение, прогоняет его через свежий воркер и
// возвращает текст как есть. onProgress может быть nil.
func (s *Service) ExtractText(ctx context.Context, img Image, langs LanguageSet, onProgress ProgressFunc) (res Result, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res, err = Result{}, &Error{Kind: KindUnknown, Err: fmt.Errorf("panic: %v", r)}
		}
		s.finish(ctx, img, langs, res, err, time.Since(start))
	}()

	if err := Validate(img, langs); err != nil {
		return Result{}, err
	}
	res, err = s.run(ctx, img, langs, onProgress)
	if err != nil {
		return Result{}, err
	}
	res.Duration = time.Since(start)
	return res, nil
}

func (s *Service) run(ctx context.Context, img Image, langs LanguageSet, onProgress ProgressFunc) (Result, error) {
	// начатый вызов доводим до конца, отмена клиента не прерывает движок
	ctx = context.WithoutCancel(ctx)
	spec := langs.Spec()
	img.MIME = normalizeMIME(img.MIME)

	w, err := s.engine.NewWorker(ctx)
	if err != nil {
		return Result{}, wrap(KindEngineInit, err)
	}
	defer func() {
		if terr := w.Terminate(); terr != nil {
			log.Printf("ocr: %s terminate: %v", s.engine.Name(), terr)
		}
	}()

	if err := w.LoadLanguage(ctx, spec); err != nil {
		return Result{}, wrap(KindEngineInit, err)
	}
	if err := w.Initialize(ctx, spec); err != nil {
		return Result{}, wrap(KindEngineInit, err)
	}

	if onProgress != nil {
		w.SetProgressHandler(func(p EngineProgress) {
			if p.Status == StatusRecognizing {
				onProgress(Progress{Status: p.Status, Progress: p.Progress})
			}
		})
	}

	text, err := w.Recognize(ctx, img)
	if err != nil {
		return Result{}, wrap(KindRecognition, err)
	}
	return Result{Text: text, Engine: s.engine.Name(), Languages: spec}, nil
}

func (s *Service) finish(ctx context.Context, img Image, langs LanguageSet, res Result, err error, d time.Duration) {
	o := Outcome{
		MIME:      normalizeMIME(img.MIME),
		Size:      imageSize(img),
		Languages: langs.Spec(),
		Engine:    s.engine.Name(),
		TextLen:   len(res.Text),
		Duration:  d,
		At:        time.Now().UTC(),
	}
	if err != nil {
		o.Kind = KindOf(err)
		o.Error = err.Error()
		// у unknown текст общий, причину (в том числе panic) сохраняем отдельно
		if cause := errors.Unwrap(err); cause != nil && o.Kind == KindUnknown {
			o.Error += ": " + cause.Error()
		}
		log.Printf("ocr: %s langs=%s bytes=%d failed in %v (%s): %s", o.Engine, o.Languages, o.Size, d.Round(time.Millisecond), o.Kind, o.Error)
	} else {
		log.Printf("ocr: %s langs=%s bytes=%d -> %d chars in %v", o.Engine, o.Languages, o.Size, o.TextLen, d.Round(time.Millisecond))
	}
	if s.rec == nil {
		return
	}
	if len(img.Data) > 0 {
		o.ImageSHA256 = util.SHA256Hex(img.Data)
	}
	if rerr := s.rec.Record(context.WithoutCancel(ctx), o); rerr != nil {
		log.Printf("ocr: record outcome: %v", rerr)
	}
}

// Validate проверяет тип, размер и языки до любого обращения к движку.
func Validate(img Image, langs LanguageSet) error {
	if !IsAllowedMIME(img.MIME) {
		return validationError("Invalid file type %q. Please upload a JPEG, PNG, or WebP image.", img.MIME)
	}
	size := imageSize(img)
	if size > MaxImageSize {
		return validationError("File is too large (%d bytes). Maximum size is 10MB.", size)
	}
	if len(img.Data) == 0 {
		return validationError("Image is empty.")
	}
	if err := langs.Validate(); err != nil {
		return validationError("Invalid language selection: %v.", err)
	}
	return nil
}

func IsAllowedMIME(m string) bool {
	m = normalizeMIME(m)
	for _, a := range AllowedMIME {
		if m == a {
			return true
		}
	}
	return false
}

// normalizeMIME отрезает параметры: "image/png; q=1" → "image/png".
func normalizeMIME(m string) string {
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = m[:i]
	}
	return strings.ToLower(strings.TrimSpace(m))
}

// imageSize — объявленный размер, но не меньше фактического.
func imageSize(img Image) int64 {
	n := int64(len(img.Data))
	if img.Size > n {
		return img.Size
	}
	return n
}
