// Package tesseract — движок распознавания на gosseract (libtesseract).
package tesseract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"ocrapp/api/internal/ocr"
	"ocrapp/api/internal/util"
)

// Engine создаёт по клиенту gosseract на каждый вызов.
type Engine struct {
	// TessdataPrefix — каталог с *.traineddata; пусто — как настроено в libtesseract.
	TessdataPrefix string
	clientFactory  func() *gosseract.Client
	// availableLanguages — языки из каталога libtesseract по умолчанию.
	availableLanguages func() ([]string, error)
}

func New(tessdataPrefix string) *Engine {
	return &Engine{
		TessdataPrefix: strings.TrimSpace(tessdataPrefix),
		clientFactory:  gosseract.NewClient,

		availableLanguages: gosseract.GetAvailableLanguages,
	}
}

func (e *Engine) Name() string { return "tesseract" }

// Version — версия libtesseract, для /healthz и логов.
func (e *Engine) Version() string { return gosseract.Version() }

func (e *Engine) NewWorker(ctx context.Context) (ocr.Worker, error) {
	c := e.clientFactory()
	if e.TessdataPrefix != "" {
		if err := c.SetTessdataPrefix(e.TessdataPrefix); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	return &worker{client: c, tessdata: e.tessdataDir(), available: e.availableLanguages}, nil
}

// tessdataDir — где искать traineddata для ранней проверки языков.
func (e *Engine) tessdataDir() string {
	if e.TessdataPrefix != "" {
		return e.TessdataPrefix
	}
	return strings.TrimSpace(os.Getenv("TESSDATA_PREFIX"))
}

type worker struct {
	client    *gosseract.Client
	tessdata  string
	available func() ([]string, error)
	progress  func(ocr.EngineProgress)
}

func (w *worker) emit(status string, p float64) {
	if w.progress != nil {
		w.progress(ocr.EngineProgress{Status: status, Progress: p})
	}
}

// LoadLanguage проверяет наличие traineddata: в заданном каталоге по файлам,
// иначе по списку языков libtesseract.
func (w *worker) LoadLanguage(ctx context.Context, spec string) error {
	langs := splitSpec(spec)
	if len(langs) == 0 {
		return fmt.Errorf("empty language spec")
	}
	w.emit("loading language traineddata", 0)
	if w.tessdata != "" {
		for _, l := range langs {
			p := filepath.Join(w.tessdata, l+".traineddata")
			if _, err := os.Stat(p); err != nil {
				return fmt.Errorf("traineddata for %q not found in %s", l, w.tessdata)
			}
		}
	} else if w.available != nil {
		have, err := w.available()
		if err != nil {
			return fmt.Errorf("list tesseract languages: %w", err)
		}
		for _, l := range langs {
			if !slices.Contains(have, l) {
				return fmt.Errorf("traineddata for %q is not installed", l)
			}
		}
	}
	w.emit("loading language traineddata", 1)
	return nil
}

func (w *worker) Initialize(ctx context.Context, spec string) error {
	w.emit("initializing api", 0)
	if err := w.client.SetLanguage(splitSpec(spec)...); err != nil {
		return fmt.Errorf("set languages: %w", err)
	}
	if err := w.client.DisableOutput(); err != nil {
		return fmt.Errorf("disable output: %w", err)
	}
	w.emit("initializing api", 1)
	return nil
}

func (w *worker) SetProgressHandler(fn func(ocr.EngineProgress)) { w.progress = fn }

// Recognize — libtesseract не отдаёт промежуточный прогресс, поэтому
// сообщаем только начало и конец распознавания.
func (w *worker) Recognize(ctx context.Context, img ocr.Image) (string, error) {
	data, err := normalize(img)
	if err != nil {
		return "", err
	}
	if err := w.client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	w.emit(ocr.StatusRecognizing, 0)
	text, err := w.client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	w.emit(ocr.StatusRecognizing, 1)
	return text, nil
}

func (w *worker) Terminate() error {
	return w.client.Close()
}

// normalize перекодирует WebP в PNG: leptonica не всегда собрана с libwebp.
func normalize(img ocr.Image) ([]byte, error) {
	if util.SniffImageMIME(img.Data) == ocr.MimeWebP || strings.HasPrefix(strings.ToLower(img.MIME), ocr.MimeWebP) {
		return util.WebPToPNG(img.Data)
	}
	return img.Data, nil
}

func splitSpec(spec string) []string {
	var out []string
	for _, l := range strings.Split(spec, "+") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
