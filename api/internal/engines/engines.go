// Package engines собирает реестр движков распознавания из конфига.
package engines

import (
	"fmt"
	"log"

	"ocrapp/api/internal/config"
	"ocrapp/api/internal/ocr"
	"ocrapp/api/internal/ocr/gemini"
	"ocrapp/api/internal/ocr/openai"
	"ocrapp/api/internal/ocr/tesseract"
	"ocrapp/api/internal/ocr/yandex"
)

// Build регистрирует tesseract всегда, облачные движки при наличии ключей.
// Движок по умолчанию берётся из cfg.Engine.
func Build(cfg *config.Config) (*ocr.Engines, error) {
	reg := ocr.NewEngines(tesseract.New(cfg.TessdataPrefix))
	if cfg.GeminiAPIKey != "" {
		reg.Register(gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel))
	}
	if cfg.OpenAIAPIKey != "" {
		reg.Register(openai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel))
	}
	if cfg.YCOAuthToken != "" && cfg.YCFolderID != "" {
		reg.Register(yandex.New(cfg.YCOAuthToken, cfg.YCFolderID))
	}
	if _, err := reg.GetEngine(cfg.Engine); err != nil {
		return nil, fmt.Errorf("OCR_ENGINE: %w", err)
	}
	reg.SetDefault(cfg.Engine)
	log.Printf("engines: %v (default %s)", reg.Names(), reg.Default())
	return reg, nil
}
