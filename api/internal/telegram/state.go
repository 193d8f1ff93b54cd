package telegram

import (
	"sync"

	"ocrapp/api/internal/ocr"
)

var (
	langState   sync.Map // chatID -> ocr.LanguageSet
	engineState sync.Map // chatID -> string
)

func setChatLanguages(chatID int64, l ocr.LanguageSet) { langState.Store(chatID, l) }

func chatLanguages(chatID int64) (ocr.LanguageSet, bool) {
	if v, ok := langState.Load(chatID); ok {
		l, ok := v.(ocr.LanguageSet)
		return l, ok && len(l) > 0
	}
	return nil, false
}

func setChatEngine(chatID int64, name string) { engineState.Store(chatID, name) }

func chatEngine(chatID int64) string {
	if v, ok := engineState.Load(chatID); ok {
		s, _ := v.(string)
		return s
	}
	return ""
}
