package ocr

import (
	"errors"
	"fmt"
	"strings"
)

const transcriptionPrompt = `You are an OCR engine. Transcribe ALL text visible in the image exactly as written.
Languages expected: %s.
Rules:
- Keep the original line breaks, spelling, punctuation and script (do not transliterate).
- Do not translate, summarize, explain or add anything.
- Output plain text only, no Markdown, no code fences.
- If the image contains no text, output nothing.`

// UserPrompt — сообщение пользователя рядом с картинкой для LLM-движков.
const UserPrompt = "Transcribe the text in this image."

// TranscriptionPrompt — системный промпт для LLM-движков.
func TranscriptionPrompt(names []string) string {
	return fmt.Sprintf(transcriptionPrompt, strings.Join(names, ", "))
}

// LanguageNames переводит "eng+ben" в ["English", "Bengali"].
func LanguageNames(spec string) ([]string, error) {
	var names []string
	for _, code := range strings.Split(spec, "+") {
		l, err := ParseLanguage(code)
		if err != nil {
			return nil, err
		}
		names = append(names, l.Name())
	}
	if len(names) == 0 {
		return nil, errors.New("empty language spec")
	}
	return names, nil
}
