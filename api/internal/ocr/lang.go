package ocr

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

type Language string

const (
	English Language = "eng"
	Bengali Language = "ben"
)

var languageNames = map[Language]string{
	English: "English",
	Bengali: "Bengali",
}

// SupportedLanguages — фиксированный перечень, порядок важен для UI.
var SupportedLanguages = []Language{English, Bengali}

func (l Language) Name() string {
	if n, ok := languageNames[l]; ok {
		return n
	}
	return string(l)
}

// NativeName — самоназвание языка по CLDR ("বাংলা" для ben).
func (l Language) NativeName() string {
	tag, err := language.Parse(string(l))
	if err != nil {
		return l.Name()
	}
	if n := display.Self.Name(tag); n != "" {
		return n
	}
	return l.Name()
}

func (l Language) Valid() bool {
	_, ok := languageNames[l]
	return ok
}

// LanguageSet — упорядоченный набор языков без повторов.
type LanguageSet []Language

// DefaultLanguages — английский + бенгальский, запрашиваются по умолчанию.
func DefaultLanguages() LanguageSet {
	return LanguageSet{English, Bengali}
}

// Spec склеивает коды в строку для движка: "eng+ben".
func (s LanguageSet) Spec() string {
	parts := make([]string, len(s))
	for i, l := range s {
		parts[i] = string(l)
	}
	return strings.Join(parts, "+")
}

func (s LanguageSet) Codes() []string {
	out := make([]string, len(s))
	for i, l := range s {
		out[i] = string(l)
	}
	return out
}

func (s LanguageSet) Names() []string {
	out := make([]string, len(s))
	for i, l := range s {
		out[i] = l.Name()
	}
	return out
}

func (s LanguageSet) String() string { return s.Spec() }

// Validate проверяет, что набор непустой, без повторов и только из перечня.
func (s LanguageSet) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("no languages requested")
	}
	seen := make(map[Language]bool, len(s))
	for _, l := range s {
		if !l.Valid() {
			return fmt.Errorf("unsupported language %q", string(l))
		}
		if seen[l] {
			return fmt.Errorf("duplicate language %q", string(l))
		}
		seen[l] = true
	}
	return nil
}

// ParseLanguage принимает код ("ben") или название ("Bengali") без учёта регистра.
func ParseLanguage(s string) (Language, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, l := range SupportedLanguages {
		if v == string(l) || v == strings.ToLower(l.Name()) {
			return l, nil
		}
	}
	return "", fmt.Errorf("unsupported language %q", s)
}

// ParseLanguages разбирает "eng+ben", "English, Bengali", "eng ben".
// Пустая строка даёт набор по умолчанию; повторы отбрасываются.
func ParseLanguages(s string) (LanguageSet, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '+' || r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 {
		return DefaultLanguages(), nil
	}
	out := make(LanguageSet, 0, len(fields))
	seen := make(map[Language]bool, len(fields))
	for _, f := range fields {
		l, err := ParseLanguage(f)
		if err != nil {
			return nil, err
		}
		if seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out, nil
}
