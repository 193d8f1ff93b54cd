package ocr

import (
	"context"
	"reflect"
	"testing"
)

func TestParseLanguages(t *testing.T) {
	tests := []struct {
		in   string
		want LanguageSet
	}{
		{"", LanguageSet{English, Bengali}},
		{"eng", LanguageSet{English}},
		{"eng+ben", LanguageSet{English, Bengali}},
		{"ben+eng", LanguageSet{Bengali, English}},
		{"English, Bengali", LanguageSet{English, Bengali}},
		{" BEN  eng ", LanguageSet{Bengali, English}},
		{"eng+eng+ben", LanguageSet{English, Bengali}},
	}
	for _, tt := range tests {
		got, err := ParseLanguages(tt.in)
		if err != nil {
			t.Fatalf("ParseLanguages(%q) error = %v", tt.in, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("ParseLanguages(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseLanguagesRejectsUnknown(t *testing.T) {
	for _, in := range []string{"deu", "eng+fra", "klingon"} {
		if _, err := ParseLanguages(in); err == nil {
			t.Fatalf("ParseLanguages(%q) expected error", in)
		}
	}
}

func TestLanguageSetSpecAndValidate(t *testing.T) {
	s := DefaultLanguages()
	if s.Spec() != "eng+ben" {
		t.Fatalf("Spec() = %q", s.Spec())
	}
	if !reflect.DeepEqual(s.Names(), []string{"English", "Bengali"}) {
		t.Fatalf("Names() = %v", s.Names())
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if err := (LanguageSet{}).Validate(); err == nil {
		t.Fatalf("empty set must fail")
	}
	if err := (LanguageSet{English, English}).Validate(); err == nil {
		t.Fatalf("duplicates must fail")
	}
}

func TestEnginesRegistry(t *testing.T) {
	a, b := namedEngine("tesseract"), namedEngine("gemini")
	reg := NewEngines(a, b)
	if reg.Default() != "tesseract" {
		t.Fatalf("default = %q", reg.Default())
	}
	if e, err := reg.GetEngine(""); err != nil || e.Name() != "tesseract" {
		t.Fatalf("GetEngine(\"\") = %v, %v", e, err)
	}
	if e, err := reg.GetEngine("Gemini"); err != nil || e.Name() != "gemini" {
		t.Fatalf("GetEngine(Gemini) = %v, %v", e, err)
	}
	if _, err := reg.GetEngine("yandex"); err == nil {
		t.Fatalf("unknown engine must fail")
	}
	if !reflect.DeepEqual(reg.Names(), []string{"gemini", "tesseract"}) {
		t.Fatalf("Names() = %v", reg.Names())
	}
}

type namedEngine string

func (n namedEngine) Name() string { return string(n) }
func (n namedEngine) NewWorker(context.Context) (Worker, error) {
	return nil, nil
}

func TestNativeName(t *testing.T) {
	if got := English.NativeName(); got != "English" {
		t.Fatalf("English.NativeName() = %q", got)
	}
	if got := Bengali.NativeName(); got == "" || got == "Bengali" {
		t.Fatalf("Bengali.NativeName() = %q, want the Bengali self-name", got)
	}
}
