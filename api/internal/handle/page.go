package handle

import (
	"embed"
	"html/template"
	"log"
	"net/http"
	"strings"

	"ocrapp/api/internal/ocr"
)

//go:embed templates/index.html
var templatesFS embed.FS

var indexTmpl = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

type languageOption struct {
	Spec     string
	Label    string
	Selected bool
}

type pageData struct {
	Title        string
	Accept       string
	MaxBytes     int
	Languages    []languageOption
	DownloadName string
}

// languageOptions — варианты выбора: все языки вместе, затем по одному.
func languageOptions(def ocr.LanguageSet) []languageOption {
	all := ocr.LanguageSet(ocr.SupportedLanguages)
	opts := []languageOption{{Spec: all.Spec(), Label: strings.Join(all.Names(), " + ")}}
	for _, l := range ocr.SupportedLanguages {
		label := l.Name()
		if n := l.NativeName(); n != label {
			label += " (" + n + ")"
		}
		opts = append(opts, languageOption{Spec: string(l), Label: label})
	}
	for i := range opts {
		opts[i].Selected = opts[i].Spec == def.Spec()
	}
	return opts
}

// Index — страница загрузки и просмотра результата.
func (h *Handle) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "GET only")
		return
	}
	data := pageData{
		Title:        "Image to Text",
		Accept:       strings.Join(ocr.AllowedMIME, ","),
		MaxBytes:     ocr.MaxImageSize,
		Languages:    languageOptions(h.langs),
		DownloadName: DownloadName,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, data); err != nil {
		log.Printf("index: render: %v", err)
	}
}
