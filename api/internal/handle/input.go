package handle

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"ocrapp/api/internal/ocr"
	"ocrapp/api/internal/util"
)

// maxBody — картинка + накладные расходы multipart/base64.
const maxBody = ocr.MaxImageSize*4/3 + 1<<20

// ExtractRequest — JSON-вариант запроса; multipart использует те же имена полей.
type ExtractRequest struct {
	ImageB64  string `json:"image_b64"`
	MimeType  string `json:"mime_type,omitempty"`
	Languages string `json:"languages,omitempty"`
	Engine    string `json:"engine,omitempty"`
}

type extractInput struct {
	img    ocr.Image
	langs  ocr.LanguageSet
	engine string
}

var errTooLarge = errors.New("File is too large. Maximum size is 10MB.")

// readInput разбирает multipart (поле "image") или JSON с base64.
func (h *Handle) readInput(w http.ResponseWriter, r *http.Request) (extractInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var (
		in        extractInput
		langsSpec string
		err       error
	)
	switch ct {
	case "multipart/form-data":
		if in.img, err = readMultipart(r); err == nil {
			langsSpec = r.FormValue("languages")
			in.engine = r.FormValue("engine")
		}
	case "application/json":
		var req ExtractRequest
		if derr := json.NewDecoder(r.Body).Decode(&req); derr != nil {
			err = bodyError("bad json", derr)
			break
		}
		in.img, err = decodeB64(req)
		langsSpec, in.engine = req.Languages, req.Engine
	default:
		return in, fmt.Errorf("unsupported content type %q: use multipart/form-data or application/json", ct)
	}
	if err != nil {
		return in, err
	}

	if q := r.URL.Query(); langsSpec == "" {
		langsSpec = q.Get("languages")
		if in.engine == "" {
			in.engine = q.Get("engine")
		}
	}
	if strings.TrimSpace(langsSpec) == "" {
		in.langs = h.langs
		return in, nil
	}
	if in.langs, err = ocr.ParseLanguages(langsSpec); err != nil {
		return in, err
	}
	return in, nil
}

func readMultipart(r *http.Request) (ocr.Image, error) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		return ocr.Image{}, bodyError("bad multipart", err)
	}
	f, fh, err := r.FormFile("image")
	if err != nil {
		return ocr.Image{}, fmt.Errorf("missing image file: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return ocr.Image{}, bodyError("read image", err)
	}
	declared := fh.Header.Get("Content-Type")
	if declared == "" || declared == "application/octet-stream" {
		declared = util.SniffImageMIME(data)
	}
	return ocr.Image{Data: data, MIME: declared, Size: fh.Size}, nil
}

func decodeB64(req ExtractRequest) (ocr.Image, error) {
	if strings.TrimSpace(req.ImageB64) == "" {
		return ocr.Image{}, errors.New("image_b64 is empty")
	}
	data, hint, err := util.DecodeBase64MaybeDataURL(req.ImageB64)
	if err != nil {
		return ocr.Image{}, fmt.Errorf("bad image_b64: %w", err)
	}
	return ocr.NewImage(data, util.PickMIME(req.MimeType, hint, data)), nil
}

func bodyError(what string, err error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large") {
		return errTooLarge
	}
	return fmt.Errorf("%s: %w", what, err)
}
