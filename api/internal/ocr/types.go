package ocr

import "time"

const (
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"
	MimeWebP = "image/webp"

	// MaxImageSize — верхняя граница размера загружаемого изображения (10 MiB).
	MaxImageSize = 10 * 1024 * 1024

	// StatusRecognizing — единственная фаза движка, которая пробрасывается наружу.
	StatusRecognizing = "recognizing text"
)

// AllowedMIME — допустимые типы изображений в порядке отображения.
var AllowedMIME = []string{MimeJPEG, MimePNG, MimeWebP}

// Image — загруженное пользователем изображение. Size берётся из заголовков
// загрузки и может отличаться от len(Data), если клиент его объявил.
type Image struct {
	Data []byte
	MIME string
	Size int64
}

// NewImage строит Image с размером по длине данных.
func NewImage(data []byte, mime string) Image {
	return Image{Data: data, MIME: mime, Size: int64(len(data))}
}

type Progress struct {
	Status   string  `json:"status"`
	Progress float64 `json:"progress"`
}

// Percent — округлённый процент для отображения в UI.
func (p Progress) Percent() int {
	return int(p.Progress*100 + 0.5)
}

type ProgressFunc func(Progress)

type Result struct {
	Text      string        `json:"text"`
	Engine    string        `json:"engine"`
	Languages string        `json:"languages"`
	Duration  time.Duration `json:"-"`
}
