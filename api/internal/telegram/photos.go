package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ocrapp/api/internal/ocr"
	"ocrapp/api/internal/util"
)

// acceptPhoto берёт самое крупное превью из присланных размеров.
// Telegram пережимает фото в JPEG.
func (r *Router) acceptPhoto(ctx context.Context, msg *tgbotapi.Message) {
	ph := msg.Photo[len(msg.Photo)-1]
	r.recognize(ctx, msg.Chat.ID, ph.FileID, ocr.MimeJPEG, int64(ph.FileSize))
}

// acceptDocument — изображение, присланное файлом (без сжатия Telegram).
func (r *Router) acceptDocument(ctx context.Context, msg *tgbotapi.Message) {
	d := msg.Document
	r.recognize(ctx, msg.Chat.ID, d.FileID, d.MimeType, int64(d.FileSize))
}

func (r *Router) recognize(ctx context.Context, cid int64, fileID, mimeType string, size int64) {
	svc, err := r.service(cid)
	if err != nil {
		r.SendError(cid, err)
		return
	}
	langs := r.languages(cid)

	// заведомо неподходящий файл не скачиваем: оркестратор отклонит его
	// по объявленным типу и размеру
	if size > ocr.MaxImageSize || (mimeType != "" && !ocr.IsAllowedMIME(mimeType)) {
		_, err := svc.ExtractText(ctx, ocr.Image{MIME: mimeType, Size: size}, langs, nil)
		r.SendError(cid, err)
		return
	}

	data, err := r.download(ctx, fileID)
	if err != nil {
		r.SendError(cid, fmt.Errorf("download: %w", err))
		return
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = util.SniffImageMIME(data)
	}

	status, err := r.Bot.Send(tgbotapi.NewMessage(cid, progressText(0)))
	var onProgress ocr.ProgressFunc
	if err == nil {
		pm := &progressMessage{bot: r.Bot, chatID: cid, msgID: status.MessageID, now: time.Now}
		onProgress = pm.Update
	}

	res, err := svc.ExtractText(ctx, ocr.Image{Data: data, MIME: mimeType, Size: size}, langs, onProgress)
	if err != nil {
		r.SendError(cid, err)
		return
	}
	r.SendResult(cid, res.Text)
}

func (r *Router) download(ctx context.Context, fileID string) ([]byte, error) {
	url, err := r.Bot.GetFileDirectURL(fileID)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	// +1 байт, чтобы оркестратор увидел превышение лимита
	return io.ReadAll(io.LimitReader(resp.Body, ocr.MaxImageSize+1))
}
