package telegram

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ocrapp/api/internal/ocr"
)

const (
	// DownloadName — имя файла с распознанным текстом.
	DownloadName = "extracted-text.txt"

	langCallbackPrefix = "lang:"
	progressEvery      = time.Second
)

// Кнопки выбора языков: все вместе и по одному.
func makeLanguageKeyboard() tgbotapi.InlineKeyboardMarkup {
	all := ocr.LanguageSet(ocr.SupportedLanguages)
	row := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData(strings.Join(all.Names(), " + "), langCallbackPrefix+all.Spec()),
	}
	for _, l := range ocr.SupportedLanguages {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(l.Name(), langCallbackPrefix+string(l)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func progressText(percent int) string {
	return fmt.Sprintf("⏳ Processing image... %d%%", percent)
}

// progressMessage правит одно статусное сообщение, не чаще раза в секунду.
// 100% показывается всегда.
type progressMessage struct {
	bot    Bot
	chatID int64
	msgID  int

	mu     sync.Mutex
	last   int
	lastAt time.Time
	now    func() time.Time
}

func (p *progressMessage) Update(pr ocr.Progress) {
	pct := pr.Percent()
	p.mu.Lock()
	now := p.now()
	if pct == p.last || (pct < 100 && now.Sub(p.lastAt) < progressEvery) {
		p.mu.Unlock()
		return
	}
	p.last, p.lastAt = pct, now
	p.mu.Unlock()

	_, _ = p.bot.Send(tgbotapi.NewEditMessageText(p.chatID, p.msgID, progressText(pct)))
}
