package telegram

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ocrapp/api/internal/ocr"
	"ocrapp/api/internal/util"
)

// Bot — часть *tgbotapi.BotAPI, которой пользуется роутер.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

type Router struct {
	Bot      Bot
	Engines  *ocr.Engines
	Recorder ocr.Recorder
	// Languages — набор по умолчанию для чатов без /lang.
	Languages ocr.LanguageSet

	HTTPClient *http.Client
}

const maxMessageLen = 3900

const helpText = `Send me a photo or an image file (JPEG, PNG or WebP, up to 10MB) and I will reply with the text found in it.

Commands:
/lang: show or change recognition languages (eng, ben, eng+ben)
/engine: show or change the OCR engine
/help: this message`

// HandleUpdate обрабатывает одно обновление. Безопасно вызывать из
// нескольких горутин: состояние чатов лежит в sync.Map.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.CallbackQuery != nil {
		r.handleCallback(*upd.CallbackQuery)
		return
	}
	if upd.Message == nil {
		return
	}
	msg := upd.Message
	switch {
	case msg.IsCommand():
		r.handleCommand(msg)
	case len(msg.Photo) > 0:
		r.acceptPhoto(ctx, msg)
	case msg.Document != nil:
		r.acceptDocument(ctx, msg)
	default:
		r.send(msg.Chat.ID, "Send me a photo or an image file. /help for details.")
	}
}

func (r *Router) handleCommand(msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	args := strings.TrimSpace(msg.CommandArguments())
	switch msg.Command() {
	case "start", "help":
		r.send(cid, helpText)
	case "lang":
		if args == "" {
			m := tgbotapi.NewMessage(cid, "Current languages: "+r.languages(cid).String()+"\nChoose:")
			m.ReplyMarkup = makeLanguageKeyboard()
			r.sendMsg(m)
			return
		}
		r.setLanguages(cid, args)
	case "engine":
		if args == "" {
			r.send(cid, fmt.Sprintf("Current engine: %s\nAvailable: %s\nUsage: /engine <name>",
				r.engineName(cid), strings.Join(r.Engines.Names(), ", ")))
			return
		}
		if _, err := r.Engines.GetEngine(args); err != nil {
			r.send(cid, err.Error())
			return
		}
		setChatEngine(cid, strings.ToLower(args))
		r.send(cid, "✅ Engine: "+strings.ToLower(args))
	default:
		r.send(cid, "Unknown command. /help for the list.")
	}
}

func (r *Router) setLanguages(cid int64, spec string) {
	langs, err := ocr.ParseLanguages(spec)
	if err != nil {
		r.send(cid, "Unknown language. Use eng, ben or eng+ben.")
		return
	}
	setChatLanguages(cid, langs)
	r.send(cid, "✅ Languages: "+langs.String())
}

func (r *Router) handleCallback(cb tgbotapi.CallbackQuery) {
	_, _ = r.Bot.Request(tgbotapi.NewCallback(cb.ID, "")) // ack
	if cb.Message == nil {
		return
	}
	cid := cb.Message.Chat.ID
	if spec, ok := strings.CutPrefix(cb.Data, langCallbackPrefix); ok {
		edit := tgbotapi.NewEditMessageReplyMarkup(cid, cb.Message.MessageID, tgbotapi.InlineKeyboardMarkup{
			InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{},
		})
		_, _ = r.Bot.Send(edit)
		r.setLanguages(cid, spec)
	}
}

func (r *Router) languages(cid int64) ocr.LanguageSet {
	if l, ok := chatLanguages(cid); ok {
		return l
	}
	if len(r.Languages) > 0 {
		return r.Languages
	}
	return ocr.DefaultLanguages()
}

func (r *Router) engineName(cid int64) string {
	if name := chatEngine(cid); name != "" {
		return name
	}
	return r.Engines.Default()
}

func (r *Router) service(cid int64) (*ocr.Service, error) {
	eng, err := r.Engines.GetEngine(r.engineName(cid))
	if err != nil {
		return nil, err
	}
	var opts []ocr.Option
	if r.Recorder != nil {
		opts = append(opts, ocr.WithRecorder(r.Recorder))
	}
	return ocr.NewService(eng, opts...), nil
}

func (r *Router) send(chatID int64, text string) {
	r.sendMsg(tgbotapi.NewMessage(chatID, text))
}

func (r *Router) sendMsg(c tgbotapi.Chattable) {
	if _, err := r.Bot.Send(c); err != nil {
		log.Printf("telegram: send: %v", err)
	}
}

// SendResult отправляет текст сообщением (с обрезкой под лимит Telegram)
// и целиком файлом extracted-text.txt.
func (r *Router) SendResult(chatID int64, text string) {
	if strings.TrimSpace(text) == "" {
		r.send(chatID, "No text found in the image.")
		return
	}
	r.send(chatID, "📝 Extracted text:\n\n"+util.Truncate(text, maxMessageLen))

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: DownloadName, Bytes: []byte(text)})
	r.sendMsg(doc)
}

func (r *Router) SendError(chatID int64, err error) {
	r.send(chatID, "❌ "+err.Error())
}

func (r *Router) httpClient() *http.Client {
	if r.HTTPClient != nil {
		return r.HTTPClient
	}
	return &http.Client{Timeout: 60 * time.Second}
}
