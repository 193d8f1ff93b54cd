package handle

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
)

// DownloadName — имя файла, под которым отдаётся распознанный текст.
const DownloadName = "extracted-text.txt"

// Download отдаёт текст как вложение text/plain. Принимает JSON {"text": ...}
// или поле формы "text" (так работает обычная <form> без JS).
func (h *Handle) Download(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	var text string
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch ct {
	case "application/json":
		var req struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
			return
		}
		text = req.Text
	case "application/x-www-form-urlencoded", "multipart/form-data":
		text = r.FormValue("text")
	default:
		b, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		text = string(b)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": DownloadName}))
	_, _ = io.WriteString(w, text)
}
