package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"exam-reader/api/internal/imaging"
)

const pageTimeout = 5 * time.Minute

func (r *Router) acceptPhoto(msg tgbotapi.Message) {
	ph := msg.Photo[len(msg.Photo)-1] // largest size
	r.processUpload(msg.Chat.ID, ph.FileID)
}

// acceptDocument handles photos sent "as file", which skip Telegram's recompression.
func (r *Router) acceptDocument(msg tgbotapi.Message) {
	r.processUpload(msg.Chat.ID, msg.Document.FileID)
}

func (r *Router) processUpload(chatID int64, fileID string) {
	ctx, cancel := context.WithTimeout(context.Background(), pageTimeout)
	defer cancel()

	url, err := r.Bot.GetFileDirectURL(fileID)
	if err != nil {
		r.SendError(chatID, err)
		return
	}
	img, err := download(ctx, url)
	if err != nil {
		r.SendError(chatID, fmt.Errorf("下載照片：%w", err))
		return
	}
	if prepared, err := imaging.Prepare(img, 0, r.MaxPixels); err != nil {
		r.Log.Warn().Err(err).Int64("chat_id", chatID).Msg("photo not re-encoded, sending as is")
	} else {
		img = prepared
	}

	proc := r.processorFor(chatID)
	page := proc.Process(ctx, img)
	rec := r.Answers.ForPage(page.ID, fmt.Sprintf("chat:%d", chatID), img, proc.Answerer().Name())

	n := 0
	for a := range page.Results() {
		n++
		r.send(chatID, a.String())
		if err := rec.Record(ctx, a); err != nil {
			r.Log.Warn().Err(err).Str("page_id", page.ID).Msg("record answer")
		}
	}

	footer := fmt.Sprintf("本頁完成，共 %d 組答案。", n)
	if proc.Session().Pending != nil {
		footer += "\n題組延續到下一頁，請接著傳下一頁。"
	}
	out := tgbotapi.NewMessage(chatID, footer)
	out.ReplyMarkup = makeResetKeyboard()
	r.sendMsg(out)
}

func download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	return io.ReadAll(resp.Body)
}

func httpClient() *http.Client {
	return &http.Client{Timeout: 60 * time.Second}
}
