package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// Client wraps the Telegram Bot API with HTML-formatted sends and a global
// rate limiter. Telegram rejects bots that exceed roughly 30 messages per
// second; the limiter stays under that ceiling.
type Client struct {
	api        *tgbotapi.BotAPI
	limiter    *rate.Limiter
	httpClient *http.Client
}

// NewClient authenticates against the Bot API.
func NewClient(token string) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}

	return &Client{
		api:        api,
		limiter:    rate.NewLimiter(rate.Limit(25), 5),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// API exposes the underlying Bot API for update polling and webhook setup.
func (c *Client) API() *tgbotapi.BotAPI {
	return c.api
}

func (c *Client) send(ctx context.Context, msg tgbotapi.Chattable) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// SendMessage sends an HTML-formatted text message with an optional inline
// keyboard.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, kb *tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if kb != nil {
		msg.ReplyMarkup = kb
	}
	return c.send(ctx, msg)
}

// EditMessage replaces the text and keyboard of an existing message.
func (c *Client) EditMessage(ctx context.Context, chatID int64, messageID int, text string, kb *tgbotapi.InlineKeyboardMarkup) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	edit.DisableWebPagePreview = true
	if kb != nil {
		edit.ReplyMarkup = kb
	}
	return c.send(ctx, edit)
}

// AnswerCallback acknowledges an inline-button press, optionally as a popup
// alert.
func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string, showAlert bool) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	cb := tgbotapi.NewCallback(callbackID, text)
	cb.ShowAlert = showAlert
	if _, err := c.api.Request(cb); err != nil {
		return fmt.Errorf("answer callback: %w", err)
	}
	return nil
}

// SendPhoto sends a photo by platform file ID with an HTML caption.
func (c *Client) SendPhoto(ctx context.Context, chatID int64, fileID, caption string, kb *tgbotapi.InlineKeyboardMarkup) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileID))
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeHTML
	if kb != nil {
		photo.ReplyMarkup = kb
	}
	return c.send(ctx, photo)
}

// SendDocument sends an in-memory file as a document.
func (c *Client) SendDocument(ctx context.Context, chatID int64, name string, data []byte, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = caption
	doc.ParseMode = tgbotapi.ModeHTML
	return c.send(ctx, doc)
}

// SendMediaGroupURLs sends a group of photos by URL; the caption goes on the
// first item.
func (c *Client) SendMediaGroupURLs(ctx context.Context, chatID int64, urls []string, caption string) error {
	if len(urls) == 0 {
		return nil
	}

	media := make([]interface{}, 0, len(urls))
	for i, u := range urls {
		item := tgbotapi.NewInputMediaPhoto(tgbotapi.FileURL(u))
		if i == 0 {
			item.Caption = caption
		}
		media = append(media, item)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	group := tgbotapi.NewMediaGroup(chatID, media)
	if _, err := c.api.SendMediaGroup(group); err != nil {
		return fmt.Errorf("send media group: %w", err)
	}
	return nil
}

// DeleteMessage removes a message. Failures are common (already deleted, too
// old) and left to the caller to ignore.
func (c *Client) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	del := tgbotapi.NewDeleteMessage(chatID, messageID)
	if _, err := c.api.Request(del); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

func (c *Client) fetchFile(ctx context.Context, fileID string) (io.ReadCloser, error) {
	url, err := c.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// DownloadFile saves an uploaded file to a local path, creating parent
// directories as needed.
func (c *Client) DownloadFile(ctx context.Context, fileID, destPath string) error {
	body, err := c.fetchFile(ctx, fileID)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}

	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// ReadFileText downloads an uploaded document and returns its content as a
// string. Used for HTML/CSS template uploads.
func (c *Client) ReadFileText(ctx context.Context, fileID string) (string, error) {
	body, err := c.fetchFile(ctx, fileID)
	if err != nil {
		return "", err
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, 5<<20))
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return string(data), nil
}
