package notify

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"autocaptions/internal/config"
)

const (
	userAgent       = "AutoCaptions-Go/0.1.0"
	telegramBaseURL = "https://api.telegram.org"
)

// Service defines the notification surface exposed to workflow components.
type Service interface {
	NotifyJobCompleted(ctx context.Context, title, videoPath string) error
	NotifyJobFailed(ctx context.Context, title, reason string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by Telegram when
// configured. When no bot token is configured, a noop implementation is
// returned.
func NewService(cfg *config.Config) Service {
	token := strings.TrimSpace(cfg.Telegram.BotToken)
	chatID := strings.TrimSpace(cfg.Telegram.ChatID)
	if token == "" || chatID == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Telegram.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &telegramService{
		baseURL: telegramBaseURL,
		token:   token,
		chatID:  chatID,
		client:  &http.Client{Timeout: timeout},
	}
}

type telegramService struct {
	baseURL string
	token   string
	chatID  string
	client  *http.Client
}

// NotifyJobCompleted uploads the finished video with a caption via
// sendVideo. The file is streamed as multipart form data.
func (t *telegramService) NotifyJobCompleted(ctx context.Context, title, videoPath string) error {
	title = strings.TrimSpace(title)
	videoPath = strings.TrimSpace(videoPath)
	file, err := os.Open(videoPath)
	if err != nil {
		return fmt.Errorf("open video for upload: %w", err)
	}
	defer file.Close()

	body, contentType, err := videoForm(t.chatID, title, filepath.Base(videoPath), file)
	if err != nil {
		return err
	}
	return t.post(ctx, "sendVideo", contentType, body)
}

// NotifyJobFailed sends a plain-text failure report via sendMessage.
func (t *telegramService) NotifyJobFailed(ctx context.Context, title, reason string) error {
	title = strings.TrimSpace(title)
	reason = strings.TrimSpace(reason)
	message := fmt.Sprintf("Captioning failed: %s", title)
	if reason != "" {
		message = fmt.Sprintf("%s\n%s", message, reason)
	}
	return t.sendMessage(ctx, message)
}

func (t *telegramService) TestNotification(ctx context.Context) error {
	return t.sendMessage(ctx, "Notification system test")
}

func (t *telegramService) sendMessage(ctx context.Context, text string) error {
	body, contentType, err := messageForm(t.chatID, text)
	if err != nil {
		return err
	}
	return t.post(ctx, "sendMessage", contentType, body)
}

func (t *telegramService) post(ctx context.Context, method, contentType string, body io.Reader) error {
	if t == nil || t.client == nil {
		return nil
	}
	endpoint := fmt.Sprintf("%s/bot%s/%s", t.baseURL, t.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return fmt.Errorf("build telegram request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", contentType)

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("telegram %s returned %d: %s", method, resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// videoForm builds the multipart body for sendVideo. The whole form is
// buffered through a pipe so large videos are streamed rather than held
// in memory.
func videoForm(chatID, caption, filename string, video io.Reader) (io.Reader, string, error) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		err := func() error {
			if err := writer.WriteField("chat_id", chatID); err != nil {
				return err
			}
			if caption != "" {
				if err := writer.WriteField("caption", caption); err != nil {
					return err
				}
			}
			if err := writer.WriteField("supports_streaming", "true"); err != nil {
				return err
			}
			part, err := writer.CreateFormFile("video", filename)
			if err != nil {
				return err
			}
			if _, err := io.Copy(part, video); err != nil {
				return err
			}
			return writer.Close()
		}()
		pw.CloseWithError(err)
	}()
	return pr, writer.FormDataContentType(), nil
}

func messageForm(chatID, text string) (io.Reader, string, error) {
	var buf strings.Builder
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("chat_id", chatID); err != nil {
		return nil, "", fmt.Errorf("encode telegram message: %w", err)
	}
	if err := writer.WriteField("text", text); err != nil {
		return nil, "", fmt.Errorf("encode telegram message: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("encode telegram message: %w", err)
	}
	return strings.NewReader(buf.String()), writer.FormDataContentType(), nil
}

type noopService struct{}

func (noopService) NotifyJobCompleted(context.Context, string, string) error { return nil }
func (noopService) NotifyJobFailed(context.Context, string, string) error    { return nil }
func (noopService) TestNotification(context.Context) error                   { return nil }
