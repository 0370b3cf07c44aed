package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	// TelegramBaseURL is the Bot API host
	TelegramBaseURL = "https://api.telegram.org"
	// TelegramTimeout bounds a single sendMessage call
	TelegramTimeout = 15 * time.Second
)

// TelegramConfig holds bot credentials
type TelegramConfig struct {
	BotToken string
	ChatID   string
	BaseURL  string
	Timeout  time.Duration
}

// TelegramNotifier posts messages to one chat through the Bot API
type TelegramNotifier struct {
	token      string
	chatID     string
	baseURL    string
	httpClient *http.Client
}

func NewTelegramNotifier(config TelegramConfig) *TelegramNotifier {
	if config.BaseURL == "" {
		config.BaseURL = TelegramBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = TelegramTimeout
	}

	return &TelegramNotifier{
		token:   config.BotToken,
		chatID:  config.ChatID,
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

func (t *TelegramNotifier) Configured() bool {
	return t.token != "" && t.chatID != ""
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send delivers text as MarkdownV2
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	body, err := json.Marshal(sendMessageRequest{
		ChatID:    t.chatID,
		Text:      text,
		ParseMode: "MarkdownV2",
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return ErrDispatchTimeout
		}
		// the token is part of the URL, keep it out of the error text
		return fmt.Errorf("%w: %s", ErrDispatchNetwork, describeTransportError(err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return ErrDispatchTimeout
		}
		return fmt.Errorf("%w: read response: %s", ErrDispatchNetwork, describeTransportError(err))
	}

	var result telegramResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return fmt.Errorf("%w: status %d with unreadable body", ErrDispatchNetwork, resp.StatusCode)
	}
	if !result.OK {
		desc := result.Description
		if desc == "" {
			desc = "Unknown Telegram error"
		}
		return &ChannelError{Description: desc}
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}

func describeTransportError(err error) string {
	var uerr interface{ Unwrap() error }
	if errors.As(err, &uerr) {
		if inner := uerr.Unwrap(); inner != nil {
			return inner.Error()
		}
	}
	return "request failed"
}
