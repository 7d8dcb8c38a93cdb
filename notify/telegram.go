// Package notify forwards contact-form submissions to a chat bot.
package notify

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

const defaultBaseURL = "https://api.telegram.org"

// Telegram sends formatted messages to a single chat via the bot API.
type Telegram struct {
	BotToken string
	ChatID   string
	BaseURL  string
	Client   *http.Client
}

func NewTelegram(botToken, chatID string) *Telegram {
	return &Telegram{
		BotToken: botToken,
		ChatID:   chatID,
		BaseURL:  defaultBaseURL,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

// SendContact forwards a contact-form submission. The caller persists the
// message before calling this, so a failure here loses nothing.
func (t *Telegram) SendContact(name, contact, message string) error {
	if t.BotToken == "" || t.ChatID == "" {
		return errors.New("telegram bot not configured")
	}
	text := fmt.Sprintf("🌟 New Contact Form Submission\n\n👤 Name: %s\n📧 Contact: %s\n📝 Message:\n%s",
		name, contact, message)
	body, err := json.Marshal(sendMessageRequest{ChatID: t.ChatID, Text: text})
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.BaseURL, t.BotToken)
	resp, err := t.Client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram api status %d: %s", resp.StatusCode, detail)
	}
	return nil
}
