package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
)

// TelegramService is the notification sink for the order pipeline. It
// subscribes to the event bus and pushes messages to the admin chat.
// Delivery is best effort: failures are logged and never fail the
// operation that produced the event.
type TelegramService struct {
	botToken    string
	adminChatID string
}

// NewTelegramService creates a new TelegramService.
func NewTelegramService(botToken, adminChatID string) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends a message to specified chat.
func (s *TelegramService) SendMessage(chatID, text string) error {
	if s.botToken == "" {
		log.Println("[Telegram] Bot token not configured")
		return nil
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.botToken)

	msg := telegramMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("[Telegram] Failed to send message: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Telegram] Unexpected status: %d", resp.StatusCode)
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}

// SendToAdmin sends a message to the admin chat.
func (s *TelegramService) SendToAdmin(text string) error {
	if s.adminChatID == "" {
		log.Println("[Telegram] Admin chat ID not configured")
		return nil
	}
	return s.SendMessage(s.adminChatID, text)
}

// HandleEvent renders a domain event as an admin notification. Registered on
// the event bus at startup.
func (s *TelegramService) HandleEvent(e Event) {
	var text string
	switch e.Type {
	case EventOrderCreated:
		text = fmt.Sprintf("<b>New order</b>\nOrder: #%d\nTotal: %d", e.Number, e.Amount)
	case EventOrderStatusChanged:
		text = fmt.Sprintf("<b>Order update</b>\nOrder: #%d\nStatus: %s", e.Number, e.Status)
	case EventPaymentCompleted:
		text = fmt.Sprintf("<b>Payment received</b>\nOrder: #%d\nAmount: %d", e.Number, e.Amount)
	default:
		return
	}

	if err := s.SendToAdmin(text); err != nil {
		log.Printf("[Telegram] Notification for order #%d failed: %v", e.Number, err)
	}
}
