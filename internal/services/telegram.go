package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/example/tienda/internal/models"
)

// TelegramService handles sending notifications to Telegram.
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

// NotifyOrderPaid tells the admin chat that a reconciled order is paid.
func (s *TelegramService) NotifyOrderPaid(order models.Order) error {
	if s.adminChatID == "" {
		return nil
	}

	var items []models.OrderItem
	_ = json.Unmarshal(order.Items, &items)

	var itemsList strings.Builder
	for i, item := range items {
		itemsList.WriteString(fmt.Sprintf("%d. <b>%s</b> ×%d — $%.2f\n",
			i+1, item.Title, item.Quantity, item.UnitPrice*float64(item.Quantity)))
	}

	message := fmt.Sprintf(`<b>💰 PAGO ACREDITADO</b>
<b>🧾 Pago:</b> %s
<b>👤 Cliente:</b> %s
<b>📧 Email:</b> %s
<b>🛒 Productos:</b>
%s<b>💵 Total:</b> $%.2f
<b>💳 Medio:</b> %s`,
		order.ID,
		order.PayerName,
		order.Email,
		itemsList.String(),
		order.Amount,
		order.PaymentType,
	)

	return s.SendToAdmin(strings.TrimSpace(message))
}
