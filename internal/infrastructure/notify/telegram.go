package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"inspection-station/internal/domain/port"
)

var _ port.Notifier = (*TelegramNotifier)(nil)

// TelegramNotifier отправляет уведомления о забракованных платах в чат
// смены. Уведомление уходит после записи результатов, его ошибка не
// влияет на итог инспекции.
type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
	logger *zap.Logger
}

// NewTelegramNotifier создаёт уведомитель для чата chatID.
func NewTelegramNotifier(token string, chatID int64, logger *zap.Logger) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	logger.Info("telegram notifier authorized", zap.String("account", api.Self.UserName))

	return &TelegramNotifier{
		api:    api,
		chatID: chatID,
		logger: logger,
	}, nil
}

// NotifyFailure отправляет сообщение о плате, не прошедшей инспекцию.
func (n *TelegramNotifier) NotifyFailure(ctx context.Context, barcode, summary string) error {
	text := fmt.Sprintf("⚠️ Inspection failed\nBarcode: %s\n%s", barcode, summary)

	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.api.Send(msg); err != nil {
		n.logger.Error("failed to send failure notification",
			zap.String("barcode", barcode), zap.Error(err))
		return fmt.Errorf("failed to send notification: %w", err)
	}
	n.logger.Info("failure notification sent", zap.String("barcode", barcode))
	return nil
}
