package notify

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/center_scheduler/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// MessageSender is the part of *bot.Bot the notifier needs.
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// TelegramNotifier tells the teacher about new and canceled appointments.
// Teachers without a chat id are skipped.
type TelegramNotifier struct {
	sender MessageSender
	logger *zap.Logger
}

func NewTelegramNotifier(sender MessageSender, logger *zap.Logger) *TelegramNotifier {
	return &TelegramNotifier{sender: sender, logger: logger}
}

func (n *TelegramNotifier) Notify(ctx context.Context, event model.AppointmentEvent) error {
	if event.TeacherChatID == nil {
		return nil
	}

	_, err := n.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: *event.TeacherChatID,
		Text:   formatEvent(event),
	})
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	n.logger.Debug("Teacher notified",
		zap.Int64("chat_id", *event.TeacherChatID),
		zap.Int64("appointment_id", event.Appointment.ID),
	)
	return nil
}

// NewBot creates the Telegram client used for notifications. Updates are
// not polled.
func NewBot(token string) (*bot.Bot, error) {
	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return b, nil
}
