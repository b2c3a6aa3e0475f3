package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/asaskevich/EventBus"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jobconnect/jobboard-api/internal/domain/events"
	"github.com/jobconnect/jobboard-api/internal/domain/models"
	"github.com/jobconnect/jobboard-api/internal/logger"
	log "github.com/sirupsen/logrus"
)

type sender interface {
	Send(c botApi.Chattable) (botApi.Message, error)
}

type profileRepository interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
}

// Telegram forwards stored notifications and password reset codes to users who linked a chat.
type Telegram struct {
	api      sender
	bot      *botApi.BotAPI
	profiles profileRepository
	bus      EventBus.Bus
}

func NewTelegram(token string, profiles profileRepository, bus EventBus.Bus) (*Telegram, error) {

	api, err := botApi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	log.Infof("Authorized on account %s", api.Self.UserName)

	if err := botApi.SetLogger(log.StandardLogger()); err != nil {
		return nil, err
	}

	t, err := newTelegram(api, profiles, bus)
	if err != nil {
		return nil, err
	}
	t.bot = api
	return t, nil
}

func newTelegram(api sender, profiles profileRepository, bus EventBus.Bus) (*Telegram, error) {
	if bus == nil {
		return nil, errors.New("bus is nil")
	}
	if profiles == nil {
		return nil, errors.New("profile repository is nil")
	}

	t := &Telegram{api: api, profiles: profiles, bus: bus}

	// delivery must not hold up the request that produced the notification
	if err := bus.SubscribeAsync(events.NotificationCreatedTopic, t.onNotificationCreated, false); err != nil {
		return nil, err
	}
	if err := bus.SubscribeAsync(events.PasswordResetRequestedTopic, t.onPasswordResetRequested, false); err != nil {
		return nil, err
	}
	return t, nil
}

// Run answers /start with the chat id the user enters in the app to link the chat.
func (t *Telegram) Run() {
	if t.bot == nil {
		return
	}

	updateConfig := botApi.NewUpdate(0)
	updateConfig.Timeout = 60

	for update := range t.bot.GetUpdatesChan(updateConfig) {
		t.handleUpdate(update)
	}
}

func (t *Telegram) Stop() {
	if t.bot != nil {
		t.bot.StopReceivingUpdates()
	}
	_ = t.bus.Unsubscribe(events.NotificationCreatedTopic, t.onNotificationCreated)
	_ = t.bus.Unsubscribe(events.PasswordResetRequestedTopic, t.onPasswordResetRequested)
	t.bus.WaitAsync()
}

func (t *Telegram) handleUpdate(update botApi.Update) {
	message := update.Message
	if message == nil || message.Chat == nil || !message.Chat.IsPrivate() {
		return
	}

	var text string
	switch message.Command() {
	case "start":
		text = fmt.Sprintf("Hi! Your chat id is %d. Enter it in the app settings to receive notifications here.", message.Chat.ID)
	default:
		text = "I only deliver notifications. Send /start to get your chat id."
	}

	t.send(botApi.NewMessage(message.Chat.ID, text))
}

func (t *Telegram) onNotificationCreated(event events.NotificationCreated) {
	notification := event.Notification
	if chatID, ok := t.linkedChat(notification.UserID); ok {
		t.send(botApi.NewMessage(chatID, notification.Title+"\n\n"+notification.Body))
	}
}

// onPasswordResetRequested is the only channel the reset code travels through.
func (t *Telegram) onPasswordResetRequested(event events.PasswordResetRequested) {
	if chatID, ok := t.linkedChat(event.UserID); ok {
		text := fmt.Sprintf("Your password reset code: %s\n\nIt expires at %s.", event.Token,
			event.ExpiresAt.UTC().Format(time.RFC1123))
		t.send(botApi.NewMessage(chatID, text))
	}
}

func (t *Telegram) linkedChat(userID string) (int64, bool) {
	profile, err := t.profiles.GetByID(context.Background(), userID)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to get profile %s: %v", userID, err)
		return 0, false
	}
	if profile == nil || profile.TelegramChatID == nil {
		return 0, false
	}
	return *profile.TelegramChatID, true
}

func (t *Telegram) send(message botApi.Chattable) {
	if _, err := t.api.Send(message); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeTgApi).Errorf("error occured while sending message: %v", err)
	}
}
