package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// DiscordTransport — Transport поверх Discord gateway + REST API.
type DiscordTransport struct {
	session *discordgo.Session
	logger  *slog.Logger

	mu    sync.Mutex
	users map[string]*discordgo.User // кэш пользователей по id
}

// NewDiscordTransport создаёт транспорт с bot-токеном.
// Соединение не устанавливается до Connect.
func NewDiscordTransport(token string, logger *slog.Logger) (*DiscordTransport, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}

	// Боту нужны только исходящие DM
	s.Identify.Intents = discordgo.IntentsDirectMessages

	if logger == nil {
		logger = slog.Default()
	}

	return &DiscordTransport{
		session: s,
		logger:  logger,
		users:   make(map[string]*discordgo.User),
	}, nil
}

// Connect открывает gateway-соединение. onReady вызывается один раз
// по событию Ready; Open возвращается после handshake, поэтому Ready
// может прийти уже после возврата Connect.
func (t *DiscordTransport) Connect(onReady func()) error {
	t.session.AddHandlerOnce(func(_ *discordgo.Session, _ *discordgo.Ready) {
		t.logger.Info("discord gateway ready")
		onReady()
	})

	if err := t.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	return nil
}

// LookupRecipient разрешает пользователя в DM-канал: локальный кэш,
// при промахе — удалённый fetch-by-id.
func (t *DiscordTransport) LookupRecipient(ctx context.Context, recipientID string) (string, error) {
	user := t.cachedUser(recipientID)
	if user == nil {
		fetched, err := t.session.User(recipientID, discordgo.WithContext(ctx))
		if err != nil {
			return "", t.classify(fmt.Errorf("fetch user %s: %w", recipientID, err))
		}
		t.storeUser(fetched)
		user = fetched
	}

	channel, err := t.session.UserChannelCreate(user.ID, discordgo.WithContext(ctx))
	if err != nil {
		return "", t.classify(fmt.Errorf("open dm channel for %s: %w", recipientID, err))
	}
	return channel.ID, nil
}

// Send доставляет одно сообщение в канал.
func (t *DiscordTransport) Send(ctx context.Context, channelID, text string) error {
	_, err := t.session.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx))
	if err != nil {
		return t.classify(fmt.Errorf("send to channel %s: %w", channelID, err))
	}
	return nil
}

// Close завершает gateway-соединение.
func (t *DiscordTransport) Close() error {
	return t.session.Close()
}

func (t *DiscordTransport) cachedUser(id string) *discordgo.User {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.users[id]
}

func (t *DiscordTransport) storeUser(u *discordgo.User) {
	t.mu.Lock()
	t.users[u.ID] = u
	t.mu.Unlock()
}

// classify отображает ошибки Discord API в закрытый набор видов:
// 403 — получатель закрыл DM или заблокировал бота; остальные REST
// ошибки — транспортные; всё прочее остаётся неклассифицированным.
func (t *DiscordTransport) classify(err error) error {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) {
		if restErr.Response != nil && restErr.Response.StatusCode == http.StatusForbidden {
			return fmt.Errorf("%w: %v", ErrDeliveryForbidden, err)
		}
		return fmt.Errorf("%w: %v", ErrDeliveryTransport, err)
	}
	return err
}
