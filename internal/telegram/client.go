package telegram

import (
	"context"
	"fmt"
	"io"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotIdentity describes the bot account behind a token
type BotIdentity struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
}

// Activity is a single inbound update seen by the bot, used during
// setup to detect the chat the user is messaging from
type Activity struct {
	UpdateID  int    `json:"updateId"`
	ChatID    int64  `json:"chatId"`
	ChatType  string `json:"chatType"`
	ChatTitle string `json:"chatTitle"`
	FromName  string `json:"fromName"`
	Text      string `json:"text"`
}

// FileUpload is a streamed file destined for a chat. Reader is consumed
// exactly once by the send call.
type FileUpload struct {
	Name   string
	Size   int64
	Reader io.Reader
}

// Transport is the messaging surface the uploader and setup flow talk
// to. Implementations must be safe to discard after a run; callers
// construct a fresh one per run via a Factory.
type Transport interface {
	GetBotIdentity(ctx context.Context) (*BotIdentity, error)
	GetRecentActivity(ctx context.Context, offset int) ([]Activity, error)
	SendPhoto(ctx context.Context, chatID int64, file FileUpload, caption string) error
	SendVideo(ctx context.Context, chatID int64, file FileUpload, caption string) error
	SendDocument(ctx context.Context, chatID int64, file FileUpload, caption string) error
	SendTextMessage(ctx context.Context, chatID int64, text string, html bool, threadID int) error
}

// Factory builds a Transport for a bot token. Swapped out in tests.
type Factory func(token string) (Transport, error)

// Client is the Bot API backed Transport
type Client struct {
	bot *tgbotapi.BotAPI
}

// NewClient validates nothing beyond token shape; the first API call
// surfaces auth failures
func NewClient(token string) (Transport, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram: empty bot token")
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: create bot client: %w", err)
	}

	return &Client{bot: bot}, nil
}

// GetBotIdentity calls getMe and reports the bot account
func (c *Client) GetBotIdentity(ctx context.Context) (*BotIdentity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	user, err := c.bot.GetMe()
	if err != nil {
		return nil, fmt.Errorf("telegram: getMe: %w", err)
	}

	return &BotIdentity{
		ID:        user.ID,
		Username:  user.UserName,
		FirstName: user.FirstName,
	}, nil
}

// GetRecentActivity fetches pending updates so the setup flow can offer
// the chats the user has recently messaged the bot from
func (c *Client) GetRecentActivity(ctx context.Context, offset int) ([]Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := tgbotapi.NewUpdate(offset)
	cfg.Timeout = 0
	cfg.Limit = 100

	updates, err := c.bot.GetUpdates(cfg)
	if err != nil {
		return nil, fmt.Errorf("telegram: getUpdates: %w", err)
	}

	activities := make([]Activity, 0, len(updates))
	for _, u := range updates {
		msg := u.Message
		if msg == nil {
			msg = u.EditedMessage
		}
		if msg == nil || msg.Chat == nil {
			continue
		}

		a := Activity{
			UpdateID:  u.UpdateID,
			ChatID:    msg.Chat.ID,
			ChatType:  msg.Chat.Type,
			ChatTitle: msg.Chat.Title,
			Text:      msg.Text,
		}
		if msg.From != nil {
			a.FromName = msg.From.FirstName
			if a.ChatTitle == "" {
				a.ChatTitle = msg.From.FirstName
			}
		}
		activities = append(activities, a)
	}

	return activities, nil
}

// SendPhoto uploads the file via sendPhoto
func (c *Client) SendPhoto(ctx context.Context, chatID int64, file FileUpload, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileReader{
		Name:   file.Name,
		Reader: file.Reader,
	})
	photo.Caption = caption

	if _, err := c.bot.Send(photo); err != nil {
		return fmt.Errorf("telegram: sendPhoto %s: %w", file.Name, err)
	}
	return nil
}

// SendVideo uploads the file via sendVideo
func (c *Client) SendVideo(ctx context.Context, chatID int64, file FileUpload, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	video := tgbotapi.NewVideo(chatID, tgbotapi.FileReader{
		Name:   file.Name,
		Reader: file.Reader,
	})
	video.Caption = caption
	video.SupportsStreaming = true

	if _, err := c.bot.Send(video); err != nil {
		return fmt.Errorf("telegram: sendVideo %s: %w", file.Name, err)
	}
	return nil
}

// SendDocument uploads the file via sendDocument, used for media above
// the photo/video routing limits but within the document limit
func (c *Client) SendDocument(ctx context.Context, chatID int64, file FileUpload, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileReader{
		Name:   file.Name,
		Reader: file.Reader,
	})
	doc.Caption = caption

	if _, err := c.bot.Send(doc); err != nil {
		return fmt.Errorf("telegram: sendDocument %s: %w", file.Name, err)
	}
	return nil
}

// SendTextMessage sends a plain or HTML-formatted message, optionally
// threaded as a reply
func (c *Client) SendTextMessage(ctx context.Context, chatID int64, text string, html bool, threadID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if html {
		msg.ParseMode = tgbotapi.ModeHTML
	}
	if threadID != 0 {
		msg.ReplyToMessageID = threadID
	}

	if _, err := c.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram: sendMessage: %w", err)
	}
	return nil
}
