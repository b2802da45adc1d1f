// Package telegram implements the outbound messenger against the Telegram
// Bot API. It is a thin seam: retries, auth and wire details live in the bot
// library; the delivery pipeline only sees the send operations it needs.
package telegram

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/ftpgram/ftpgram/pkg/delivery"
)

// Client sends relay messages through one bot token. All methods are called
// from the delivery dispatcher only.
type Client struct {
	bot *bot.Bot
}

var _ delivery.Messenger = (*Client)(nil)

// New creates a client for the given bot token. The token is not verified
// here; the first ValidateDestination call surfaces a bad token as a
// destination failure.
func New(token string) (*Client, error) {
	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("failed to create bot client: %w", err)
	}
	return &Client{bot: b}, nil
}

// ValidateDestination confirms the chat exists and the bot can see it.
func (c *Client) ValidateDestination(ctx context.Context, chatID int64) error {
	if _, err := c.bot.GetChat(ctx, &bot.GetChatParams{ChatID: chatID}); err != nil {
		return fmt.Errorf("chat %d not reachable: %w", chatID, err)
	}
	return nil
}

// SendPhoto delivers the payload as an inline photo.
func (c *Client) SendPhoto(ctx context.Context, msg delivery.Message) error {
	_, err := c.bot.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:              msg.ChatID,
		MessageThreadID:     msg.TopicID,
		Photo:               upload(msg),
		Caption:             msg.Caption,
		DisableNotification: msg.Silent,
	})
	return err
}

// SendDocument delivers the payload as a file attachment.
func (c *Client) SendDocument(ctx context.Context, msg delivery.Message) error {
	_, err := c.bot.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID:              msg.ChatID,
		MessageThreadID:     msg.TopicID,
		Document:            upload(msg),
		Caption:             msg.Caption,
		DisableNotification: msg.Silent,
	})
	return err
}

// SendVideo delivers the payload as a video message.
func (c *Client) SendVideo(ctx context.Context, msg delivery.Message) error {
	_, err := c.bot.SendVideo(ctx, &bot.SendVideoParams{
		ChatID:              msg.ChatID,
		MessageThreadID:     msg.TopicID,
		Video:               upload(msg),
		Caption:             msg.Caption,
		DisableNotification: msg.Silent,
	})
	return err
}

// upload wraps a message payload as a multipart file upload.
func upload(msg delivery.Message) models.InputFile {
	return &models.InputFileUpload{
		Filename: msg.Filename,
		Data:     bytes.NewReader(msg.Data),
	}
}
