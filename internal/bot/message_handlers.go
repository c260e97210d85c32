package bot

import (
	"context"
	"errors"
	"fmt"
	"linksum/internal/domain"
	"linksum/internal/markdown"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"mvdan.cc/xurls/v2"
)

const welcomeText = `🤖 *Send me a link and I'll summarize it\!*

I understand:

– YouTube videos: the summary is built from the subtitles
– Web articles: the summary is built from the page text

Just paste the link, with or without some text around it\.`

const (
	replyTimeout = 2 * time.Minute

	processingText  = "⏳ Processing request\\.\\.\\."
	unsupportedText = "Not supported source."
)

//nolint:gochecknoglobals // Compiled once, safe for concurrent use.
var linkRegexp = xurls.Strict()

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	chatID, _ := chatContext(message.Chat)
	if chatID == 0 {
		return errors.New("message has no chat")
	}

	text := strings.TrimSpace(message.Text)

	switch {
	case strings.HasPrefix(text, "/start"), strings.HasPrefix(text, "/help"):
		return b.sendMessage(ctx, chatID, welcomeText)
	case text == "":
		return nil
	}

	if err := b.sendMessage(ctx, chatID, processingText); err != nil {
		return fmt.Errorf("send acknowledgment: %w", err)
	}

	return b.withSpinner(ctx, chatID, func() error {
		return b.handleLink(ctx, chatID, extractLink(text))
	})
}

func (b *Bot) handleLink(ctx context.Context, chatID int64, link string) error {
	result, err := b.runner.Run(ctx, link)

	// The reply must go out even when processing used up the update deadline.
	replyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), replyTimeout)
	defer cancel()

	if err != nil {
		message := err.Error()
		if errors.Is(err, domain.ErrUnsupportedSource) {
			message = unsupportedText
		}

		b.log.WarnContext(ctx, "Failed to resolve source",
			"error", err,
			"chatID", chatID,
			"input", link)

		return b.sendError(replyCtx, chatID, message)
	}

	if message := result.ErrorMessage(); message != "" {
		b.log.ErrorContext(ctx, "Failed to summarize source",
			"error", message,
			"chatID", chatID,
			"url", result.Content.SourceURL,
			"sourceType", result.Content.SourceType)

		return b.sendError(replyCtx, chatID, message)
	}

	return b.deliverSummary(replyCtx, chatID, result.Content, result.Summary.Summary())
}

func (b *Bot) sendError(ctx context.Context, chatID int64, message string) error {
	if err := b.sendMessage(ctx, chatID, "❌ "+markdown.EscapeV2(message)); err != nil {
		return fmt.Errorf("send error message: %w", err)
	}
	return nil
}

// extractLink returns the first URL in text, or text itself when there is none
// so the resolver can report it.
func extractLink(text string) string {
	if link := linkRegexp.FindString(text); link != "" {
		return link
	}
	return strings.TrimSpace(text)
}
