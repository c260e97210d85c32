package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"linksum/internal/domain"
	"linksum/internal/markdown"
	"net/http"
	"net/url"
	"path"
	"strings"
	"unicode"
	"unicode/utf16"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	maxMessageLength = 4096
	maxCaptionLength = 1024
	maxImageBytes    = 10 << 20
)

func (b *Bot) deliverSummary(
	ctx context.Context,
	chatID int64,
	content domain.Content,
	summary string,
) error {
	keyboard := getSourceKeyboard(content.SourceURL)

	if content.ImageURL == "" {
		return b.sendLongText(ctx, chatID, summary, keyboard)
	}

	image, err := b.downloadImage(ctx, content.ImageURL)
	if err != nil {
		b.log.ErrorContext(ctx, "Error downloading image",
			"error", err,
			"chatID", chatID,
			"imageURL", content.ImageURL)

		var errs []error
		if sendErr := b.sendMessage(ctx, chatID,
			markdown.EscapeV2(fmt.Sprintf("Error downloading image: %v", err))); sendErr != nil {
			errs = append(errs, fmt.Errorf("send image error: %w", sendErr))
		}
		if sendErr := b.sendLongText(ctx, chatID, summary, keyboard); sendErr != nil {
			errs = append(errs, sendErr)
		}

		return errors.Join(errs...)
	}

	if textLength(summary) <= maxCaptionLength {
		err = b.sendPhoto(ctx, chatID, image, markdown.EscapeV2(summary), keyboard)
		if err == nil {
			return nil
		}

		b.log.ErrorContext(ctx, "Failed to send photo with summary so text will be sent",
			"error", err,
			"chatID", chatID,
			"imageURL", content.ImageURL)

		if sendErr := b.sendLongText(ctx, chatID, summary, keyboard); sendErr != nil {
			return errors.Join(err, sendErr)
		}
		return nil
	}

	caption := markdown.Bold(markdown.EscapeV2(truncate(content.Title, maxCaptionLength-2)))
	if err = b.sendPhoto(ctx, chatID, image, caption, nil); err != nil {
		b.log.ErrorContext(ctx, "Failed to send photo with title",
			"error", err,
			"chatID", chatID,
			"imageURL", content.ImageURL)
	}

	if sendErr := b.sendLongText(ctx, chatID, summary, keyboard); sendErr != nil {
		return errors.Join(err, sendErr)
	}
	return nil
}

func (b *Bot) sendPhoto(
	ctx context.Context,
	chatID int64,
	image tgbotapi.FileBytes,
	caption string,
	keyboard [][]tgbotapi.InlineKeyboardButton,
) error {
	photo := tgbotapi.NewPhoto(chatID, image)
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeMarkdownV2
	if len(keyboard) > 0 {
		photo.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(keyboard...)
	}

	if _, err := b.sender.Send(ctx, photo); err != nil {
		return fmt.Errorf("send photo: %w", err)
	}
	return nil
}

// sendLongText splits text into as many messages as needed. Only the last one carries the keyboard.
func (b *Bot) sendLongText(
	ctx context.Context,
	chatID int64,
	text string,
	keyboard [][]tgbotapi.InlineKeyboardButton,
) error {
	parts := splitText(text, maxMessageLength)
	for i, part := range parts {
		var kb [][]tgbotapi.InlineKeyboardButton
		if i == len(parts)-1 {
			kb = keyboard
		}

		if err := b.sendMessageWithKeyboard(ctx, chatID, markdown.EscapeV2(part), kb); err != nil {
			return fmt.Errorf("send summary part %d/%d: %w", i+1, len(parts), err)
		}
	}

	return nil
}

func (b *Bot) downloadImage(ctx context.Context, imageURL string) (tgbotapi.FileBytes, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return tgbotapi.FileBytes{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := b.imageClient.Do(req)
	if err != nil {
		return tgbotapi.FileBytes{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return tgbotapi.FileBytes{}, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return tgbotapi.FileBytes{}, fmt.Errorf("read body: %w", err)
	}

	if len(data) > maxImageBytes {
		return tgbotapi.FileBytes{}, fmt.Errorf("image is larger than %d bytes", maxImageBytes)
	}

	if len(data) == 0 {
		return tgbotapi.FileBytes{}, errors.New("image is empty")
	}

	return tgbotapi.FileBytes{Name: imageName(imageURL), Bytes: data}, nil
}

func imageName(imageURL string) string {
	u, err := url.Parse(imageURL)
	if err != nil {
		return "image.jpg"
	}

	name := path.Base(u.Path)
	if !strings.Contains(name, ".") {
		return "image.jpg"
	}
	return name
}

// textLength counts UTF-16 code units, which is how Telegram measures text limits.
func textLength(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

func truncate(s string, limit int) string {
	if textLength(s) <= limit {
		return s
	}

	n := 0
	for i, r := range s {
		n += utf16.RuneLen(r)
		if n > limit-1 {
			return s[:i] + "…"
		}
	}
	return s
}

// splitText cuts text into parts of at most limit UTF-16 units, preferring
// newline and then space boundaries in the second half of each part.
func splitText(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var parts []string
	for textLength(text) > limit {
		cut := cutIndex(text, limit)
		parts = append(parts, strings.TrimRightFunc(text[:cut], unicode.IsSpace))
		text = strings.TrimLeftFunc(text[cut:], unicode.IsSpace)
	}

	if text != "" {
		parts = append(parts, text)
	}

	return parts
}

// cutIndex returns a byte index to cut text at so the head fits into limit.
func cutIndex(text string, limit int) int {
	hard, n := len(text), 0
	for i, r := range text {
		n += utf16.RuneLen(r)
		if n > limit {
			hard = i
			break
		}
	}

	head := text[:hard]
	if i := strings.LastIndexByte(head, '\n'); i > hard/2 {
		return i + 1
	}
	if i := strings.LastIndexByte(head, ' '); i > hard/2 {
		return i + 1
	}

	return hard
}
