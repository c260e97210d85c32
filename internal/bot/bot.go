package bot

import (
	"context"
	"linksum/internal/pipeline"
	"linksum/internal/ratelimiter"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	maxBackoffSeconds         = 60
	initialBackoffSeconds     = 3
	backoffGrowthFactor       = 2
	resetOffsetBackoffSeconds = 30
	updateProcessingTimeout   = 5 * time.Minute

	BotUpdateTimeout = 60
)

// Runner turns a link into extracted content and its summary.
type Runner interface {
	Run(ctx context.Context, input string) (pipeline.Result, error)
}

type sender interface {
	Send(ctx context.Context, c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(ctx context.Context, c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Bot struct {
	api          *tgbotapi.BotAPI
	rateLimiter  *ratelimiter.RateLimiter
	sender       sender
	runner       Runner
	imageClient  *http.Client
	allowedUsers []int64
	wg           sync.WaitGroup
	log          *slog.Logger
}

func New(
	token string,
	runner Runner,
	imageClient *http.Client,
	allowedUsers []int64,
	log *slog.Logger,
) (*Bot, error) {
	token = strings.TrimSpace(token)

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	rateLimiter := ratelimiter.New(api, log)

	return &Bot{
		api:          api,
		rateLimiter:  rateLimiter,
		sender:       rateLimiter,
		runner:       runner,
		imageClient:  imageClient,
		allowedUsers: allowedUsers,
		log:          log,
	}, nil
}

// Start polls for updates until ctx is done. Each update is handled in its own goroutine.
func (b *Bot) Start(ctx context.Context) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = BotUpdateTimeout

	backoffSeconds := initialBackoffSeconds

	for {
		select {
		case <-ctx.Done():
			b.log.InfoContext(ctx, "Bot context is done",
				"error", ctx.Err())
			return
		default:
		}

		updates := b.api.GetUpdatesChan(updateConfig)
		updatesClosed := false

		for !updatesClosed {
			select {
			case <-ctx.Done():
				b.api.StopReceivingUpdates()
				b.log.InfoContext(ctx, "Bot context is done",
					"error", ctx.Err())
				return

			case update, ok := <-updates:
				if !ok {
					updatesClosed = true
					continue
				}
				updateConfig.Offset = update.UpdateID + 1

				b.wg.Go(func() {
					b.handleUpdate(ctx, &update)
				})
			}
		}

		if ctx.Err() != nil {
			return
		}

		b.log.WarnContext(ctx, "Update channel is closed, reconnecting...",
			"offset", updateConfig.Offset,
			"backoffSeconds", backoffSeconds)

		time.Sleep(time.Duration(backoffSeconds) * time.Second)

		backoffSeconds = updateBackoffSeconds(backoffSeconds)

		if backoffSeconds >= resetOffsetBackoffSeconds {
			updateConfig.Offset = 0
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update *tgbotapi.Update) {
	if update.Message == nil {
		return
	}

	updateCtx, cancel := context.WithTimeout(ctx, updateProcessingTimeout)
	defer cancel()

	chatID, chatType := chatContext(update.Message.Chat)

	var userID int64
	var username string
	if update.Message.From != nil {
		userID = update.Message.From.ID
		username = update.Message.From.UserName
	}

	if !b.userAllowed(userID) {
		b.log.DebugContext(updateCtx, "User is not allowed",
			"userID", userID,
			"chatID", chatID,
			"username", username,
			"chatType", chatType)

		return
	}

	if err := b.handleMessage(updateCtx, update.Message); err != nil {
		b.log.ErrorContext(updateCtx, "Failed to handle message",
			"error", err,
			"chatID", chatID,
			"userID", userID,
			"chatType", chatType,
			"messageID", update.Message.MessageID)
	}
}

// Stop waits for in-flight updates and then stops outgoing delivery.
func (b *Bot) Stop() {
	b.wg.Wait()

	if b.rateLimiter != nil {
		b.rateLimiter.Stop()
	}
}

func (b *Bot) userAllowed(userID int64) bool {
	return len(b.allowedUsers) == 0 || slices.Contains(b.allowedUsers, userID)
}

func chatContext(chat *tgbotapi.Chat) (int64, string) {
	if chat == nil {
		return 0, ""
	}

	return chat.ID, chat.Type
}

func updateBackoffSeconds(backoffSeconds int) int {
	if backoffSeconds < maxBackoffSeconds {
		backoffSeconds *= backoffGrowthFactor
		if backoffSeconds > maxBackoffSeconds {
			backoffSeconds = maxBackoffSeconds
		}
	}
	return backoffSeconds
}
