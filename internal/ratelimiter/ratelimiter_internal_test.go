package ratelimiter

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type fakeAPI struct {
	mu      sync.Mutex
	sentAt  []time.Time
	sendErr error
}

func (f *fakeAPI) Send(_ tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sentAt = append(f.sentAt, time.Now())

	return tgbotapi.Message{MessageID: len(f.sentAt)}, f.sendErr
}

func (f *fakeAPI) Request(_ tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func TestGetDelay(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		chatID   int64
		lastSent time.Time
		wantZero bool
	}{
		{"Private chat - no delay needed", 123456789, now.Add(-2 * time.Second), true},
		{"Private chat - delay needed", 123456789, now.Add(-500 * time.Millisecond), false},
		{"Group chat - no delay needed", -123456789, now.Add(-4 * time.Second), true},
		{"Group chat - delay needed", -123456789, now.Add(-1 * time.Second), false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := getDelay(test.chatID, test.lastSent)

			if test.wantZero && got > 0 {
				t.Errorf("Expected zero delay, got %v", got)
			}

			if !test.wantZero && got <= 0 {
				t.Errorf("Expected positive delay, got %v", got)
			}
		})
	}
}

func TestGetChatID(t *testing.T) {
	tests := []struct {
		name      string
		chattable tgbotapi.Chattable
		want      int64
	}{
		{"MessageConfig", tgbotapi.NewMessage(12345, "test"), 12345},
		{"PhotoConfig", tgbotapi.NewPhoto(-100, tgbotapi.FileBytes{Name: "a.jpg", Bytes: []byte{1}}), -100},
		{"ChatActionConfig", tgbotapi.NewChatAction(67890, tgbotapi.ChatTyping), 67890},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := getChatID(test.chattable); got != test.want {
				t.Errorf("Expected %v chatID, got %v", test.want, got)
			}
		})
	}
}

func TestGetRate(t *testing.T) {
	if got := getRate(1); got != privateChatRate {
		t.Errorf("Expected %v rate, got %v", privateChatRate, got)
	}

	if got := getRate(-1); got != groupChatRate {
		t.Errorf("Expected %v rate, got %v", groupChatRate, got)
	}
}

func TestSendPacesSameChat(t *testing.T) {
	api := &fakeAPI{}
	rl := New(api, slog.Default())
	defer rl.Stop()

	ctx := context.Background()
	for range 2 {
		if _, err := rl.Send(ctx, tgbotapi.NewMessage(1, "hi")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	api.mu.Lock()
	defer api.mu.Unlock()

	if len(api.sentAt) != 2 {
		t.Fatalf("expected 2 sends, got %d", len(api.sentAt))
	}

	// Allow some scheduler jitter below the nominal rate.
	if gap := api.sentAt[1].Sub(api.sentAt[0]); gap < privateChatRate-50*time.Millisecond {
		t.Fatalf("expected sends to be paced by %v, got %v", privateChatRate, gap)
	}
}

func TestSendReturnsAPIError(t *testing.T) {
	api := &fakeAPI{sendErr: errors.New("flood")}
	rl := New(api, slog.Default())
	defer rl.Stop()

	if _, err := rl.Send(context.Background(), tgbotapi.NewMessage(1, "hi")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSendAfterStop(t *testing.T) {
	rl := New(&fakeAPI{}, slog.Default())
	rl.Stop()

	if _, err := rl.Send(context.Background(), tgbotapi.NewMessage(1, "hi")); err == nil {
		t.Fatalf("expected error after stop")
	}
}
