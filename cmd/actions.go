package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"linksum/internal/bot"
	"linksum/internal/config"
	"linksum/internal/pipeline"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func BotAction(_ *cli.Context) error {
	start := time.Now()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := newLogger(os.Stdout, cfg.LogLevel)

	if err = cfg.ValidateBot(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	p, err := newPipeline(ctx, cfg, httpClient, log)
	if err != nil {
		return err
	}

	botInst, err := bot.New(cfg.Token, p, httpClient, cfg.AllowedUsers, log)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}
	log.InfoContext(ctx, "Bot is initialized",
		"allowedUsersCount", len(cfg.AllowedUsers))

	done := make(chan struct{})
	go func() {
		defer close(done)
		botInst.Start(ctx)
	}()
	log.InfoContext(ctx, "Bot is started",
		"updateTimeoutSeconds", bot.BotUpdateTimeout)

	<-ctx.Done()
	log.Info("Shutdown signal is received, exiting...",
		"uptimeSeconds", time.Since(start).Seconds())

	<-done
	botInst.Stop()
	log.Info("Bot is stopped",
		"uptimeSeconds", time.Since(start).Seconds())

	return nil
}

func SummarizeAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("exactly one URL is expected", 2)
	}

	format := strings.ToLower(strings.TrimSpace(c.String("format")))
	switch format {
	case formatText, formatJSON, formatYAML:
	default:
		return cli.Exit(fmt.Sprintf("unknown format %q", format), 2)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := newLogger(os.Stderr, cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	p, err := newPipeline(ctx, cfg, &http.Client{Timeout: cfg.HTTPTimeout}, log)
	if err != nil {
		return err
	}

	result, err := p.Run(ctx, c.Args().First())
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if err = writeResult(c.App.Writer, format, result); err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	if result.ErrorMessage() != "" {
		return cli.Exit("", 1)
	}

	return nil
}

type summaryOutput struct {
	URL        string `json:"url"                 yaml:"url"`
	SourceType string `json:"source_type"         yaml:"source_type"`
	Title      string `json:"title,omitempty"     yaml:"title,omitempty"`
	ImageURL   string `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	Summary    string `json:"summary,omitempty"   yaml:"summary,omitempty"`
	Error      string `json:"error,omitempty"     yaml:"error,omitempty"`
}

func writeResult(w io.Writer, format string, result pipeline.Result) error {
	out := summaryOutput{
		URL:        result.Content.SourceURL,
		SourceType: string(result.Content.SourceType),
		Title:      result.Content.Title,
		ImageURL:   result.Content.ImageURL,
		Summary:    result.Summary.Summary(),
		Error:      result.ErrorMessage(),
	}

	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(out)
	default:
		if out.Error != "" {
			_, err := fmt.Fprintf(w, "Error: %s\n", out.Error)
			return err
		}

		if out.Title != "" {
			if _, err := fmt.Fprintf(w, "%s\n\n", out.Title); err != nil {
				return err
			}
		}

		_, err := fmt.Fprintln(w, out.Summary)
		return err
	}
}
