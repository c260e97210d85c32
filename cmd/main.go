package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:           "linksum",
		Usage:          "summarize YouTube videos and web articles",
		DefaultCommand: "bot",
		Commands: []*cli.Command{
			{
				Name:   "bot",
				Usage:  "run the Telegram bot until SIGINT or SIGTERM",
				Action: BotAction,
			},
			{
				Name:      "summarize",
				Usage:     "summarize a single link and print the result",
				ArgsUsage: "URL",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   formatText,
						Usage:   "output format: text, json or yaml",
					},
				},
				Action: SummarizeAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
