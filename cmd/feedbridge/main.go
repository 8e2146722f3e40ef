package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/amiyamandal-dev/feedbridge/internal/config"
)

var version = "dev"

func main() {
	if err := app().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "feedbridge: %v\n", err)
		os.Exit(1)
	}
}

func app() *cli.App {
	return &cli.App{
		Name:    "feedbridge",
		Usage:   "Forward unread Feedbin entries to Discord channels",
		Version: version,
		Description: `Polls Feedbin for unread entries and posts each one as an embed in a
per-feed channel under the RSS category of a Discord server, then marks the
entry as read. The /feed slash command adds, removes and lists feeds.

Configuration is read from config.yaml, a .env file and the environment, e.g.:

FEEDBIN_USERNAME, FEEDBIN_PASSWORD, DISCORD_BOT_TOKEN,
DISCORD_CLIENT_ID, DISCORD_GUILD_ID, POLL_INTERVAL`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env-file",
				Aliases: []string{"e"},
				Value:   ".env",
				Usage:   "dotenv file loaded before reading the environment",
				EnvVars: []string{"FEEDBRIDGE_ENV_FILE"},
			},
		},
		Commands: []*cli.Command{
			serveCmd(),
			checkConfigCmd(),
		},
		Action: func(ctx *cli.Context) error {
			return serve(ctx.Context, ctx.String("env-file"))
		},
	}
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the bridge",
		Action: func(ctx *cli.Context) error {
			return serve(ctx.Context, ctx.String("env-file"))
		},
	}
}

func checkConfigCmd() *cli.Command {
	return &cli.Command{
		Name:  "check-config",
		Usage: "Validate configuration and exit",
		Action: func(ctx *cli.Context) error {
			cfg, err := config.Load(ctx.String("env-file"))
			if err != nil {
				return err
			}
			fmt.Fprintf(ctx.App.Writer, "configuration ok\n")
			fmt.Fprintf(ctx.App.Writer, "  feedbin:  %s as %s\n", cfg.Feedbin.BaseURL, cfg.Feedbin.Username)
			fmt.Fprintf(ctx.App.Writer, "  discord:  guild %s, category %q\n", cfg.Discord.GuildID, cfg.Discord.Category)
			fmt.Fprintf(ctx.App.Writer, "  poll:     every %s\n", cfg.Poll.Interval)
			if cfg.Server.Enabled {
				fmt.Fprintf(ctx.App.Writer, "  server:   %s\n", cfg.Server.Addr())
			}
			return nil
		},
	}
}
