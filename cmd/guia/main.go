package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/guia/internal"
	"github.com/starford/guia/internal/apperr"
	pkgconfig "github.com/starford/guia/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadIfExists(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cmd.IsSet("clipboard-prompt") {
		cfg.Session.ClipboardPrompt = cmd.Bool("clipboard-prompt")
	}
	if cmd.IsSet("unknown-key") {
		cfg.Session.UnknownKey = cmd.String("unknown-key")
	}
	if cmd.IsSet("export-format") {
		cfg.Session.ExportFormat = cmd.String("export-format")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func edit(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}
	if raw := cmd.Args().First(); raw != "" {
		opts = append(opts, internal.WithRawInput(raw))
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func decode(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	input := cmd.Args().First()
	if input == "" {
		return fmt.Errorf("decode: missing barcode argument")
	}
	return internal.Describe(os.Stdout, input, cmd.String("format"), internal.WithConfig(cfg))
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.ServeMCP(ctx, internal.WithConfig(cfg))
}

func main() {
	cmd := &cli.Command{
		Name:      "guia",
		Usage:     "Decode and edit municipal collection barcodes (segment 816)",
		ArgsUsage: "[typed line]",
		Action:    edit,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("GUIA_CONFIG_FILE"),
			},
			&cli.BoolFlag{
				Name:  "clipboard-prompt",
				Usage: "Offer a 55-character clipboard text as the barcode",
			},
			&cli.StringFlag{
				Name:  "unknown-key",
				Usage: "What an unknown key does while editing: exit or redraw",
			},
			&cli.StringFlag{
				Name:  "export-format",
				Usage: "Clipboard format on save: digits, debug or line",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "edit",
				Usage:     "Edit a barcode interactively and copy the result",
				ArgsUsage: "[typed line]",
				Action:    edit,
			},
			{
				Name:      "decode",
				Usage:     "Print the fields of a barcode",
				ArgsUsage: "<typed line or 44 digits>",
				Action:    decode,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output: yaml, digits, debug or line",
						Value: internal.FormatYAML,
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve the barcode tools over MCP on stdio",
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		switch {
		case errors.Is(err, apperr.ErrInterrupted):
			os.Exit(130)
		case errors.Is(err, apperr.ErrInvalidBarcode):
			fmt.Fprintln(os.Stderr, "Esse código de barras não é válido, fechando...")
		}
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
