package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/quill/internal"
	pkgconfig "github.com/starford/quill/pkg/config"
)

var version = "dev"

// setup loads the configuration named by --config, applies --store and
// installs the default logger.
func setup(cmd *cli.Command) (*internal.Config, *slog.Logger, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadIfExists(cmd.String("config"), cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if p := cmd.String("store"); p != "" {
		cfg.Store.Path = p
	}

	logger := internal.NewLogger(cfg.App, os.Stderr)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// stdin and stdout resolve the streams of the root command so tests can
// substitute them.
func stdin(cmd *cli.Command) io.Reader {
	if r := cmd.Root().Reader; r != nil {
		return r
	}
	return os.Stdin
}

func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "quill",
		Usage:   "Append notes to a JSON file from a terminal form, a web form, an API or an MCP client",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "store",
				Aliases: []string{"s"},
				Usage:   "Path to the notes file (overrides store.path)",
				Sources: cli.EnvVars("QUILL_STORE"),
			},
		},
		Commands: []*cli.Command{
			addCommand(),
			formCommand(),
			listCommand(),
			showCommand(),
			serveCommand(),
			mcpCommand(),
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
