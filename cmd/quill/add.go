package main

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/starford/quill/internal"
	"github.com/starford/quill/internal/models"
)

func addCommand() *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Append one note",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Note title"},
			&cli.StringFlag{Name: "content", Usage: "Note content, - reads stdin"},
			&cli.StringFlag{Name: "keywords", Aliases: []string{"k"}, Usage: "Comma-separated keywords"},
			&cli.StringFlag{Name: "category", Usage: "Note category"},
		},
		Action: runAdd,
	}
}

func runAdd(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	content := cmd.String("content")
	if content == "-" {
		b, err := io.ReadAll(stdin(cmd))
		if err != nil {
			return fmt.Errorf("read content from stdin: %w", err)
		}
		content = string(b)
	}

	svc, _, err := internal.OpenService(cfg, logger)
	if err != nil {
		return err
	}
	n, err := svc.AddNote(ctx, models.Draft{
		Title:    cmd.String("title"),
		Content:  content,
		Keywords: cmd.String("keywords"),
		Category: cmd.String("category"),
	})
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}

	fmt.Fprintf(stdout(cmd), "Note added successfully! (id %d)\n", n.ID)
	return nil
}
