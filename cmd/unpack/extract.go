package main

import (
	"context"
	"fmt"

	"github.com/alessio/shellescape"
	"github.com/infracollect/unpack/internal/extract"
	"github.com/urfave/cli/v3"
)

func newExtractCommand(deps appDeps) *cli.Command {
	return &cli.Command{
		Name:      "extract",
		Usage:     "Extract a single archive",
		UsageText: "unpack extract [options] <destination> <archive>",
		Description: "The extractor is chosen from the extension of the destination. " +
			"A destination without a supported extension aborts the program.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Print the command that would run, quoted for a POSIX shell, instead of running it",
			},
		},
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      "destination",
				UsageText: "The output path",
			},
			&cli.StringArg{
				Name:      "archive",
				UsageText: "The archive to extract",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := getLogger(ctx)

			destination := command.StringArg("destination")
			archive := command.StringArg("archive")
			if destination == "" || archive == "" {
				return fmt.Errorf("both destination and archive are required")
			}

			extractor := extract.New(
				logger.Named("extract"),
				deps.commandRunner(logger),
				extract.WithTools(toolsFromCommand(command)),
			)

			if command.Bool("dry-run") {
				tool, args := extractor.Args(extract.Classify(destination), destination, archive)
				fmt.Fprintln(command.Root().Writer, formatCommandLine(tool, args))
				return nil
			}

			if err := extractor.Extract(ctx, destination, archive); err != nil {
				return fmt.Errorf("failed to extract %s: %w", archive, err)
			}

			return nil
		},
	}
}

// formatCommandLine renders a command so it can be pasted into a POSIX shell.
func formatCommandLine(tool string, args []string) string {
	return shellescape.QuoteCommand(append([]string{tool}, args...))
}
