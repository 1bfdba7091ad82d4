package main

import (
	"context"
	"fmt"
	"io"

	"github.com/infracollect/unpack/internal/extract"
	"github.com/urfave/cli/v3"
)

func newClassifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "classify",
		Usage:     "Print the format each path classifies as, tab separated",
		UsageText: "unpack classify <path>...",
		Action: func(ctx context.Context, command *cli.Command) error {
			paths := command.Args().Slice()
			if len(paths) == 0 {
				return fmt.Errorf("no path provided")
			}

			w := command.Root().Writer
			printClassification(w, paths, isInteractive(ctx) && isTerminalWriter(w))
			return nil
		},
	}
}

// printClassification writes path<TAB>format lines, or marked lines when
// decorated is set.
func printClassification(w io.Writer, paths []string, decorated bool) {
	for _, path := range paths {
		format := extract.Classify(path)
		if !decorated {
			fmt.Fprintf(w, "%s\t%s\n", path, format)
			continue
		}

		mark := "✓"
		if !format.Supported() {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s %s: %s\n", mark, path, format)
	}
}
