package main

import (
	"context"
	"fmt"
	"io"
	"runtime/debug"

	"github.com/infracollect/unpack/internal/executil"
	"github.com/urfave/cli/v3"
)

type buildInfo struct {
	Version   string
	GoVersion string
	Commit    string
	BuildTime string
	Modified  bool
}

func readBuildInfo() buildInfo {
	bi := buildInfo{Version: "unknown", GoVersion: "unknown"}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return bi
	}

	bi.Version = info.Main.Version
	bi.GoVersion = info.GoVersion
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			bi.Commit = setting.Value
		case "vcs.time":
			bi.BuildTime = setting.Value
		case "vcs.modified":
			bi.Modified = setting.Value == "true"
		}
	}
	return bi
}

func (bi buildInfo) write(w io.Writer) {
	fmt.Fprintf(w, "version: %s\n", bi.Version)
	fmt.Fprintf(w, "go: %s\n", bi.GoVersion)
	if bi.Commit != "" {
		dirty := ""
		if bi.Modified {
			dirty = " (dirty)"
		}
		fmt.Fprintf(w, "commit: %s%s\n", bi.Commit, dirty)
	}
	if bi.BuildTime != "" {
		fmt.Fprintf(w, "built: %s\n", bi.BuildTime)
	}
}

// writeToolResolution prints, for each destination kind, the program that
// would run and where it resolves on PATH.
func writeToolResolution(w io.Writer, lookup func(string) (string, bool), entries [][2]string) {
	for _, e := range entries {
		kind, tool := e[0], e[1]
		path, ok := lookup(tool)
		if !ok {
			fmt.Fprintf(w, "%s: %s (not found)\n", kind, tool)
			continue
		}
		fmt.Fprintf(w, "%s: %s (%s)\n", kind, tool, path)
	}
}

func newVersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print version information and the extraction tool used per format",
		Action: func(ctx context.Context, command *cli.Command) error {
			w := command.Root().Writer
			readBuildInfo().write(w)

			tools := toolsFromCommand(command)
			writeToolResolution(w, executil.Which, [][2]string{
				{"zip", tools.Zip},
				{"msi", tools.SevenZip},
				{"7z", tools.Installer},
			})
			return nil
		},
	}
}
