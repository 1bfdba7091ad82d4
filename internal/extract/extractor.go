package extract

import (
	"context"
	"fmt"

	"github.com/infracollect/unpack/internal/executil"
	"go.uber.org/zap"
)

// CommandRunner runs a program to completion.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// Tools names the external binaries used for extraction.
type Tools struct {
	Zip       string
	SevenZip  string
	Installer string
}

var DefaultTools = Tools{
	Zip:       "unzip",
	SevenZip:  "7z",
	Installer: "msiexec",
}

// Merge returns t with empty fields taken from defaults.
func (t Tools) Merge(defaults Tools) Tools {
	if t.Zip == "" {
		t.Zip = defaults.Zip
	}
	if t.SevenZip == "" {
		t.SevenZip = defaults.SevenZip
	}
	if t.Installer == "" {
		t.Installer = defaults.Installer
	}
	return t
}

type Extractor struct {
	logger *zap.Logger
	runner CommandRunner
	tools  Tools
}

type Option func(*Extractor)

func WithTools(tools Tools) Option {
	return func(e *Extractor) {
		e.tools = tools.Merge(DefaultTools)
	}
}

func New(logger *zap.Logger, runner CommandRunner, opts ...Option) *Extractor {
	e := &Extractor{
		logger: logger,
		runner: runner,
		tools:  DefaultTools,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Extractor) Tools() Tools {
	return e.tools
}

// Extract unpacks archive into outputDir with the tool bound to the format
// of outputDir. Destinations without a supported extension panic with a
// *FormatError; tool failures are returned as *ToolError.
func (e *Extractor) Extract(ctx context.Context, outputDir, archive string) error {
	e.logger.Info("extracting archive",
		zap.String("archive", archive),
		zap.String("destination", outputDir),
	)

	format := Classify(outputDir)
	tool, args := e.Args(format, outputDir, archive)
	e.logger.Debug("extracting with "+toolLabel(format.Kind), zap.String("tool", tool))

	if err := e.runner.Run(ctx, tool, args...); err != nil {
		return &ToolError{
			Tool:     tool,
			Args:     args,
			ExitCode: executil.ExitCode(err),
			Err:      err,
		}
	}

	return nil
}

// Args returns the program and arguments used to extract archive into
// outputDir for format. It panics with a *FormatError if format has no tool.
func (e *Extractor) Args(format Format, outputDir, archive string) (string, []string) {
	switch format.Kind {
	case KindZip:
		return e.tools.Zip, zipArgs(outputDir, archive)
	case KindMsi:
		// msi files go through 7z.
		return e.tools.SevenZip, sevenZipArgs(outputDir, archive)
	case KindSevenZipFamily:
		// The 7z family goes through the installer tool.
		return e.tools.Installer, installerArgs(outputDir, archive)
	case KindUnsupported, KindUnknown:
		panic(&FormatError{Format: format})
	default:
		panic(fmt.Sprintf("unhandled format kind %d", int(format.Kind)))
	}
}

// toolLabel names the extractor family used for a supported kind.
func toolLabel(kind Kind) string {
	switch kind {
	case KindZip:
		return "zip"
	case KindMsi:
		return "7z"
	default:
		return "msi"
	}
}

func zipArgs(outputDir, archive string) []string {
	return []string{outputDir, archive}
}

func sevenZipArgs(outputDir, archive string) []string {
	return []string{"x", archive, "-o" + outputDir, "-y"}
}

func installerArgs(outputDir, archive string) []string {
	return []string{"/a", archive, "/qn", `TARGETDIR="` + outputDir + `"`, "/lwe", "log"}
}
