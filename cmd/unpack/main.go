package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/infracollect/unpack/internal/executil"
	"github.com/infracollect/unpack/internal/extract"
	"github.com/urfave/cli/v3"
)

var loggerDeferFunc func() error

// appDeps holds what the commands read from and execute with.
type appDeps struct {
	fs            afero.Fs
	stdin         io.Reader
	commandRunner func(logger *zap.Logger) extract.CommandRunner
}

func defaultDeps() appDeps {
	return appDeps{
		fs:    afero.NewOsFs(),
		stdin: os.Stdin,
		commandRunner: func(logger *zap.Logger) extract.CommandRunner {
			return executil.NewRunner(logger.Named("exec"))
		},
	}
}

func toolFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "zip-tool",
			Value:   extract.DefaultTools.Zip,
			Usage:   "Program used to extract zip destinations",
			Sources: cli.EnvVars("UNPACK_ZIP_TOOL"),
		},
		&cli.StringFlag{
			Name:    "7z-tool",
			Value:   extract.DefaultTools.SevenZip,
			Usage:   "Program used to extract msi destinations",
			Sources: cli.EnvVars("UNPACK_7Z_TOOL"),
		},
		&cli.StringFlag{
			Name:    "installer-tool",
			Value:   extract.DefaultTools.Installer,
			Usage:   "Program used to extract 7z family destinations",
			Sources: cli.EnvVars("UNPACK_INSTALLER_TOOL"),
		},
	}
}

func toolsFromCommand(command *cli.Command) extract.Tools {
	return extract.Tools{
		Zip:       command.String("zip-tool"),
		SevenZip:  command.String("7z-tool"),
		Installer: command.String("installer-tool"),
	}
}

func newApp(deps appDeps) *cli.Command {
	return &cli.Command{
		Name:  "unpack",
		Usage: "Extract archives with the matching external tool",
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "Enable debug logging",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "Log Level (debug, info, warn, error, fatal)",
				Action: func(ctx context.Context, command *cli.Command, s string) error {
					_, err := zapcore.ParseLevel(s)
					if err != nil {
						return fmt.Errorf("invalid log level %s: %w", s, err)
					}
					return nil
				},
			},
		}, toolFlags()...),
		Commands: []*cli.Command{
			newExtractCommand(deps),
			newClassifyCommand(),
			newRunCommand(deps),
			newValidateCommand(deps),
			newVersionCommand(),
		},
		Before: func(ctx context.Context, command *cli.Command) (context.Context, error) {
			interactive := isInteractiveEnvironment()
			logger, _, err := createLogger(command.Bool("debug"), interactive, command.String("log-level"))
			if err != nil {
				return nil, err
			}

			logger.Debug("logger created",
				zap.String("log_level", command.String("log-level")),
				zap.Bool("interactive", interactive),
				zap.Any("tools", toolsFromCommand(command)),
			)

			loggerDeferFunc = func() error {
				return logger.Sync()
			}

			return withInteractive(withLogger(ctx, logger), interactive), nil
		},
	}
}

func main() {
	app := newApp(defaultDeps())
	app.ExitErrHandler = func(ctx context.Context, command *cli.Command, err error) {
		if err == nil {
			return
		}

		if logger := tryLogger(ctx); logger != nil {
			logger.Fatal("failed to run application", zap.Error(err))
		} else {
			log.Fatal(fmt.Errorf("failed to run application: %w", err))
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	defer func() {
		if loggerDeferFunc != nil {
			loggerDeferFunc()
		}
	}()

	app.Run(ctx, os.Args)
}
