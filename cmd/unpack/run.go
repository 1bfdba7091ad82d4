package main

import (
	"context"
	"fmt"

	"github.com/infracollect/unpack/internal/runner"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func newRunCommand(deps appDeps) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Extract every archive listed in a job file",
		Flags: []cli.Flag{
			newAllowedEnvFlag(),
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Print the commands that would run, quoted for a POSIX shell, instead of running them",
			},
		},
		Arguments: []cli.Argument{newJobArgument()},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := getLogger(ctx)

			job, err := loadJob(deps.fs, deps.stdin, command)
			if err != nil {
				return err
			}

			r, err := runner.New(
				logger.Named("runner"),
				job,
				deps.commandRunner(logger),
				runner.WithDefaultTools(toolsFromCommand(command)),
			)
			if err != nil {
				return fmt.Errorf("failed to create runner: %w", err)
			}

			if command.Bool("dry-run") {
				w := command.Root().Writer
				for _, p := range r.Plan() {
					if !p.Format.Supported() {
						fmt.Fprintf(w, "# %s: %s is %s\n", p.ID, p.Destination, p.Format)
						continue
					}
					fmt.Fprintln(w, formatCommandLine(p.Tool, p.Args))
				}
				return nil
			}

			if err := r.Run(ctx); err != nil {
				return fmt.Errorf("failed to run job: %w", err)
			}

			logger.Info("job completed", zap.String("job_name", job.Metadata.Name), zap.Int("archives", len(job.Spec.Archives)))
			return nil
		},
	}
}
