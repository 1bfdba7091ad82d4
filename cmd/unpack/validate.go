package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/infracollect/unpack/internal/runner"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func newValidateCommand(deps appDeps) *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate a job file",
		Flags:     []cli.Flag{newAllowedEnvFlag()},
		Arguments: []cli.Argument{newJobArgument()},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := getLogger(ctx)

			jobFilename := command.StringArg("job")
			logger = logger.With(zap.String("job_filename", jobFilename))
			logger.Debug("validating job file")

			job, err := loadJob(deps.fs, deps.stdin, command)
			if err != nil {
				return err
			}

			r, err := runner.New(logger.Named("runner"), job, deps.commandRunner(logger), runner.WithDefaultTools(toolsFromCommand(command)))
			if err != nil {
				return fmt.Errorf("failed to create runner: %w", err)
			}

			if err := checkPlan(r.Plan()); err != nil {
				return fmt.Errorf("job file '%s' is invalid: %w", jobFilename, err)
			}

			fmt.Fprintf(command.Root().Writer, "✓ Job file '%s' is valid\n", jobFilename)
			return nil
		},
	}
}

// checkPlan reports every entry whose destination would abort a run.
func checkPlan(plan []runner.PlannedExtraction) error {
	var bad []string
	for _, p := range plan {
		if !p.Format.Supported() {
			bad = append(bad, fmt.Sprintf("\n  • %s: destination %q is %s", p.ID, p.Destination, p.Format))
		}
	}
	if len(bad) == 0 {
		return nil
	}
	return fmt.Errorf("%d archive(s) cannot be extracted:%s", len(bad), strings.Join(bad, ""))
}
