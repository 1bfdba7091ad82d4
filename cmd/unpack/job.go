package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	v1 "github.com/infracollect/unpack/apis/v1"
	"github.com/infracollect/unpack/internal/runner"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
)

func newAllowedEnvFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:  "allowed-env",
		Usage: "Environment variables allowed in job templates (can be repeated)",
	}
}

func newJobArgument() cli.Argument {
	return &cli.StringArg{
		Name:      "job",
		UsageText: "The job file, or - for stdin",
	}
}

// readJobFile reads a job file from fs, or from stdin when name is "-".
func readJobFile(fs afero.Fs, stdin io.Reader, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(stdin)
	}
	return afero.ReadFile(fs, name)
}

// loadJob reads, validates and expands the job named by the command's job argument.
func loadJob(fs afero.Fs, stdin io.Reader, command *cli.Command) (v1.ExtractJob, error) {
	jobFilename := command.StringArg("job")
	if jobFilename == "" {
		return v1.ExtractJob{}, fmt.Errorf("no job file provided")
	}

	data, err := readJobFile(fs, stdin, jobFilename)
	if err != nil {
		return v1.ExtractJob{}, fmt.Errorf("failed to read job file '%s': %w", jobFilename, err)
	}

	job, err := runner.ParseExtractJob(data)
	if err != nil {
		return v1.ExtractJob{}, formatValidationError(err)
	}

	variables, err := runner.BuildVariables(job, command.StringSlice("allowed-env"))
	if err != nil {
		return v1.ExtractJob{}, fmt.Errorf("failed to build variables: %w", err)
	}

	if err := runner.ExpandTemplates(&job, variables); err != nil {
		return v1.ExtractJob{}, fmt.Errorf("failed to expand templates: %w", err)
	}

	return job, nil
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("job file has %d validation error(s):", len(validationErrs)))
		for _, fe := range validationErrs {
			sb.WriteString(fmt.Sprintf("\n  • %s: failed '%s' validation", fe.Namespace(), fe.Tag()))
			if fe.Param() != "" {
				sb.WriteString(fmt.Sprintf(" (param: %s)", fe.Param()))
			}
		}
		return errors.New(sb.String())
	}
	return err
}
