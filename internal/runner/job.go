package runner

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	v1 "github.com/infracollect/unpack/apis/v1"
	"github.com/samber/lo"
)

const (
	// ISO8601Basic is a filesystem-safe timestamp format without colons.
	ISO8601Basic = "20060102T150405Z"
)

var (
	defaultValidator = validator.New(validator.WithRequiredStructEnabled())
)

// ParseExtractJob parses a YAML or JSON job document and validates it.
func ParseExtractJob(data []byte) (v1.ExtractJob, error) {
	var job v1.ExtractJob
	if err := yaml.Unmarshal(data, &job); err != nil {
		return v1.ExtractJob{}, fmt.Errorf("failed to unmarshal job data: %w", err)
	}

	if err := defaultValidator.Struct(job); err != nil {
		return v1.ExtractJob{}, fmt.Errorf("failed to validate job: %w", err)
	}

	ids := lo.Map(job.Spec.Archives, func(a v1.ArchiveSpec, _ int) string { return a.ID })
	if dups := lo.FindDuplicates(ids); len(dups) > 0 {
		return v1.ExtractJob{}, fmt.Errorf("failed to validate job: duplicate archive ids %v", dups)
	}

	return job, nil
}

// BuildVariables returns the variables available to job templates: the
// built-in JOB_* variables plus every environment variable in allowedEnv.
// An allowed variable that is not set is an error.
func BuildVariables(job v1.ExtractJob, allowedEnv []string) (map[string]string, error) {
	date := time.Now().UTC()
	variables := map[string]string{
		"JOB_NAME":         job.Metadata.Name,
		"JOB_DATE_ISO8601": date.Format(ISO8601Basic),
		"JOB_DATE_RFC3339": date.Format(time.RFC3339),
	}

	var errs error
	for _, envName := range allowedEnv {
		val, ok := os.LookupEnv(envName)
		if !ok {
			errs = errors.Join(errs, fmt.Errorf("environment variable %q is not set", envName))
			continue
		}
		variables[envName] = val
	}

	if errs != nil {
		return nil, errs
	}

	return variables, nil
}
