package runner

import (
	"context"
	"errors"
	"fmt"

	v1 "github.com/infracollect/unpack/apis/v1"
	"github.com/infracollect/unpack/internal/extract"
	"go.uber.org/zap"
)

// PlannedExtraction is the classification of a single job entry.
type PlannedExtraction struct {
	ID          string
	Archive     string
	Destination string
	Format      extract.Format
	// Tool and Args are empty when Format is not supported.
	Tool string
	Args []string
}

type Runner struct {
	logger    *zap.Logger
	job       v1.ExtractJob
	extractor *extract.Extractor
}

type Option func(*options)

type options struct {
	tools extract.Tools
}

// WithDefaultTools sets the tools used for anything the job does not override.
func WithDefaultTools(tools extract.Tools) Option {
	return func(o *options) {
		o.tools = tools
	}
}

func New(logger *zap.Logger, job v1.ExtractJob, cmdRunner extract.CommandRunner, opts ...Option) (*Runner, error) {
	logger.Info("creating runner", zap.String("job_name", job.Metadata.Name))

	o := options{tools: extract.DefaultTools}
	for _, opt := range opts {
		opt(&o)
	}

	if cmdRunner == nil {
		return nil, fmt.Errorf("command runner is required")
	}

	tools := jobTools(job.Spec.Tools).Merge(o.tools)
	logger.Debug("resolved tools",
		zap.String("zip", tools.Zip),
		zap.String("seven_zip", tools.SevenZip),
		zap.String("installer", tools.Installer),
	)

	return &Runner{
		logger:    logger,
		job:       job,
		extractor: extract.New(logger.Named("extract"), cmdRunner, extract.WithTools(tools)),
	}, nil
}

func jobTools(spec *v1.ToolsSpec) extract.Tools {
	if spec == nil {
		return extract.Tools{}
	}

	var tools extract.Tools
	if spec.Zip != nil {
		tools.Zip = *spec.Zip
	}
	if spec.SevenZip != nil {
		tools.SevenZip = *spec.SevenZip
	}
	if spec.Installer != nil {
		tools.Installer = *spec.Installer
	}
	return tools
}

// Plan classifies every entry of the job without running anything.
func (r *Runner) Plan() []PlannedExtraction {
	plan := make([]PlannedExtraction, 0, len(r.job.Spec.Archives))
	for _, a := range r.job.Spec.Archives {
		p := PlannedExtraction{
			ID:          a.ID,
			Archive:     a.Archive,
			Destination: a.Destination,
			Format:      extract.Classify(a.Destination),
		}
		if p.Format.Supported() {
			p.Tool, p.Args = r.extractor.Args(p.Format, a.Destination, a.Archive)
		}
		plan = append(plan, p)
	}
	return plan
}

// Run extracts every archive of the job in order. It stops at the first tool
// failure unless the job sets continue_on_error, in which case all failures
// are returned together. Entries with an unsupported destination abort the
// run by panicking.
func (r *Runner) Run(ctx context.Context) error {
	var errs error
	for i, a := range r.job.Spec.Archives {
		if err := ctx.Err(); err != nil {
			return errors.Join(errs, fmt.Errorf("run interrupted before archive '%s': %w", a.ID, err))
		}

		logger := r.logger.With(zap.String("archive_id", a.ID), zap.Int("index", i))
		logger.Debug("running extraction")

		if err := r.extractor.Extract(ctx, a.Destination, a.Archive); err != nil {
			err = fmt.Errorf("failed to extract archive '%s': %w", a.ID, err)
			if !r.job.Spec.ContinueOnError {
				return err
			}
			logger.Error("extraction failed, continuing", zap.Error(err))
			errs = errors.Join(errs, err)
			continue
		}

		logger.Info("archive extracted")
	}

	return errs
}
