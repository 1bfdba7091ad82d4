package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/infracollect/unpack/internal/extract"
	"github.com/infracollect/unpack/internal/runner"
)

func TestReadJobFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "jobs/nightly.yaml", []byte("kind: ExtractJob"), 0644))

	t.Run("reads from filesystem", func(t *testing.T) {
		data, err := readJobFile(fs, strings.NewReader("unused"), "jobs/nightly.yaml")
		require.NoError(t, err)
		assert.Equal(t, "kind: ExtractJob", string(data))
	})

	t.Run("reads stdin for dash", func(t *testing.T) {
		data, err := readJobFile(fs, strings.NewReader("from stdin"), "-")
		require.NoError(t, err)
		assert.Equal(t, "from stdin", string(data))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := readJobFile(fs, strings.NewReader(""), "jobs/missing.yaml")
		require.Error(t, err)
	})
}

func TestFormatValidationError(t *testing.T) {
	_, err := runner.ParseExtractJob([]byte("kind: ExtractJob\nspec: {archives: [{id: a}]}"))
	require.Error(t, err)

	formatted := formatValidationError(err)
	assert.ErrorContains(t, formatted, "validation error(s)")
	assert.ErrorContains(t, formatted, "ExtractJob.Metadata.Name: failed 'required' validation")
	assert.ErrorContains(t, formatted, "ExtractJob.Spec.Archives[0].Destination: failed 'required' validation")
}

func TestCheckPlan(t *testing.T) {
	require.NoError(t, checkPlan([]runner.PlannedExtraction{
		{ID: "ok", Destination: "out.zip", Format: extract.Zip},
	}))

	err := checkPlan([]runner.PlannedExtraction{
		{ID: "ok", Destination: "out.zip", Format: extract.Zip},
		{ID: "upper", Destination: "out.TAR", Format: extract.Unsupported("TAR")},
		{ID: "bare", Destination: "out", Format: extract.Unknown},
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "2 archive(s) cannot be extracted")
	assert.ErrorContains(t, err, `upper: destination "out.TAR" is unsupported(TAR)`)
	assert.ErrorContains(t, err, `bare: destination "out" is unknown`)
}

func TestPrintClassification(t *testing.T) {
	paths := []string{"/tmp/out.zip", "archive.foo", "archivefile"}

	t.Run("tab separated", func(t *testing.T) {
		var buf bytes.Buffer
		printClassification(&buf, paths, false)
		assert.Equal(t, "/tmp/out.zip\tzip\narchive.foo\tunsupported(foo)\narchivefile\tunknown\n", buf.String())
	})

	t.Run("decorated", func(t *testing.T) {
		var buf bytes.Buffer
		printClassification(&buf, paths, true)
		assert.Equal(t, "✓ /tmp/out.zip: zip\n✗ archive.foo: unsupported(foo)\n✗ archivefile: unknown\n", buf.String())
	})
}

func TestFormatCommandLine(t *testing.T) {
	assert.Equal(t, "7z x /data/a.msi -o/tmp/out.msi -y", formatCommandLine("7z", []string{"x", "/data/a.msi", "-o/tmp/out.msi", "-y"}))
	assert.Equal(t, `msiexec /a 'my file.tar' /qn 'TARGETDIR="/out.tar"' /lwe log`,
		formatCommandLine("msiexec", []string{"/a", "my file.tar", "/qn", `TARGETDIR="/out.tar"`, "/lwe", "log"}))
	assert.Equal(t, `unzip '/out/it'"'"'s.zip' ''`, formatCommandLine("unzip", []string{"/out/it's.zip", ""}))
}

func TestCreateLogger(t *testing.T) {
	logger, level, err := createLogger(false, false, "warn")
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.Equal(t, "warn", level.String())

	_, level, err = createLogger(true, false, "warn")
	require.NoError(t, err)
	assert.Equal(t, "debug", level.String())

	_, _, err = createLogger(true, false, "nope")
	require.Error(t, err)
	assert.ErrorContains(t, err, "invalid log level nope")
}

func TestWriteToolResolution(t *testing.T) {
	lookup := func(name string) (string, bool) {
		if name == "7z" {
			return "/usr/bin/7z", true
		}
		return "", false
	}

	var buf bytes.Buffer
	writeToolResolution(&buf, lookup, [][2]string{{"zip", "unzip"}, {"msi", "7z"}})
	assert.Equal(t, "zip: unzip (not found)\nmsi: 7z (/usr/bin/7z)\n", buf.String())
}

func TestVersionCommand(t *testing.T) {
	a := newTestApp(t)

	require.NoError(t, a.run(t, "--zip-tool", "nonexistent-unzip-xyz", "version"))
	assert.Contains(t, a.out.String(), "version: ")
	assert.Contains(t, a.out.String(), "zip: nonexistent-unzip-xyz (not found)\n")
	assert.Contains(t, a.out.String(), "msi: 7z (")
	assert.Empty(t, a.runner.calls)
}

type invocation struct {
	name string
	args []string
}

type stubCommandRunner struct {
	calls []invocation
	err   error
}

func (s *stubCommandRunner) Run(_ context.Context, name string, args ...string) error {
	s.calls = append(s.calls, invocation{name: name, args: args})
	return s.err
}

const nightlyJob = `
kind: ExtractJob
metadata:
  name: nightly
spec:
  archives:
    - id: sdk
      archive: /downloads/sdk.zip
      destination: /opt/sdk.zip
    - id: installer
      archive: /downloads/my setup.msi
      destination: /opt/setup.msi
    - id: bundle
      archive: /downloads/bundle.tar
      destination: /opt/bundle.tar
`

type testApp struct {
	fs     afero.Fs
	stdin  io.Reader
	runner *stubCommandRunner
	out    bytes.Buffer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return &testApp{
		fs:     afero.NewMemMapFs(),
		stdin:  strings.NewReader(""),
		runner: &stubCommandRunner{},
	}
}

func (a *testApp) run(t *testing.T, args ...string) error {
	t.Helper()
	app := newApp(appDeps{
		fs:    a.fs,
		stdin: a.stdin,
		commandRunner: func(*zap.Logger) extract.CommandRunner {
			return a.runner
		},
	})
	app.Writer = &a.out
	app.ErrWriter = io.Discard
	return app.Run(t.Context(), append([]string{"unpack", "-l", "error"}, args...))
}

func TestClassifyCommand_NonTerminalOutput(t *testing.T) {
	a := newTestApp(t)

	require.NoError(t, a.run(t, "classify", "/tmp/out.zip", "archive.TAR", "archivefile"))
	assert.Equal(t, "/tmp/out.zip\tzip\narchive.TAR\tunsupported(TAR)\narchivefile\tunknown\n", a.out.String())
}

func TestClassifyCommand_NoPaths(t *testing.T) {
	a := newTestApp(t)

	err := a.run(t, "classify")
	require.Error(t, err)
	assert.ErrorContains(t, err, "no path provided")
}

func TestExtractCommand(t *testing.T) {
	a := newTestApp(t)

	require.NoError(t, a.run(t, "extract", "/tmp/out.msi", "/data/a.msi"))
	require.Len(t, a.runner.calls, 1)
	assert.Equal(t, "7z", a.runner.calls[0].name)
	assert.Equal(t, []string{"x", "/data/a.msi", "-o/tmp/out.msi", "-y"}, a.runner.calls[0].args)
	assert.Empty(t, a.out.String())
}

func TestExtractCommand_ToolFlag(t *testing.T) {
	a := newTestApp(t)

	require.NoError(t, a.run(t, "--zip-tool", "/opt/unzip", "extract", "/tmp/out.zip", "/data/a.zip"))
	require.Len(t, a.runner.calls, 1)
	assert.Equal(t, "/opt/unzip", a.runner.calls[0].name)
	assert.Equal(t, []string{"/tmp/out.zip", "/data/a.zip"}, a.runner.calls[0].args)
}

func TestExtractCommand_DryRun(t *testing.T) {
	a := newTestApp(t)

	require.NoError(t, a.run(t, "extract", "--dry-run", "/tmp/my out.tar", "/data/a.tar"))
	assert.Empty(t, a.runner.calls)
	assert.Equal(t, `msiexec /a /data/a.tar /qn 'TARGETDIR="/tmp/my out.tar"' /lwe log`+"\n", a.out.String())
}

func TestExtractCommand_ToolFailure(t *testing.T) {
	a := newTestApp(t)
	a.runner.err = errors.New("boom")

	err := a.run(t, "extract", "/tmp/out.zip", "/data/a.zip")
	require.Error(t, err)

	var toolErr *extract.ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "unzip", toolErr.Tool)
	assert.ErrorContains(t, err, "failed to extract /data/a.zip")
}

func TestExtractCommand_MissingArguments(t *testing.T) {
	a := newTestApp(t)

	err := a.run(t, "extract", "/tmp/out.zip")
	require.Error(t, err)
	assert.ErrorContains(t, err, "both destination and archive are required")
	assert.Empty(t, a.runner.calls)
}

func TestRunCommand_DryRun(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, afero.WriteFile(a.fs, "jobs/nightly.yaml", []byte(nightlyJob), 0644))

	require.NoError(t, a.run(t, "run", "--dry-run", "jobs/nightly.yaml"))
	assert.Empty(t, a.runner.calls)
	assert.Equal(t, strings.Join([]string{
		"unzip /opt/sdk.zip /downloads/sdk.zip",
		"7z x '/downloads/my setup.msi' -o/opt/setup.msi -y",
		`msiexec /a /downloads/bundle.tar /qn 'TARGETDIR="/opt/bundle.tar"' /lwe log`,
	}, "\n")+"\n", a.out.String())
}

func TestRunCommand_DryRunMarksUnsupported(t *testing.T) {
	a := newTestApp(t)
	a.stdin = strings.NewReader(`
kind: ExtractJob
metadata: {name: upper}
spec:
  archives:
    - {id: upper, archive: a.tar, destination: out.TAR}
`)

	require.NoError(t, a.run(t, "run", "--dry-run", "-"))
	assert.Equal(t, "# upper: out.TAR is unsupported(TAR)\n", a.out.String())
}

func TestRunCommand_Executes(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, afero.WriteFile(a.fs, "jobs/nightly.yaml", []byte(nightlyJob), 0644))

	require.NoError(t, a.run(t, "run", "jobs/nightly.yaml"))
	require.Len(t, a.runner.calls, 3)
	assert.Equal(t, "unzip", a.runner.calls[0].name)
	assert.Equal(t, "7z", a.runner.calls[1].name)
	assert.Equal(t, "msiexec", a.runner.calls[2].name)
	assert.Equal(t, []string{"x", "/downloads/my setup.msi", "-o/opt/setup.msi", "-y"}, a.runner.calls[1].args)
}

func TestRunCommand_MissingJob(t *testing.T) {
	a := newTestApp(t)

	err := a.run(t, "run", "jobs/missing.yaml")
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to read job file 'jobs/missing.yaml'")
}

func TestValidateCommand(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, afero.WriteFile(a.fs, "jobs/nightly.yaml", []byte(nightlyJob), 0644))

	require.NoError(t, a.run(t, "validate", "jobs/nightly.yaml"))
	assert.Equal(t, "✓ Job file 'jobs/nightly.yaml' is valid\n", a.out.String())
	assert.Empty(t, a.runner.calls)
}

func TestValidateCommand_UnsupportedDestination(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, afero.WriteFile(a.fs, "bad.yaml", []byte(`
kind: ExtractJob
metadata: {name: bad}
spec:
  archives:
    - {id: ok, archive: a.zip, destination: out.zip}
    - {id: upper, archive: a.tar, destination: out.TAR}
`), 0644))

	err := a.run(t, "validate", "bad.yaml")
	require.Error(t, err)
	assert.ErrorContains(t, err, "job file 'bad.yaml' is invalid")
	assert.ErrorContains(t, err, `upper: destination "out.TAR" is unsupported(TAR)`)
	assert.Empty(t, a.runner.calls)
}

func TestValidateCommand_InvalidJob(t *testing.T) {
	a := newTestApp(t)
	a.stdin = strings.NewReader("kind: ExtractJob\nspec: {archives: [{id: a}]}")

	err := a.run(t, "validate", "-")
	require.Error(t, err)
	assert.ErrorContains(t, err, "validation error(s)")
}
