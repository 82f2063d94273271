package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethpandaops/ingest-metrics/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// scenarioFile is the top-level layout of testdata/scenarios.yaml.
type scenarioFile struct {
	Scenarios []*scenario `yaml:"scenarios"`
}

type scenario struct {
	Name   string         `yaml:"name"`
	Args   []string       `yaml:"args"`
	Log    []string       `yaml:"log"`
	Expect scenarioExpect `yaml:"expect"`
}

type scenarioExpect struct {
	ExitCode       int        `yaml:"exit_code"`
	Stdout         *string    `yaml:"stdout"`
	Rows           [][]string `yaml:"rows"`
	NoData         bool       `yaml:"no_data"`
	StderrContains string     `yaml:"stderr_contains"`
}

// stdout returns the exact output the scenario expects on stdout.
func (e scenarioExpect) stdout() string {
	if e.Stdout != nil {
		return *e.Stdout
	}

	if e.NoData {
		return report.NoDataMessage + "\n"
	}

	var b strings.Builder
	b.WriteString(report.Title + "\n")
	b.WriteString(strings.Join(report.Columns, "\t") + "\n")

	for _, row := range e.Rows {
		b.WriteString(strings.Join(row, "\t") + "\n")
	}

	return b.String()
}

func loadScenarios(t *testing.T) []*scenario {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("testdata", "scenarios.yaml"))
	require.NoError(t, err)

	var file scenarioFile
	require.NoError(t, yaml.Unmarshal(data, &file))
	require.NotEmpty(t, file.Scenarios)

	return file.Scenarios
}

func quietEnv(t *testing.T) {
	t.Helper()

	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("NO_COLOR", "1")
}

func writeLog(t *testing.T, dir string, lines []string) string {
	t.Helper()

	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}

	path := filepath.Join(dir, "ingest.log")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestRun_Scenarios(t *testing.T) {
	quietEnv(t)

	for _, sc := range loadScenarios(t) {
		t.Run(sc.Name, func(t *testing.T) {
			dir := t.TempDir()
			logPath := writeLog(t, dir, sc.Log)

			args := make([]string, 0, len(sc.Args))
			for _, arg := range sc.Args {
				arg = strings.ReplaceAll(arg, "{log}", logPath)
				arg = strings.ReplaceAll(arg, "{dir}", dir)
				args = append(args, arg)
			}

			var stdout, stderr bytes.Buffer
			code := Run(args, &stdout, &stderr)

			assert.Equal(t, sc.Expect.ExitCode, code, "stderr: %s", stderr.String())
			assert.Equal(t, sc.Expect.stdout(), stdout.String())

			if sc.Expect.StderrContains != "" {
				assert.Contains(t, stderr.String(), sc.Expect.StderrContains)
			}
		})
	}
}

func TestRun_Idempotent(t *testing.T) {
	quietEnv(t)

	logPath := writeLog(t, t.TempDir(), []string{
		"ingest_metrics table=c mode=m op=o parse_us=1 build_us=2 send_us=3 wait_lsn_us=4 total_us=5",
		"ingest_metrics table=a mode=m op=o parse_ms=7 build_ms=1 send_ms=1 wait_lsn_ms=1 total_ms=11",
		"ingest_metrics table=a mode=m op=o parse_ms=8 build_ms=1 send_ms=1 wait_lsn_ms=1 total_ms=12",
	})

	var first, second bytes.Buffer
	require.Equal(t, 0, Run([]string{logPath}, &first, &bytes.Buffer{}))
	require.Equal(t, 0, Run([]string{logPath}, &second, &bytes.Buffer{}))

	assert.Equal(t, first.Bytes(), second.Bytes())
}

func TestRun_Pretty(t *testing.T) {
	quietEnv(t)

	logPath := writeLog(t, t.TempDir(), []string{
		"ingest_metrics table=orders mode=batch op=insert parse_ms=10 build_us=5000 send_ms=2 wait_lsn_us=1000 total_ms=13",
	})

	var stdout bytes.Buffer
	require.Equal(t, 0, Run([]string{"--pretty", logPath}, &stdout, &bytes.Buffer{}))

	out := stdout.String()
	assert.Contains(t, out, report.Title)
	assert.Contains(t, out, "wait_lsn_ms")
	assert.Contains(t, out, "13.0")
	assert.NotContains(t, out, "\t")
}

func TestRun_VerboseLogsToStderr(t *testing.T) {
	quietEnv(t)

	logPath := writeLog(t, t.TempDir(), []string{
		"ingest_metrics table=t mode=m op=o parse_ms=1 build_ms=1 send_ms=1 wait_lsn_ms=1 total_ms=1",
	})

	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, Run([]string{"-v", logPath}, &stdout, &stderr))

	assert.Contains(t, stderr.String(), "scan complete")
	assert.NotContains(t, stdout.String(), "scan complete")
}

func TestRun_MissingEnvFile(t *testing.T) {
	quietEnv(t)

	logPath := writeLog(t, t.TempDir(), nil)

	var stdout, stderr bytes.Buffer
	code := Run([]string{"--env", filepath.Join(t.TempDir(), "missing.env"), logPath}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "failed to load config")
}

func TestRun_UnknownFlag(t *testing.T) {
	quietEnv(t)

	var stdout, stderr bytes.Buffer
	code := Run([]string{"--nope"}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "unknown flag")
}

func TestRun_UnusableDefaultEnvFile(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, dir string)
	}{
		{
			name: "malformed file",
			setup: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FOO='unterminated\n"), 0o600))
			},
		},
		{
			name: "directory",
			setup: func(t *testing.T, dir string) {
				require.NoError(t, os.Mkdir(filepath.Join(dir, ".env"), 0o700))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", "warn")
			t.Setenv("NO_COLOR", "1")

			dir := t.TempDir()
			tt.setup(t, dir)
			chdir(t, dir)

			logPath := writeLog(t, t.TempDir(), []string{
				"ingest_metrics table=orders mode=batch op=insert parse_ms=10 build_us=5000 send_ms=2 wait_lsn_us=1000 total_ms=13",
			})

			var stdout, stderr bytes.Buffer
			code := Run([]string{logPath}, &stdout, &stderr)

			require.Equal(t, 0, code, "stderr: %s", stderr.String())
			assert.Equal(t, scenarioExpect{
				Rows: [][]string{{"orders", "batch", "insert", "1", "10.0", "5.0", "2.0", "1.0", "13.0"}},
			}.stdout(), stdout.String())
			assert.Contains(t, stderr.String(), "ignoring default env file")
		})
	}
}

func TestRun_DashPrefixedPath(t *testing.T) {
	quietEnv(t)

	dir := t.TempDir()
	chdir(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "-x.log"),
		[]byte("ingest_metrics table=t mode=m op=o parse_ms=1 build_ms=1 send_ms=1 wait_lsn_ms=1 total_ms=1\n"), 0o600))

	t.Run("after double dash", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		code := Run([]string{"--", "-x.log"}, &stdout, &stderr)

		require.Equal(t, 0, code, "stderr: %s", stderr.String())
		assert.Equal(t, scenarioExpect{
			Rows: [][]string{{"t", "m", "o", "1", "1.0", "1.0", "1.0", "1.0", "1.0"}},
		}.stdout(), stdout.String())
	})

	t.Run("parsed as a flag without double dash", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		code := Run([]string{"-x.log"}, &stdout, &stderr)

		assert.Equal(t, 1, code)
		assert.Empty(t, stdout.String())
		assert.Contains(t, stderr.String(), "unknown shorthand flag")
	})
}

func TestRun_Help(t *testing.T) {
	quietEnv(t)

	var stdout bytes.Buffer
	code := Run([]string{"--help"}, &stdout, &bytes.Buffer{})

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "ingest-metrics -- -x.log")
}
