//go:build unix

package shell

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/josephlewis42/pipesh/core/config"
	"github.com/josephlewis42/pipesh/core/logger"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Configuration {
	cfg := config.Default()
	cfg.Prompt = "$ "
	cfg.EchoInput = true
	cfg.Color = ColorNever
	return cfg
}

// runScript runs script through a shell with stdin read from a file and
// stdout and stderr interleaved into one transcript.
func runScript(t *testing.T, script string, events *logger.SessionLogger) (string, int) {
	t.Helper()
	dir := t.TempDir()

	scriptPath := filepath.Join(dir, "script")
	require.NoError(t, os.WriteFile(scriptPath, []byte(script), 0600))
	stdin, err := os.Open(scriptPath)
	require.NoError(t, err)
	defer stdin.Close()

	transcriptPath := filepath.Join(dir, "transcript")
	transcript, err := os.OpenFile(transcriptPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	require.NoError(t, err)
	defer transcript.Close()

	sh := New(testConfig(), Options{
		Stdin:  stdin,
		Stdout: transcript,
		Stderr: transcript,
		Events: events,
		Environ: func() []string {
			return []string{"PATH=/usr/bin:/bin"}
		},
	})
	status := sh.Run()

	out, err := os.ReadFile(transcriptPath)
	require.NoError(t, err)
	return string(out), status
}

func TestShell_Run(t *testing.T) {
	g := goldie.New(
		t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithDiffEngine(goldie.ColoredDiff),
		goldie.WithTestNameForDir(true),
	)

	cases := map[string]struct {
		script     string
		wantStatus int
	}{
		"pipelines": {
			script: "echo hello\n" +
				"echo '|' x\n" +
				"badcmd | wc\n" +
				"printf A | printf B | printf C\n" +
				"| wc\n" +
				"echo hi |\n" +
				"printf 'a\\nb\\n' | tr a-z A-Z\n" +
				"exit 3\n",
			wantStatus: 3,
		},
		"statuses": {
			script: "true\n" +
				"false\n" +
				"sh -c 'kill -9 $$'\n" +
				"exit\n",
			wantStatus: 137,
		},
		"limits": {
			script: "echo 1 2 3 4 5 6 7 8 9 10 11 12 13 14 15 16\n" +
				"echo 0123456789012345678901234567890123456789012345678901234567890123\n" +
				"echo 'oops\n" +
				"echo 0123456789 0123456789 0123456789 0123456789 0123456789 0123456789 0123456789 0123456789 012345678\n",
			wantStatus: 2,
		},
		"stdin": {
			script: "cat\n" +
				"from stdin\n" +
				"exit 9\n",
			wantStatus: 0,
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			out, status := runScript(t, tc.script, nil)

			assert.Equal(t, tc.wantStatus, status)
			g.Assert(t, tn, []byte(out))
		})
	}
}

func TestShell_Run_events(t *testing.T) {
	var log bytes.Buffer
	events := logger.NewJSONLinesLogRecorder(&log).NewSession()

	_, status := runScript(t, "echo hello\nbadcmd | wc\necho hi |\nfalse | true\nexit\n", events)
	assert.Equal(t, 0, status)

	var entries []*logger.LogEntry
	require.NoError(t, logger.ReadJSONLinesLog(&log, func(le *logger.LogEntry) {
		entries = append(entries, le)
	}))
	require.Len(t, entries, 5)

	var types []logger.EventType
	for _, le := range entries {
		types = append(types, le.Type)
		assert.Equal(t, events.SessionID(), le.SessionID)
	}
	assert.Equal(t, []logger.EventType{
		logger.EventRunCommand,
		logger.EventUnknownCommand,
		logger.EventInvalidInvocation,
		logger.EventRunCommand,
		logger.EventBuiltin,
	}, types)

	assert.Equal(t, []string{"/usr/bin/echo"}, entries[0].ResolvedPaths)
	assert.Equal(t, "badcmd", entries[1].Unresolved)
	assert.Equal(t, "command_failed", entries[3].Status)
	assert.Equal(t, 0, entries[3].ExitCode)
}

func TestShell_Run_quotedPipe(t *testing.T) {
	out, status := runScript(t, "echo '|' x\necho \"|\" \\| | tr '|' +\n", nil)

	assert.Equal(t, 0, status)
	assert.Equal(t, "$ echo '|' x\n| x\n$ echo \"|\" \\| | tr '|' +\n+ +\n", out)
}

func TestShell_RunLine(t *testing.T) {
	null, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	require.NoError(t, err)
	defer null.Close()

	sh := New(testConfig(), Options{
		Stdin:  null,
		Stdout: null,
		Stderr: null,
		Environ: func() []string {
			return []string{"PATH=/usr/bin:/bin"}
		},
	})

	assert.True(t, sh.RunLine("false"))
	assert.Equal(t, 1, sh.LastStatus())

	assert.True(t, sh.RunLine("nothing-by-this-name"))
	assert.Equal(t, 127, sh.LastStatus())

	assert.True(t, sh.RunLine("true | false"))
	assert.Equal(t, 1, sh.LastStatus())

	assert.True(t, sh.RunLine("echo 'unclosed"))
	assert.Equal(t, 2, sh.LastStatus())

	assert.True(t, sh.RunLine("exit | cat"), "builtins aren't run inside pipelines")
	assert.Equal(t, 127, sh.LastStatus())

	assert.False(t, sh.RunLine("exit 4"))
	assert.Equal(t, 4, sh.LastStatus())
}
