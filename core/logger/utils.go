package logger

import (
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
)

// LogRecorder is a callback that stores events in an external datastore.
type LogRecorder func(le *LogEntry) error

// Logger captures the events of interpreter sessions.
type Logger struct {
	Record LogRecorder

	// Now returns the current time, it's replaced in tests.
	Now func() time.Time
}

// NewJSONLinesLogRecorder creates a Logger that exports logs in newline
// delimited JSON object format.
func NewJSONLinesLogRecorder(w io.Writer) *Logger {
	var mu sync.Mutex
	return &Logger{
		Record: func(le *LogEntry) error {
			msg, err := le.MarshalProto()
			if err != nil {
				return err
			}
			entry, err := protojson.Marshal(msg)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			_, err = fmt.Fprintln(w, string(entry))
			return err
		},
	}
}

// Discard creates a Logger that drops every event.
func Discard() *Logger {
	return &Logger{
		Record: func(*LogEntry) error { return nil },
	}
}

func (l *Logger) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

func (l *Logger) record(sessionID string, le *LogEntry) error {
	le.TimestampMicros = l.now().UnixNano() / int64(time.Microsecond)
	le.SessionID = sessionID
	return l.Record(le)
}

// NewSession creates a logger with attached session ID.
func (l *Logger) NewSession() *SessionLogger {
	return &SessionLogger{Logger: l, sessionID: fmt.Sprintf("%d", rand.Uint64())}
}

// Sessionless creates a logger without a session ID.
func (l *Logger) Sessionless() *SessionLogger {
	return &SessionLogger{Logger: l, sessionID: ""}
}

// SessionLogger logs messages with a shared session ID.
type SessionLogger struct {
	*Logger
	sessionID string
}

// SessionID returns the ID attached to every event.
func (l *SessionLogger) SessionID() string {
	return l.sessionID
}

// Record stamps the entry with the session and time and stores it.
func (l *SessionLogger) Record(le *LogEntry) error {
	return l.record(l.sessionID, le)
}

// RunCommand records a pipeline that ran.
func (l *SessionLogger) RunCommand(command, resolvedPaths []string, status string, exitCode int) error {
	return l.Record(&LogEntry{
		Type:          EventRunCommand,
		Command:       command,
		ResolvedPaths: resolvedPaths,
		Status:        status,
		ExitCode:      exitCode,
	})
}

// UnknownCommand records a pipeline with a command that couldn't be found.
func (l *SessionLogger) UnknownCommand(command []string, unknown string, err error) error {
	return l.Record(&LogEntry{
		Type:       EventUnknownCommand,
		Command:    command,
		Unresolved: unknown,
		Error:      errString(err),
	})
}

// InvalidInvocation records a line that was rejected before running.
func (l *SessionLogger) InvalidInvocation(command []string, err error) error {
	return l.Record(&LogEntry{
		Type:    EventInvalidInvocation,
		Command: command,
		Error:   errString(err),
	})
}

// SpawnFailure records a pipeline the OS couldn't start.
func (l *SessionLogger) SpawnFailure(command []string, err error) error {
	return l.Record(&LogEntry{
		Type:    EventSpawnFailure,
		Command: command,
		Error:   errString(err),
	})
}

// Builtin records a builtin run by the interpreter.
func (l *SessionLogger) Builtin(command []string, exitCode int) error {
	return l.Record(&LogEntry{
		Type:     EventBuiltin,
		Command:  command,
		ExitCode: exitCode,
	})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
