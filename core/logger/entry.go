package logger

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"
)

// EventType identifies what a LogEntry records.
type EventType string

const (
	// EventRunCommand is a pipeline whose stages all started.
	EventRunCommand EventType = "run_command"
	// EventUnknownCommand is a pipeline with a command that didn't resolve.
	EventUnknownCommand EventType = "unknown_command"
	// EventInvalidInvocation is a line rejected before anything ran.
	EventInvalidInvocation EventType = "invalid_invocation"
	// EventSpawnFailure is a pipeline the OS could not start.
	EventSpawnFailure EventType = "spawn_failure"
	// EventBuiltin is a builtin run by the interpreter itself.
	EventBuiltin EventType = "builtin"
)

const (
	fieldTimestamp     = "timestamp_micros"
	fieldSessionID     = "session_id"
	fieldType          = "type"
	fieldCommand       = "command"
	fieldResolvedPaths = "resolved_paths"
	fieldUnresolved    = "unresolved"
	fieldStatus        = "status"
	fieldExitCode      = "exit_code"
	fieldError         = "error"
)

var ErrMissingType = errors.New("log entry has no type")

// LogEntry is a single recorded event.
type LogEntry struct {
	TimestampMicros int64
	SessionID       string
	Type            EventType

	// Command holds the words of the line.
	Command []string
	// ResolvedPaths holds the executable of each stage that resolved.
	ResolvedPaths []string
	// Unresolved is the command name that couldn't be found.
	Unresolved string
	Status     string
	ExitCode   int
	Error      string
}

// MarshalProto converts the entry to a protobuf Struct.
func (le *LogEntry) MarshalProto() (*structpb.Struct, error) {
	fields := map[string]interface{}{
		fieldTimestamp: le.TimestampMicros,
		fieldType:      string(le.Type),
		fieldExitCode:  le.ExitCode,
	}
	if le.SessionID != "" {
		fields[fieldSessionID] = le.SessionID
	}
	if len(le.Command) > 0 {
		fields[fieldCommand] = stringsToList(le.Command)
	}
	if len(le.ResolvedPaths) > 0 {
		fields[fieldResolvedPaths] = stringsToList(le.ResolvedPaths)
	}
	if le.Unresolved != "" {
		fields[fieldUnresolved] = validUTF8(le.Unresolved)
	}
	if le.Status != "" {
		fields[fieldStatus] = le.Status
	}
	if le.Error != "" {
		fields[fieldError] = validUTF8(le.Error)
	}

	return structpb.NewStruct(fields)
}

// UnmarshalProto fills the entry from a protobuf Struct.
func (le *LogEntry) UnmarshalProto(s *structpb.Struct) error {
	fields := s.GetFields()

	eventType := fields[fieldType].GetStringValue()
	if eventType == "" {
		return ErrMissingType
	}

	*le = LogEntry{
		TimestampMicros: int64(fields[fieldTimestamp].GetNumberValue()),
		SessionID:       fields[fieldSessionID].GetStringValue(),
		Type:            EventType(eventType),
		Command:         listToStrings(fields[fieldCommand]),
		ResolvedPaths:   listToStrings(fields[fieldResolvedPaths]),
		Unresolved:      fields[fieldUnresolved].GetStringValue(),
		Status:          fields[fieldStatus].GetStringValue(),
		ExitCode:        int(fields[fieldExitCode].GetNumberValue()),
		Error:           fields[fieldError].GetStringValue(),
	}
	return nil
}

// CommandName returns the first word of the command, if any.
func (le *LogEntry) CommandName() string {
	if len(le.Command) == 0 {
		return ""
	}
	return le.Command[0]
}

func (le *LogEntry) String() string {
	return fmt.Sprintf("%s %q", le.Type, le.Command)
}

func stringsToList(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, s := range in {
		out[i] = validUTF8(s)
	}
	return out
}

// validUTF8 replaces invalid sequences, Struct only holds UTF-8 strings.
func validUTF8(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

func listToStrings(v *structpb.Value) []string {
	var out []string
	for _, item := range v.GetListValue().GetValues() {
		out = append(out, item.GetStringValue())
	}
	return out
}
