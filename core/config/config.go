package config

import (
	_ "embed"
	"errors"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const (
	ConfigurationName = "config.yaml"
)

// ErrNoEventLog is returned when the event log is disabled or the
// configuration has no directory to hold it.
var ErrNoEventLog = errors.New("event log is not configured")

type Configuration struct {
	configFs afero.Fs

	Prompt    string `json:"prompt"`
	EchoInput bool   `json:"echo_input"`
	Color     string `json:"color" validate:"oneof=auto always never"`
	Limits    Limits `json:"limits"`
	EventLog  string `json:"event_log"`
}

// Limits bounds the input the interpreter accepts.
type Limits struct {
	MaxLineLength int `json:"max_line_length" validate:"gte=1"`
	MaxWords      int `json:"max_words" validate:"gte=1"`
	MaxWordLength int `json:"max_word_length" validate:"gte=1"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

func (c *Configuration) fs() afero.Fs {
	return c.configFs
}

// OpenEventLog opens the event log in an append only state.
func (c *Configuration) OpenEventLog() (afero.File, error) {
	if c.fs() == nil || c.EventLog == "" {
		return nil, ErrNoEventLog
	}
	return c.fs().OpenFile(c.EventLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// ReadEventLog opens the event log for reading.
func (c *Configuration) ReadEventLog() (afero.File, error) {
	if c.fs() == nil || c.EventLog == "" {
		return nil, ErrNoEventLog
	}
	return c.fs().OpenFile(c.EventLog, os.O_RDONLY, 0600)
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}

// Default returns the built-in configuration. It has no directory so the
// event log is unavailable.
func Default() *Configuration {
	return defaultConfig()
}
