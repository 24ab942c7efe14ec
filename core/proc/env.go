package proc

import (
	"os"
	"strings"
)

const (
	EnvPath = "PATH"
	EnvHome = "HOME"
	EnvUser = "USER"
)

// Env is a read-only snapshot of a process environment.
//
// The zero value is an empty environment.
type Env struct {
	environ []string
	vars    map[string]string
}

// NewEnv snapshots environ, a list in the form returned by os.Environ.
// Later changes to environ are not observed. When a key is repeated the first
// value wins, matching getenv(3).
func NewEnv(environ []string) Env {
	env := Env{
		environ: make([]string, 0, len(environ)),
		vars:    make(map[string]string, len(environ)),
	}

	for _, e := range environ {
		split := strings.SplitN(e, "=", 2)
		key, value := split[0], ""
		if len(split) > 1 {
			value = split[1]
		}
		if key == "" {
			continue
		}
		if _, ok := env.vars[key]; ok {
			continue
		}
		env.vars[key] = value
		env.environ = append(env.environ, key+"="+value)
	}

	return env
}

// CurrentEnv snapshots the environment of the running process.
func CurrentEnv() Env {
	return NewEnv(os.Environ())
}

// LookupEnv retrieves the value of the environment variable named by the key.
// If the variable is present in the environment the value (which may be
// empty) is returned and the boolean is true. Otherwise the returned value
// will be empty and the boolean will be false.
func (e Env) LookupEnv(key string) (string, bool) {
	val, ok := e.vars[key]
	return val, ok
}

// Getenv retrieves the value of the environment variable named by the key.
// It returns the value, which will be empty if the variable is not present.
func (e Env) Getenv(key string) string {
	val, _ := e.LookupEnv(key)
	return val
}

// Environ returns a copy of strings representing the environment, in the
// form "key=value". The result is never nil so it can be handed to a child
// process without falling back to the parent's environment.
func (e Env) Environ() []string {
	out := make([]string, len(e.environ))
	copy(out, e.environ)
	return out
}

// With returns a new snapshot with key set to value.
func (e Env) With(key, value string) Env {
	environ := []string{key + "=" + value}
	for _, kv := range e.environ {
		if strings.HasPrefix(kv, key+"=") {
			continue
		}
		environ = append(environ, kv)
	}
	return NewEnv(environ)
}
