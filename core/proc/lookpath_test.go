//go:build unix

package proc

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProgram(t *testing.T, dir, name string, perm fs.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), perm))
	require.NoError(t, os.Chmod(path, perm))
	return path
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		os.Chdir(prev)
	})
}

func TestResolver_Resolve(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	empty := t.TempDir()

	writeProgram(t, first, "both", 0755)
	writeProgram(t, second, "both", 0755)
	writeProgram(t, second, "onlysecond", 0755)
	writeProgram(t, first, "noexec", 0644)
	writeProgram(t, second, "noexec", 0755)
	writeProgram(t, first, "plain", 0644)
	require.NoError(t, os.Mkdir(filepath.Join(first, "subdir"), 0755))

	cases := map[string]struct {
		path    string
		command string
		want    string
		wantErr bool
	}{
		"first match wins": {
			path:    first + ":" + second,
			command: "both",
			want:    filepath.Join(first, "both"),
		},
		"order matters": {
			path:    second + ":" + first,
			command: "both",
			want:    filepath.Join(second, "both"),
		},
		"later entry": {
			path:    empty + ":" + second,
			command: "onlysecond",
			want:    filepath.Join(second, "onlysecond"),
		},
		"non-executable skipped": {
			path:    first + ":" + second,
			command: "noexec",
			want:    filepath.Join(second, "noexec"),
		},
		"non-executable only": {
			path:    first,
			command: "plain",
			wantErr: true,
		},
		"directory skipped": {
			path:    first,
			command: "subdir",
			wantErr: true,
		},
		"missing": {
			path:    first + ":" + second,
			command: "badcmd",
			wantErr: true,
		},
		"empty PATH": {
			path:    "",
			command: "both",
			wantErr: true,
		},
		"slash bypasses PATH": {
			path:    empty,
			command: filepath.Join(first, "both"),
			want:    filepath.Join(first, "both"),
		},
		"slash to missing file": {
			path:    first,
			command: filepath.Join(empty, "both"),
			wantErr: true,
		},
		"slash to non-executable": {
			path:    second,
			command: filepath.Join(first, "noexec"),
			wantErr: true,
		},
		"slash to directory": {
			path:    first,
			command: first,
			wantErr: true,
		},
		"empty command": {
			path:    first,
			command: "",
			wantErr: true,
		},
	}

	resolver := NewResolver()
	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			env := NewEnv([]string{"PATH=" + tc.path})

			got, err := resolver.Resolve(env, tc.command)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrNotFound)
				assert.Empty(t, got)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolver_Resolve_unsetPath(t *testing.T) {
	got, err := NewResolver().Resolve(NewEnv([]string{"HOME=/"}), "sh")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, got)
}

func TestResolver_Resolve_emptyEntryIsWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	other := t.TempDir()
	writeProgram(t, dir, "local", 0755)
	chdir(t, dir)

	cases := map[string]string{
		"leading":     ":" + other,
		"trailing":    other + ":",
		"consecutive": other + "::" + other,
	}

	resolver := NewResolver()
	for tn, path := range cases {
		t.Run(tn, func(t *testing.T) {
			got, err := resolver.Resolve(NewEnv([]string{"PATH=" + path}), "local")

			assert.NoError(t, err)
			assert.Equal(t, "./local", got)
		})
	}
}

func TestResolver_Resolve_relativeSlash(t *testing.T) {
	dir := t.TempDir()
	writeProgram(t, dir, "local", 0755)
	chdir(t, dir)

	got, err := NewResolver().Resolve(NewEnv(nil), "./local")

	assert.NoError(t, err)
	assert.Equal(t, "./local", got)
}

func TestResolver_Resolve_idempotent(t *testing.T) {
	dir := t.TempDir()
	writeProgram(t, dir, "prog", 0755)
	env := NewEnv([]string{"PATH=" + dir})
	resolver := NewResolver()

	first, err := resolver.Resolve(env, "prog")
	require.NoError(t, err)
	second, err := resolver.Resolve(env, "prog")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestResolver_Resolve_notCached(t *testing.T) {
	dir := t.TempDir()
	env := NewEnv([]string{"PATH=" + dir})
	resolver := NewResolver()

	_, err := resolver.Resolve(env, "late")
	assert.ErrorIs(t, err, ErrNotFound)

	writeProgram(t, dir, "late", 0755)
	got, err := resolver.Resolve(env, "late")
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "late"), got)
}

func TestResolver_Resolve_memFs(t *testing.T) {
	memFs := afero.NewMemMapFs()
	require.NoError(t, memFs.MkdirAll("/usr/bin", 0755))
	require.NoError(t, afero.WriteFile(memFs, "/usr/bin/wc", nil, 0755))
	require.NoError(t, memFs.Chmod("/usr/bin/wc", 0755))
	require.NoError(t, afero.WriteFile(memFs, "/usr/bin/readme", nil, 0644))
	require.NoError(t, memFs.Chmod("/usr/bin/readme", 0644))

	resolver := &Resolver{Fs: memFs}
	env := NewEnv([]string{"PATH=/bin:/usr/bin"})

	got, err := resolver.Resolve(env, "wc")
	assert.NoError(t, err)
	assert.Equal(t, "/usr/bin/wc", got)

	_, err = resolver.Resolve(env, "readme")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, fs.ErrPermission)
}

func TestLookupError(t *testing.T) {
	err := &LookupError{Name: "badcmd", Err: ErrNotFound}

	assert.Equal(t, `exec: "badcmd": executable file not found in $PATH`, err.Error())
	assert.ErrorIs(t, err, ErrNotFound)
}
