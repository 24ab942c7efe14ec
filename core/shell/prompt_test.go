package shell

import (
	"fmt"
	"testing"

	"github.com/josephlewis42/pipesh/core/proc"
	"github.com/stretchr/testify/assert"
)

func ExampleExpandPrompt() {
	info := PromptInfo{
		Env:      proc.NewEnv([]string{"USER=ada", "HOME=/home/ada"}),
		Hostname: "engine",
		Wd:       "/home/ada/notes",
		Uid:      1000,
	}

	fmt.Println(ExpandPrompt(`\u@\h:\w\$ `, info))
	// Output: ada@engine:~/notes$
}

func TestExpandPrompt(t *testing.T) {
	env := proc.NewEnv([]string{"USER=root", "HOME=/root"})

	cases := map[string]struct {
		prompt string
		info   PromptInfo
		want   string
	}{
		"literal": {
			prompt: "$ ",
			info:   PromptInfo{Env: env},
			want:   "$ ",
		},
		"root": {
			prompt: `\u \$ `,
			info:   PromptInfo{Env: env, Uid: 0},
			want:   "root # ",
		},
		"outside home": {
			prompt: `\w>`,
			info:   PromptInfo{Env: env, Wd: "/tmp", Uid: 1},
			want:   "/tmp>",
		},
		"no home": {
			prompt: `\w>`,
			info:   PromptInfo{Env: proc.NewEnv(nil), Wd: "/root", Uid: 1},
			want:   "/root>",
		},
		"unset user": {
			prompt: `[\u]`,
			info:   PromptInfo{Env: proc.NewEnv(nil)},
			want:   "[]",
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			assert.Equal(t, tc.want, ExpandPrompt(tc.prompt, tc.info))
		})
	}
}
