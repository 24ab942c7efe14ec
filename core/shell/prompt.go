package shell

import (
	"strings"

	"github.com/josephlewis42/pipesh/core/proc"
)

// PromptInfo holds the values prompt escapes expand to.
type PromptInfo struct {
	Env      proc.Env
	Hostname string
	Wd       string
	Uid      int
}

// ExpandPrompt replaces the escapes \u (user), \h (host), \w (working
// directory, with the home directory shortened to ~) and \$ (# for root,
// $ otherwise) in prompt.
func ExpandPrompt(prompt string, info PromptInfo) string {
	prompt = strings.ReplaceAll(prompt, `\u`, info.Env.Getenv(proc.EnvUser))
	prompt = strings.ReplaceAll(prompt, `\h`, info.Hostname)

	pwd := info.Wd
	if home := info.Env.Getenv(proc.EnvHome); home != "" && strings.HasPrefix(pwd, home) {
		pwd = "~" + strings.TrimPrefix(pwd, home)
	}
	prompt = strings.ReplaceAll(prompt, `\w`, pwd)

	if info.Uid == 0 {
		prompt = strings.ReplaceAll(prompt, `\$`, "#")
	} else {
		prompt = strings.ReplaceAll(prompt, `\$`, "$")
	}

	return prompt
}
