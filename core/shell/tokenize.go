package shell

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/anmitsu/go-shlex"
	"github.com/josephlewis42/pipesh/core/pipeline"
)

var (
	ErrLineTooLong     = errors.New("input line is too long")
	ErrBlankLine       = errors.New("only whitespace detected")
	ErrTooManyWords    = errors.New("too many words")
	ErrWordTooLong     = errors.New("word is too long")
	ErrUnbalancedQuote = errors.New("unexpected end of line while looking for matching quote")
	ErrDanglingEscape  = errors.New("unexpected end of line after backslash")
)

// ParseError reports which input constraint a line violated.
type ParseError struct {
	// Kind is one of the Err* values of this package.
	Kind   error
	Detail string
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *ParseError) Unwrap() error { return e.Kind }

// Tokenizer splits lines into words.
type Tokenizer struct {
	// MaxWords is the most words a line may hold, zero means no limit.
	MaxWords int
	// MaxWordLength is the longest word in bytes, zero means no limit.
	MaxWordLength int
}

// Tokenize splits line on runs of blanks. Quotes group words and backslash
// escapes the next character. Only a bare | word is a pipe, quoted or
// escaped ones are literal. The result is freshly allocated. Words that
// quote nothing, like '', are dropped.
func (t *Tokenizer) Tokenize(line string) ([]pipeline.Word, error) {
	var words []pipeline.Word
	for i, segment := range splitPipes(line) {
		if i > 0 {
			words = append(words, pipeline.Word{Text: pipeline.PipeToken})
		}

		texts, err := shlex.Split(segment, true)
		switch {
		case errors.Is(err, shlex.ErrNoClosing):
			return nil, &ParseError{Kind: ErrUnbalancedQuote}
		case errors.Is(err, shlex.ErrNoEscaped):
			return nil, &ParseError{Kind: ErrDanglingEscape}
		case err != nil:
			return nil, &ParseError{Kind: ErrUnbalancedQuote, Detail: err.Error()}
		}

		for _, text := range texts {
			words = append(words, pipeline.Word{Text: text, Literal: true})
		}
	}

	switch {
	case len(words) == 0:
		return nil, &ParseError{Kind: ErrBlankLine}
	case t.MaxWords > 0 && len(words) > t.MaxWords:
		return nil, &ParseError{Kind: ErrTooManyWords, Detail: fmt.Sprintf("%d words, limit is %d", len(words), t.MaxWords)}
	}

	for _, word := range words {
		if t.MaxWordLength > 0 && len(word.Text) > t.MaxWordLength {
			return nil, &ParseError{Kind: ErrWordTooLong, Detail: fmt.Sprintf("%d bytes, limit is %d", len(word.Text), t.MaxWordLength)}
		}
	}

	return words, nil
}

// splitPipes cuts line around every unquoted word that is exactly |.
// Quoting state carries over word boundaries so '| x' stays whole.
func splitPipes(line string) []string {
	var (
		segments  []string
		segStart  int
		wordStart = -1
		quote     rune
		escaped   bool
	)

	endWord := func(end int) {
		if wordStart >= 0 && line[wordStart:end] == pipeline.PipeToken {
			segments = append(segments, line[segStart:wordStart])
			segStart = end
		}
		wordStart = -1
	}

	for i, r := range line {
		switch {
		case escaped:
			escaped = false
		case quote == '\'':
			if r == '\'' {
				quote = 0
			}
		case r == '\\':
			escaped = true
		case quote == '"':
			if r == '"' {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case unicode.IsSpace(r):
			endWord(i)
			continue
		}

		if wordStart < 0 {
			wordStart = i
		}
	}
	if quote == 0 && !escaped {
		endWord(len(line))
	}

	return append(segments, line[segStart:])
}
