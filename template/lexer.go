package template

import (
	"fmt"
	"strings"
)

// Diagnostic categories raised by the lexer/parser (§4.2, §7).
var (
	ErrMalformedTemplate = fmt.Errorf("template: malformed template")
)

// UnknownPlaceholderError reports a placeholder name the engine does not
// recognize and that cannot be resolved to a method parameter either.
type UnknownPlaceholderError struct {
	Name string
}

func (e *UnknownPlaceholderError) Error() string {
	return fmt.Sprintf("template: unknown placeholder %q", e.Name)
}

// rawToken is an intermediate lexer token before name/arg/param splitting.
type rawToken struct {
	literal bool
	text    string // literal text, or the raw "{{ ... }}" interior
}

// lex splits a template string into alternating literal and placeholder
// raw tokens. Whitespace inside "{{ ... }}" is insignificant; a literal
// "{" not followed by a second "{" is passed through unchanged. Unclosed
// braces fail with ErrMalformedTemplate.
func lex(tpl string) ([]rawToken, error) {
	var out []rawToken
	var lit strings.Builder
	i := 0
	for i < len(tpl) {
		if tpl[i] == '{' && i+1 < len(tpl) && tpl[i+1] == '{' {
			if lit.Len() > 0 {
				out = append(out, rawToken{literal: true, text: lit.String()})
				lit.Reset()
			}
			end := strings.Index(tpl[i+2:], "}}")
			if end < 0 {
				return nil, fmt.Errorf("%w: unclosed \"{{\" at offset %d", ErrMalformedTemplate, i)
			}
			inner := tpl[i+2 : i+2+end]
			out = append(out, rawToken{literal: false, text: inner})
			i = i + 2 + end + 2
			continue
		}
		if tpl[i] == '}' && i+1 < len(tpl) && tpl[i+1] == '}' {
			return nil, fmt.Errorf("%w: unmatched \"}}\" at offset %d", ErrMalformedTemplate, i)
		}
		lit.WriteByte(tpl[i])
		i++
	}
	if lit.Len() > 0 {
		out = append(out, rawToken{literal: true, text: lit.String()})
	}
	return out, nil
}
