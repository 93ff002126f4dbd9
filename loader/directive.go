package loader

import "strings"

// directive is one parsed "sqlgen:<name> <key>=<value> ..." comment line
// (§9 Design Notes: "the same information is supplied by a pre-pass that
// reads type descriptions" — here, doc-comment directives instead of
// runtime attributes).
type directive struct {
	name string
	args map[string]string
	// raw holds the directive's text after name, unsplit, for directives
	// whose payload is free-form (the SQL template itself) rather than
	// key=value pairs.
	raw string
}

const directivePrefix = "sqlgen:"

// parseDirectives scans a comment group's lines for "sqlgen:" directives.
// Every recognized line becomes one directive; non-directive lines (plain
// doc prose) are ignored.
func parseDirectives(lines []string) []directive {
	var out []directive
	for _, line := range lines {
		line = strings.TrimSpace(strings.TrimPrefix(line, "//"))
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, directivePrefix) {
			continue
		}
		rest := strings.TrimSpace(strings.TrimPrefix(line, directivePrefix))
		name, payload, _ := strings.Cut(rest, " ")
		payload = strings.TrimSpace(payload)
		out = append(out, directive{name: name, args: parseArgs(payload), raw: payload})
	}
	return out
}

// parseArgs parses a "key=value key2=value2" payload. Bare tokens with no
// "=" are recorded with an empty value (used as boolean flags, e.g. "pk").
func parseArgs(payload string) map[string]string {
	args := map[string]string{}
	for _, tok := range strings.Fields(payload) {
		k, v, ok := strings.Cut(tok, "=")
		if !ok {
			args[k] = ""
			continue
		}
		args[k] = v
	}
	return args
}

func find(ds []directive, name string) (directive, bool) {
	for _, d := range ds {
		if d.name == name {
			return d, true
		}
	}
	return directive{}, false
}

func findAll(ds []directive, name string) []directive {
	var out []directive
	for _, d := range ds {
		if d.name == name {
			out = append(out, d)
		}
	}
	return out
}
