package template

import "strings"

// Parse tokenizes tpl into an ordered list of Placeholder nodes (§4.2).
// Syntax recognized inside "{{ ... }}": "name", "name:arg", "name @param".
// knownDynamic reports whether a non-builtin name is a declared method
// parameter (role dynamic-sql-identifier or dynamic-sql-fragment); when it
// is, the name resolves to KindDynamicIdentifier/KindDynamicFragment
// instead of raising UnknownPlaceholderError. isFragment distinguishes the
// two dynamic roles for a given name.
func Parse(tpl string, knownDynamic func(name string) (isFragment bool, ok bool)) ([]Placeholder, error) {
	raws, err := lex(tpl)
	if err != nil {
		return nil, err
	}
	out := make([]Placeholder, 0, len(raws))
	for _, r := range raws {
		if r.literal {
			out = append(out, Placeholder{Kind: KindLiteral, Text: r.text})
			continue
		}
		p, err := parseOne(strings.TrimSpace(r.text), knownDynamic)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func parseOne(inner string, knownDynamic func(string) (bool, bool)) (Placeholder, error) {
	if inner == "" {
		return Placeholder{}, ErrMalformedTemplate
	}

	// "name @param" form, e.g. "where @pred".
	name, param, hasParam := splitParam(inner)
	// "name:arg" form, e.g. "limit:small".
	base, arg, hasArg := strings.Cut(name, ":")
	if !hasArg {
		base = name
	}
	base = strings.TrimSpace(base)

	kind, ok := KnownName(base)
	if !ok {
		if knownDynamic == nil {
			return Placeholder{}, &UnknownPlaceholderError{Name: base}
		}
		isFragment, known := knownDynamic(base)
		if !known {
			return Placeholder{}, &UnknownPlaceholderError{Name: base}
		}
		if isFragment {
			return Placeholder{Kind: KindDynamicFragment, Param: base}, nil
		}
		return Placeholder{Kind: KindDynamicIdentifier, Param: base}, nil
	}

	switch kind {
	case KindWhereExpr:
		if !hasParam {
			return Placeholder{}, &UnknownPlaceholderError{Name: "where (missing @param)"}
		}
		return Placeholder{Kind: KindWhereExpr, Param: param}, nil
	case KindMemberValues:
		if !hasParam {
			return Placeholder{}, &UnknownPlaceholderError{Name: "member_values (missing @param)"}
		}
		return Placeholder{Kind: KindMemberValues, Param: param}, nil
	case KindLimit, KindOffset:
		p := Placeholder{Kind: kind}
		if hasArg {
			p.Arg = strings.TrimSpace(arg)
		}
		if hasParam {
			p.Param = param
		}
		return p, nil
	default:
		return Placeholder{Kind: kind}, nil
	}
}

// splitParam splits "name @param" into name and param; ok is false if no
// "@" is present.
func splitParam(s string) (name, param string, ok bool) {
	i := strings.IndexByte(s, '@')
	if i < 0 {
		return s, "", false
	}
	return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:]), true
}
