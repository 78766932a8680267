package parser

import "strings"

// Parse splits a raw command line on whitespace and returns the command it
// describes. Quotes are not interpreted beyond stripping one matching pair
// around the pattern, so a pattern cannot contain spaces.
func Parse(raw string) (*Command, error) {
	tokens := strings.Fields(raw)
	if len(tokens) == 0 || tokens[0] != Program {
		return nil, ErrInvalidInvocation
	}

	cmd := &Command{}
	i := 1

	// Flags run until the first token that does not start with "-".
	// A bare "--" ends them so the pattern itself may start with a dash.
	var flagTokens []string
	for i < len(tokens) && strings.HasPrefix(tokens[i], "-") {
		if tokens[i] == "--" {
			i++
			break
		}
		flagTokens = append(flagTokens, tokens[i])

		// A value flag may take the next token as its radius.
		if takesSeparateValue(tokens[i]) && i+1 < len(tokens) {
			if _, ok := parseRadius(tokens[i+1]); ok {
				flagTokens = append(flagTokens, tokens[i+1])
				i++
			}
		}
		i++
	}
	cmd.Flags = NormalizeFlags(flagTokens)

	if i < len(tokens) {
		cmd.Pattern = unquote(tokens[i])
		i++
	}
	if cmd.Pattern == "" {
		return nil, ErrMissingPattern
	}

	if i < len(tokens) {
		cmd.Files = append([]string(nil), tokens[i:]...)
	}

	return cmd, nil
}

// takesSeparateValue reports whether tok is a value flag with nothing fused
// to it, such as "-C", "-nA" or "--context".
func takesSeparateValue(tok string) bool {
	if strings.HasPrefix(tok, "--") {
		spec, ok := lookupLong(tok[2:])
		return ok && spec.takesValue
	}
	if len(tok) < 2 {
		return false
	}
	spec, ok := lookupShort(tok[len(tok)-1])
	if !ok || !spec.takesValue {
		return false
	}
	// The value flag must be the first value flag in the cluster, otherwise
	// an earlier one has already claimed the rest of the token.
	for j := 1; j < len(tok)-1; j++ {
		if s, ok := lookupShort(tok[j]); ok && s.takesValue {
			return false
		}
	}
	return true
}

// unquote strips one layer of matching single or double quotes.
func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '\'' || first == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
