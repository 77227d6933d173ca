package reasoner

import "strings"

// toEngineSyntax rewrites Prolog-family clause text into the engine's
// notation. Bare lowercase identifiers in argument position are promoted to
// name constants (sky -> /sky); predicates, variables, numbers, and quoted
// strings pass through. Comment text after '%' or '#' is dropped.
func toEngineSyntax(text string) string {
	var out strings.Builder
	out.Grow(len(text) + len(text)/4)

	runes := []rune(text)
	i := 0
	for i < len(runes) {
		c := runes[i]

		switch {
		case c == '%' || c == '#':
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
		case c == '"':
			out.WriteRune(c)
			i++
			for i < len(runes) {
				out.WriteRune(runes[i])
				if runes[i] == '\\' && i+1 < len(runes) {
					i++
					out.WriteRune(runes[i])
					i++
					continue
				}
				if runes[i] == '"' {
					i++
					break
				}
				i++
			}
		case isIdentStart(c):
			start := i
			for i < len(runes) && isIdentPart(runes[i]) {
				i++
			}
			ident := string(runes[start:i])

			prev := lastNonSpace(out.String())
			next := nextNonSpace(runes, i)

			switch {
			case prev == '/' || prev == ':':
				// Already a name constant or a builtin reference.
				out.WriteString(ident)
			case next == '(':
				// Predicate or function application.
				out.WriteString(ident)
			case c >= 'A' && c <= 'Z' || c == '_':
				// Variable.
				out.WriteString(ident)
			default:
				out.WriteString("/" + ident)
			}
		default:
			out.WriteRune(c)
			i++
		}
	}
	return out.String()
}

func isIdentStart(c rune) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isIdentPart(c rune) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}

func lastNonSpace(s string) rune {
	for i := len(s) - 1; i >= 0; i-- {
		c := rune(s[i])
		if c != ' ' && c != '\t' {
			return c
		}
	}
	return 0
}

func nextNonSpace(runes []rune, i int) rune {
	for ; i < len(runes); i++ {
		if runes[i] != ' ' && runes[i] != '\t' {
			return runes[i]
		}
	}
	return 0
}

// normalizeQuery strips interactive prefixes and the terminal period from a
// query string so it can be parsed as a single atom.
func normalizeQuery(query string) string {
	clean := strings.TrimSpace(query)
	clean = strings.TrimPrefix(clean, "?-")
	clean = strings.TrimPrefix(clean, "?")
	clean = strings.TrimSpace(clean)
	clean = strings.TrimSuffix(clean, ".")
	return strings.TrimSpace(clean)
}
