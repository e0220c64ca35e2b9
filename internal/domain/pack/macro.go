package pack

import (
	"sort"
	"strings"
)

// Macros binds the stable template token names to their values for one
// build. Token names are a textual contract with user-authored templates
// and must never be renamed.
type Macros map[string]string

// Names returns the bound macro names, sorted.
func (m Macros) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Expand substitutes every recognized ${NAME} token in text with its bound
// value in a single linear pass. An unrecognized token is a MacroError
// naming the token and the source template. Resolved values are never
// re-scanned, so expansion cannot loop.
func (m Macros) Expand(source, text string) (string, error) {
	return m.expand(source, text, true)
}

// ExpandLenient behaves like Expand but leaves unrecognized ${NAME} tokens
// in place instead of failing.
func (m Macros) ExpandLenient(text string) string {
	expanded, _ := m.expand("", text, false)
	return expanded
}

// expand is the shared single-pass scanner behind Expand and ExpandLenient.
func (m Macros) expand(source, text string, strict bool) (string, error) {
	var builder strings.Builder

	builder.Grow(len(text))

	for {
		start := strings.Index(text, "${")
		if start < 0 {
			builder.WriteString(text)
			break
		}

		end := strings.Index(text[start:], "}")
		if end < 0 {
			// Unterminated token, kept literally.
			builder.WriteString(text)
			break
		}

		end += start
		name := text[start+2 : end]

		builder.WriteString(text[:start])

		if value, found := m[name]; found {
			builder.WriteString(value)
		} else {
			if strict {
				return "", &MacroError{Token: name, Source: source}
			}

			builder.WriteString(text[start : end+1])
		}

		text = text[end+1:]
	}

	return builder.String(), nil
}
