// Package template renders prompt templates with Handlebars-style
// {{variable}} placeholders. Placeholders are converted to Go template
// syntax before execution, and any reference to a variable missing from
// the context fails the render rather than substituting an empty string.
package template

import (
	"fmt"
	"regexp"
	"strings"
	"text/template"
)

// Engine renders prompt templates. The zero value is not usable; construct
// with NewEngine. An Engine is safe for concurrent use.
type Engine struct {
	funcs template.FuncMap
}

// NewEngine creates a template engine with the default helper functions.
func NewEngine() *Engine {
	return &Engine{funcs: defaultFuncs()}
}

// Render executes the template with the given variables. Referencing a
// variable not present in vars is an error, never a silent substitution.
func (e *Engine) Render(templateStr string, vars map[string]any) (string, error) {
	if templateStr == "" {
		return "", ErrEmpty
	}

	converted := convertSyntax(templateStr)

	tmpl, err := template.New("prompt").
		Funcs(e.funcs).
		Option("missingkey=error").
		Parse(converted)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrParse, err)
	}

	if vars == nil {
		vars = map[string]any{}
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("%w: %v", ErrExecute, err)
	}
	return buf.String(), nil
}

// Variables extracts the deduplicated variable names referenced by the
// template, in order of first appearance. Helper names, keywords, and
// literal helper arguments are not variables.
func (e *Engine) Variables(templateStr string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, match := range placeholderPattern.FindAllStringSubmatch(templateStr, -1) {
		for _, field := range strings.Fields(match[1]) {
			if goKeywords[field] || e.funcs[field] != nil || isNumber(field) {
				continue
			}
			if !seen[field] {
				seen[field] = true
				names = append(names, field)
			}
		}
	}
	return names
}

var (
	placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z_][\w ]*)\s*\}\}`)
	simpleVarPattern   = regexp.MustCompile(`\{\{([a-zA-Z_]\w*)\}\}`)
	helperCallPattern  = regexp.MustCompile(`\{\{(\w+) ([a-zA-Z_]\w*)((?: [\w.'"-]+)*)\}\}`)
)

// goKeywords are Go template reserved words that must not be rewritten
// into variable references.
var goKeywords = map[string]bool{
	"if": true, "else": true, "end": true, "range": true, "with": true,
	"define": true, "template": true, "block": true,
}

// convertSyntax rewrites Handlebars-style placeholders to Go template
// syntax: {{variable}} becomes {{.variable}} and {{helper variable args}}
// becomes {{helper .variable args}}. Trailing literal arguments such as
// the width in {{truncate moral 20}} pass through unchanged.
func convertSyntax(input string) string {
	out := simpleVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		name := match[2 : len(match)-2]
		if goKeywords[name] {
			return match
		}
		return "{{." + name + "}}"
	})
	return helperCallPattern.ReplaceAllString(out, "{{${1} .${2}${3}}}")
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	for i, ch := range s {
		if (ch == '-' && i == 0) || ch == '.' {
			continue
		}
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}
