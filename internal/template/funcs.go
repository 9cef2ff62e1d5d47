package template

import (
	"strings"
	"text/template"
)

// defaultFuncs returns the built-in helper functions available inside
// prompt templates.
func defaultFuncs() template.FuncMap {
	return template.FuncMap{
		"upper":    strings.ToUpper,
		"lower":    strings.ToLower,
		"trim":     strings.TrimSpace,
		"truncate": truncate,
	}
}

// truncate cuts a string to maxLen, appending an ellipsis when there is
// room for one.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
