package prompt

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Render replaces {{variable}} placeholders with values from vars. Values
// are inserted as-is and never expanded again, so a transcript that happens
// to contain "{{...}}" reaches the model verbatim.
func Render(template string, vars map[string]string) (string, error) {
	if missing := missingVars(template, vars); len(missing) > 0 {
		return "", fmt.Errorf("missing template variables: %s", strings.Join(missing, ", "))
	}

	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		return vars[match[2:len(match)-2]]
	}), nil
}

// ExtractVariables returns the distinct placeholder names in order of first use.
func ExtractVariables(template string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if !seen[m[1]] {
			names = append(names, m[1])
			seen[m[1]] = true
		}
	}
	return names
}

func missingVars(template string, vars map[string]string) []string {
	var missing []string
	for _, name := range ExtractVariables(template) {
		if _, ok := vars[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
