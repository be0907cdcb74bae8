package crash

import "regexp"

// Rule rewrites one known crash-message shape.
type Rule struct {
	Name     string
	Pattern  *regexp.Regexp
	Template string // regexp.Expand template, e.g. "${e}"
}

// Apply returns the rewritten message and whether it changed.
func (r Rule) Apply(msg string) (string, bool) {
	out := r.Pattern.ReplaceAllString(msg, r.Template)
	return out, out != msg
}

// DefaultRules are tried in order; the first rule that changes the message wins.
//
// The chained-context rule cuts the summary at the first ": ", so a summary
// that itself contains ": " is truncated.
var DefaultRules = []Rule{
	{
		// ...'<summary>: ...message: "<detail>"...
		Name:     "chained-context",
		Pattern:  regexp.MustCompile(`^.+'(?P<e>.+?): .+message: "(?P<u>.+)".+$`),
		Template: "${e}. (${u})",
	},
	{
		// ...User("<summary>")...
		Name:     "user-tagged",
		Pattern:  regexp.MustCompile(`^.+User\("(?P<e>.+?)"\).+$`),
		Template: "${e}",
	},
	{
		// panicked at '<summary>', path/to/file.go:12
		// Module cache paths carry "@v1.2.3" and "+incompatible".
		Name:     "plain-panic",
		Pattern:  regexp.MustCompile(`^panicked at '(?P<e>.+?)', [\w\-/.:@+]+$`),
		Template: "${e}",
	},
}

// Normalizer extracts the meaningful part of an unstructured crash message.
type Normalizer struct {
	Rules []Rule
}

// Normalize rewrites raw with the first rule that changes it.
// Messages no rule recognises come back unchanged.
func (n Normalizer) Normalize(raw string) string {
	for _, rule := range n.Rules {
		if out, changed := rule.Apply(raw); changed {
			return out
		}
	}
	return raw
}

// Normalize runs DefaultRules over raw.
func Normalize(raw string) string {
	return Normalizer{Rules: DefaultRules}.Normalize(raw)
}
