package diagnostics

import (
	"regexp"
	"strings"
)

// noqaPattern matches a trailing `# noqa` or `# noqa: CODE1,CODE2` comment.
// Suppression lives only here, in the publisher: the binder never inspects
// source text, so a `# noqa` comment can silence a finding regardless of
// which component produced it.
var noqaPattern = regexp.MustCompile(`#\s*noqa(?::\s*([A-Za-z0-9_\-,\s]+))?\s*$`)

// Suppressions indexes which lines of a document carry a `# noqa` comment,
// and which codes (if any) that comment restricts itself to. A bare
// `# noqa` with no code list suppresses every finding on that line.
type Suppressions struct {
	// lineCodes maps a 1-indexed line number to the set of codes it
	// suppresses; a present-but-empty set means "suppress everything".
	lineCodes map[int]map[string]bool
}

// ParseSuppressions scans source line by line for `# noqa` comments.
func ParseSuppressions(source []byte) *Suppressions {
	s := &Suppressions{lineCodes: map[int]map[string]bool{}}
	lines := strings.Split(string(source), "\n")
	for i, line := range lines {
		m := noqaPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		lineNum := i + 1
		if m[1] == "" {
			s.lineCodes[lineNum] = map[string]bool{}
			continue
		}
		codes := map[string]bool{}
		for _, part := range strings.Split(m[1], ",") {
			code := strings.TrimSpace(part)
			if code != "" {
				codes[code] = true
			}
		}
		s.lineCodes[lineNum] = codes
	}
	return s
}

// Suppresses reports whether a finding with the given code, anchored at
// line, is silenced by a `# noqa` comment on that line.
func (s *Suppressions) Suppresses(line int, code string) bool {
	codes, ok := s.lineCodes[line]
	if !ok {
		return false
	}
	if len(codes) == 0 {
		return true // bare `# noqa`
	}
	return codes[code]
}
