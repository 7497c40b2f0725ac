// Package completion implements the PromptCompletionDetector: a pure check
// of whether a prompt document contains the completion marker.
package completion

import "regexp"

// DefaultPattern requires the marker to appear inside a checked checkbox on
// its own line, e.g. "- [x] TASK_COMPLETE", rather than bare anywhere in the
// text — avoiding false positives from a template example mentioning the
// literal marker word without meaning it.
const DefaultPattern = `(?m)^\s*-\s\[x\]\s.*TASK_COMPLETE`

// Detector checks prompt text for the completion marker using a configured
// regular expression.
type Detector struct {
	re *regexp.Regexp
}

// New compiles pattern into a Detector. An empty pattern uses DefaultPattern.
func New(pattern string) (*Detector, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &Detector{re: re}, nil
}

// Check reports whether promptText contains the completion marker.
func (d *Detector) Check(promptText string) bool {
	return d.re.MatchString(promptText)
}
