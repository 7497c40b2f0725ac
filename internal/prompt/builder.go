// Package prompt renders the enhanced prompt the ContextManager hands to an
// adapter each iteration: the raw prompt file contents followed by a bounded
// context block built from the stable prefix and the ring-buffered history.
package prompt

import (
	"fmt"
	"strings"
)

// Section is one rendered block of the context history, most-recent-first.
type Section struct {
	Heading string
	Entries []string
}

// Render concatenates raw prompt text with a context block built from the
// stable prefix and the supplied sections, in the order given. Empty
// sections are omitted entirely so an unused ring buffer doesn't leave a
// dangling heading.
func Render(rawPrompt, stablePrefix string, sections ...Section) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(rawPrompt, "\n"))
	b.WriteString("\n")

	if strings.TrimSpace(stablePrefix) != "" {
		b.WriteString("\n---\n")
		b.WriteString(stablePrefix)
		b.WriteString("\n")
	}

	for _, s := range sections {
		if len(s.Entries) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n", s.Heading)
		for _, e := range s.Entries {
			fmt.Fprintf(&b, "- %s\n", e)
		}
	}

	return b.String()
}
