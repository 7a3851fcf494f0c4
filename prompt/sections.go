package prompt

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/becomeliminal/strata-go-sdk/core"
)

// Data section labels. Untrusted content appears in the assembled prompt
// only under one of these labels, one JSON-quoted line per entry.
const (
	SectionContext   = "CONTEXT_DATA"
	SectionNegatives = "NEGATIVE_EXAMPLES"
	SectionTools     = "TOOLS_DATA"
)

var (
	toolNameDisallowed = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)
	roleAllowlist      = map[string]bool{
		core.RoleUser:      true,
		core.RoleAssistant: true,
		core.RoleSystem:    true,
	}
)

// SanitizeToolName filters a tool name through the allow-list pattern
// (letters, digits, underscore, dot, dash); every disallowed run becomes
// a single underscore. An empty result becomes "tool".
func SanitizeToolName(name string) string {
	cleaned := toolNameDisallowed.ReplaceAllString(strings.TrimSpace(name), "_")
	if cleaned == "" {
		return "tool"
	}
	return cleaned
}

// sanitizeText strips carriage returns and collapses line breaks so a
// description cannot smuggle new prompt lines.
func sanitizeText(text string) string {
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	return strings.TrimSpace(text)
}

// normalizeRole maps a stored role onto the allowlist; anything else is
// labeled "unknown" rather than passed through.
func normalizeRole(role string) string {
	role = strings.ToLower(strings.TrimSpace(role))
	if roleAllowlist[role] {
		return role
	}
	return "unknown"
}

// renderSection produces a labeled data block. Every entry is serialized
// to a single JSON line, so a payload containing a role prefix or an
// override instruction remains quoted, inert data. Returns "" for an
// empty entry list.
func renderSection(label string, entries []interface{}) string {
	if len(entries) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(label)
	b.WriteString(":")
	for _, entry := range entries {
		payload, err := json.Marshal(entry)
		if err != nil {
			// Marshal of maps/strings built here cannot fail; guard
			// anyway with a quoted placeholder rather than raw text.
			payload = []byte(`"<unrenderable>"`)
		}
		b.WriteString("\n  - ")
		b.Write(payload)
	}
	return b.String()
}

// contextEntries converts memory items into section entries.
func contextEntries(items []core.MemoryItem) []interface{} {
	entries := make([]interface{}, 0, len(items))
	for _, item := range items {
		entries = append(entries, map[string]string{
			"role":    normalizeRole(item.Role),
			"content": item.Content,
		})
	}
	return entries
}

// negativeEntries converts negative example texts into section entries.
func negativeEntries(negatives []string) []interface{} {
	entries := make([]interface{}, 0, len(negatives))
	for _, n := range negatives {
		entries = append(entries, sanitizeText(n))
	}
	return entries
}

// toolEntries converts tool specs into sanitized section entries for the
// textual fallback channel.
func toolEntries(tools []core.ToolSpec) []interface{} {
	entries := make([]interface{}, 0, len(tools))
	for _, t := range tools {
		entries = append(entries, map[string]interface{}{
			"name":        SanitizeToolName(t.Name),
			"description": sanitizeText(t.Description),
			"parameters":  t.InputSchema,
		})
	}
	return entries
}
