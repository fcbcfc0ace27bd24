package utils

import "strings"

// SplitTags turns a comma-separated tag string into a trimmed, de-duplicated list.
// Empty entries are dropped; order of first appearance is kept.
func SplitTags(raw string) []string {
	tags := []string{}
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		t := strings.TrimSpace(part)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		tags = append(tags, t)
	}
	return tags
}
