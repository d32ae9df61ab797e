package stringsutil

import "strings"

// SplitList splits a delimited list such as "recall@3, precision@5,," into its
// trimmed, non-empty items.
func SplitList(s, sep string) []string {
	var result []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

// Dedupe keeps the first occurrence of every item, preserving order.
func Dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		result = append(result, item)
	}
	return result
}
