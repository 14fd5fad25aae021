package utils

import "strings"

// MaskEmail returns masked email for safe display in logs.
func MaskEmail(email string) string {
	email = strings.TrimSpace(email)
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}
	local := parts[0]
	switch {
	case len(local) > 2:
		local = local[:1] + strings.Repeat("*", len(local)-2) + local[len(local)-1:]
	case len(local) == 2:
		local = local[:1] + "*"
	}
	return local + "@" + parts[1]
}

// NormalizeIDs trims ids, drops empty entries and duplicates, and keeps the first-seen order.
func NormalizeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
