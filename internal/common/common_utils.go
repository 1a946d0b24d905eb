package common

import "strings"

// TeamSet builds a lookup for the recognised-team allow-list.
func TeamSet(teams []string) map[string]struct{} {
	set := make(map[string]struct{}, len(teams))
	for _, t := range teams {
		if t = strings.TrimSpace(t); t != "" {
			set[t] = struct{}{}
		}
	}
	return set
}
