package pkg

import "strings"

// ContainsFold check source have target, ignore case and surrounding spaces
func ContainsFold(slice []string, val string) bool {
	val = strings.TrimSpace(val)
	if val == "" {
		return false
	}
	for _, v := range slice {
		if strings.EqualFold(strings.TrimSpace(v), val) {
			return true
		}
	}
	return false
}
