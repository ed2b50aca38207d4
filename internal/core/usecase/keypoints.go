package usecase

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	ordinalMarker = regexp.MustCompile(`^\d+\.\s*`)
	bulletMarker  = regexp.MustCompile(`^[-*]\s*`)
	jsonArray     = regexp.MustCompile(`(?s)\[.*\]`)
)

// CleanKeyPoints turns a numbered or bulleted list into plain strings.
// Applying it to its own output returns the same list.
func CleanKeyPoints(raw string) []string {
	points := make([]string, 0, 8)
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		point := ordinalMarker.ReplaceAllString(line, "")
		point = bulletMarker.ReplaceAllString(point, "")
		point = strings.TrimSpace(point)
		if point == "" {
			continue
		}
		points = append(points, point)
	}
	return points
}

// ParseKeyPoints accepts a JSON array of strings anywhere in the response and
// falls back to line cleaning.
func ParseKeyPoints(raw string) []string {
	if match := jsonArray.FindString(raw); match != "" {
		var items []string
		if err := json.Unmarshal([]byte(match), &items); err == nil {
			return CleanKeyPoints(strings.Join(items, "\n"))
		}
	}
	return CleanKeyPoints(raw)
}
