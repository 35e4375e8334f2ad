package events

import "strings"

const separator = "/"

// Match reports whether topic satisfies pattern. "+" (or "*") matches one
// segment and a final "#" matches the remaining segments, including none.
func Match(pattern, topic string) bool {
	if pattern == topic {
		return true
	}

	patternParts := strings.Split(pattern, separator)
	topicParts := strings.Split(topic, separator)
	pLen, tLen := len(patternParts), len(topicParts)
	pi, ti := 0, 0

	for pi < pLen && ti < tLen {
		part := patternParts[pi]
		if part == "#" {
			return pi == pLen-1
		}
		if part != topicParts[ti] && part != "+" && part != "*" {
			return false
		}
		pi++
		ti++
	}
	if pi == pLen && ti == tLen {
		return true
	}
	// "a/b/#" also matches "a/b"
	if pi == pLen-1 && patternParts[pi] == "#" {
		return ti == tLen
	}
	return false
}

// ValidPattern reports whether "#" only appears as the last segment.
func ValidPattern(pattern string) bool {
	if pattern == "" {
		return false
	}
	parts := strings.Split(pattern, separator)
	for i, part := range parts {
		if part == "#" && i != len(parts)-1 {
			return false
		}
	}
	return true
}
