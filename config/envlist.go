package config

import (
	"strings"
)

// ParseEnvList expands an envlist declaration into the list of
// environment names. Names are separated by commas or newlines and a
// brace group generates the product of its alternatives:
//
//	envlist = py{38,39}-{unit,integration}, docs
//
// expands to py38-unit, py38-integration, py39-unit, py39-integration
// and docs. Duplicates are dropped, first occurrence wins.
func ParseEnvList(s string) []string {
	result := make([]string, 0)
	seen := make(map[string]bool)
	for _, line := range strings.Split(s, "\n") {
		if pos := strings.Index(line, "#"); pos != -1 {
			line = line[0:pos]
		}
		for _, token := range strings.Split(line, ",") {
			token = strings.TrimSpace(token)
			if len(token) == 0 {
				continue
			}
			for _, name := range expandBraces(token) {
				if !seen[name] {
					seen[name] = true
					result = append(result, name)
				}
			}
		}
	}
	return result
}

// expand the first brace group and recurse on the rest
func expandBraces(token string) []string {
	start := strings.IndexByte(token, '{')
	if start == -1 {
		return []string{token}
	}
	end := strings.IndexByte(token[start:], '}')
	if end == -1 {
		return []string{token}
	}
	end += start

	result := make([]string, 0)
	for _, alt := range strings.Split(token[start+1:end], ",") {
		alt = strings.TrimSpace(alt)
		for _, rest := range expandBraces(token[end+1:]) {
			result = append(result, token[0:start]+alt+rest)
		}
	}
	return result
}
