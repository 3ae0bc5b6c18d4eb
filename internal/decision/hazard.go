package decision

import (
	"regexp"
	"strings"
)

// HazardKeywords is the Layer-A hazard vocabulary. "unusual" and "anomaly"
// carry the same force as "weapon" here, which is a deliberately tunable
// policy choice — left as a var, not a const, so a deployment can trim it
// without a code change.
var HazardKeywords = []string{
	"weapon", "gun", "knife", "violence", "fight", "attack", "threat",
	"dangerous", "hazard", "fire", "smoke", "blood", "injury", "fall",
	"accident", "emergency", "suspicious", "intruder", "break", "damage",
	"vandal", "unusual", "anomaly",
}

var wordBoundaryCache = map[string]*regexp.Regexp{}

func init() {
	for _, kw := range HazardKeywords {
		wordBoundaryCache[kw] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
	}
}

// MatchHazardKeyword scans text for the first hazard keyword it contains
// (case-insensitive, word-boundary), returning it and true, or ("", false)
// if none matched.
func MatchHazardKeyword(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, kw := range HazardKeywords {
		if wordBoundaryCache[kw].MatchString(lower) {
			return kw, true
		}
	}
	return "", false
}
