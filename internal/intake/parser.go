// Package intake turns a user's natural-language monitoring request into
// a structured directive.Kind + target. The real command parser is an
// external collaborator (spec.md §1: "only its output schema is consumed
// here") — this package is the pluggable seam plus a heuristic stand-in
// for environments where no external parser is wired, mirroring the
// vision/reasoning packages' Client-interface-plus-mock-implementation
// shape.
package intake

import "strings"

// Result is the structured output a command parser produces from free
// text — the shape POST /directives consumes regardless of which parser
// implementation is behind it.
type Result struct {
	Kind             string
	Target           string
	RequiresBaseline bool
}

// Parser turns free text into a Result. The HTTP layer depends only on
// this interface, never on a concrete parser, so a real NL service can be
// substituted without touching internal/api.
type Parser interface {
	Parse(text string) Result
}

// kindKeywords maps a directive kind to the phrases that heuristically
// select it. Checked in order; first match wins.
var kindKeywords = []struct {
	kind     string
	needsAny []string
}{
	{"activity_detection", []string{"leaves", "leave", "enters", "arrives", "disappears", "no longer", "state change"}},
	{"object_detection", []string{"spot", "detect", "find", "see a", "appears"}},
	{"anomaly", []string{"unusual", "anomaly", "anomalous", "out of place"}},
	{"tracking", []string{"track", "follow", "movement of"}},
	{"scene_analysis", []string{"describe", "narrate", "what is happening"}},
}

// HeuristicParser is a deterministic, dependency-free Parser: keyword
// matching against the directive kind vocabulary in spec.md §3, used when
// no external NL command parser is configured.
type HeuristicParser struct{}

func (HeuristicParser) Parse(text string) Result {
	lower := strings.ToLower(text)

	kind := "surveillance"
	for _, k := range kindKeywords {
		for _, phrase := range k.needsAny {
			if strings.Contains(lower, phrase) {
				kind = k.kind
				break
			}
		}
		if kind != "surveillance" {
			break
		}
	}

	return Result{
		Kind:             kind,
		Target:           strings.TrimSpace(text),
		RequiresBaseline: kind == "activity_detection",
	}
}
