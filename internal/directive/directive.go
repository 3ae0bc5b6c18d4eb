// Package directive holds the process-wide registry of active monitoring
// directives, shared between the command-intake API and every
// CameraWorker. This MUST be a single injected instance,
// never an ambient per-subsystem copy — that was a known historical defect
// (directives silently invisible to workers holding a separate instance).
package directive

import "time"

// Kind enumerates the directive kinds recognised by the pipeline.
type Kind string

const (
	KindObjectDetection   Kind = "object_detection"
	KindActivityDetection Kind = "activity_detection"
	KindSurveillance      Kind = "surveillance"
	KindSceneAnalysis     Kind = "scene_analysis"
	KindAnomaly           Kind = "anomaly"
	KindTracking          Kind = "tracking"
)

// RequiresBaseline reports whether directives of this kind need baseline
// tracking (activity/state-change kinds).
func (k Kind) RequiresBaseline() bool {
	return k == KindActivityDetection
}

// Status is the directive lifecycle state.
type Status string

const (
	StatusActive  Status = "active"
	StatusExpired Status = "expired"
)

// Scope selects which cameras a Directive applies to: either every camera
// ("all") or an explicit id set.
type Scope struct {
	All       bool
	CameraIDs map[string]struct{}
}

// AllCameras returns a Scope matching every camera.
func AllCameras() Scope { return Scope{All: true} }

// ScopeFor returns a Scope matching exactly the given camera ids.
func ScopeFor(ids ...string) Scope {
	s := Scope{CameraIDs: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.CameraIDs[id] = struct{}{}
	}
	return s
}

// Matches reports whether the scope includes cameraID.
func (s Scope) Matches(cameraID string) bool {
	if s.All {
		return true
	}
	_, ok := s.CameraIDs[cameraID]
	return ok
}

// Directive is a user's monitoring request, derived from a natural-language
// command by the (out-of-scope) command parser.
type Directive struct {
	ID               string
	Kind             Kind
	Target           string
	RequiresBaseline bool
	CameraScope      Scope
	CreatedAt        time.Time
	Status           Status
}

// NewDirective constructs a Directive with RequiresBaseline derived from Kind.
func NewDirective(id string, kind Kind, target string, scope Scope) *Directive {
	return &Directive{
		ID:               id,
		Kind:             kind,
		Target:           target,
		RequiresBaseline: kind.RequiresBaseline(),
		CameraScope:      scope,
		CreatedAt:        time.Now(),
		Status:           StatusActive,
	}
}
