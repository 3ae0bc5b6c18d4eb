package baseline

import (
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// similarityThreshold is the Jaccard-overlap cutoff two scene descriptions
// must clear, combined with matching person_present flags, to count as
// "consistent" while a baseline is forming. The exact metric is an
// implementation choice; only the three-consecutive-frames contract is
// fixed.
const similarityThreshold = 0.6

// MaxTrackedDirectives bounds the number of concurrent (camera, directive)
// pairs one CameraWorker holds baseline/history state for, so a camera
// churning through many short-lived directives cannot grow its own memory
// without bound.
const MaxTrackedDirectives = 256

// Tracker owns BaselineTracker + ObservationHistory state for every
// directive active on a single camera. It is created per CameraWorker —
// never shared — and is not safe for concurrent use from more than one
// goroutine, matching the ingest loop's single-threaded-per-camera
// ownership.
type Tracker struct {
	states     *lru.Cache[string, *State]
	histories  *lru.Cache[string, *History]
	historyLen int
}

func NewTracker(historyWindow int) *Tracker {
	states, _ := lru.New[string, *State](MaxTrackedDirectives)
	histories, _ := lru.New[string, *History](MaxTrackedDirectives)
	return &Tracker{states: states, histories: histories, historyLen: historyWindow}
}

// BaselineFor returns the current baseline state for directiveID, or
// nil if none has been created yet.
func (t *Tracker) BaselineFor(directiveID string) *State {
	s, ok := t.states.Get(directiveID)
	if !ok {
		return nil
	}
	return s
}

// HistoryFor returns (creating if necessary) the observation history for
// directiveID.
func (t *Tracker) HistoryFor(directiveID string) *History {
	h, ok := t.histories.Get(directiveID)
	if !ok {
		h = NewHistory(t.historyLen)
		t.histories.Add(directiveID, h)
	}
	return h
}

// Forget destroys all baseline/history state for directiveID: called when
// the directive ends or the camera stops.
func (t *Tracker) Forget(directiveID string) {
	t.states.Remove(directiveID)
	t.histories.Remove(directiveID)
}

// TrackedDirectiveIDs lists every directive this tracker currently holds
// baseline or history state for, so a worker can reconcile against the
// registry and clear entries for directives that no longer exist.
func (t *Tracker) TrackedDirectiveIDs() []string {
	seen := make(map[string]struct{})
	for _, id := range t.states.Keys() {
		seen[id] = struct{}{}
	}
	for _, id := range t.histories.Keys() {
		seen[id] = struct{}{}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	return ids
}

// Update advances the forming/established baseline for directiveID given a
// new observation, and reports whether this call is the one that just
// established it (so the caller can emit a BaselineEstablished system
// notification exactly once).
func (t *Tracker) Update(directiveID, sceneDescription string, personPresent bool, stabilityFrames int) (state *State, justEstablished bool) {
	if stabilityFrames <= 0 {
		stabilityFrames = StabilityFrames
	}

	s, ok := t.states.Get(directiveID)
	if !ok {
		s = &State{StateDescription: sceneDescription, PersonWasPresent: personPresent, ConsistencyCounter: 1}
		t.states.Add(directiveID, s)
		if stabilityFrames <= 1 {
			s.Established = true
			s.EstablishedAt = time.Now()
			return s, true
		}
		return s, false
	}

	if s.Established {
		return s, false
	}

	if consistent(s.StateDescription, sceneDescription) && s.PersonWasPresent == personPresent {
		s.ConsistencyCounter++
	} else {
		s.ConsistencyCounter = 1
		s.StateDescription = sceneDescription
		s.PersonWasPresent = personPresent
	}

	if s.ConsistencyCounter >= stabilityFrames {
		s.Established = true
		s.EstablishedAt = time.Now()
		return s, true
	}
	return s, false
}

// consistent reports whether two scene descriptions are semantically
// consistent: their normalized token sets have Jaccard overlap >= 0.6.
func consistent(a, b string) bool {
	sa, sb := tokenSet(a), tokenSet(b)
	if len(sa) == 0 && len(sb) == 0 {
		return true
	}
	inter, union := 0, len(sa)
	for tok := range sb {
		if _, ok := sa[tok]; ok {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return true
	}
	return float64(inter)/float64(union) >= similarityThreshold
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f == "" {
			continue
		}
		set[f] = struct{}{}
	}
	return set
}
