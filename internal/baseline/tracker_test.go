package baseline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sentrywatch/vms/internal/baseline"
)

func TestTracker_EstablishesAfterThreeConsistentFrames(t *testing.T) {
	tr := baseline.NewTracker(8)

	_, established := tr.Update("dir-1", "person seated in chair", true, 3)
	assert.False(t, established)
	_, established = tr.Update("dir-1", "person seated in the chair", true, 3)
	assert.False(t, established)
	state, established := tr.Update("dir-1", "person seated in a chair", true, 3)

	assert.True(t, established)
	assert.True(t, state.Established)
	assert.True(t, state.PersonWasPresent)
}

func TestTracker_InconsistentFrameResetsCounter(t *testing.T) {
	tr := baseline.NewTracker(8)

	tr.Update("dir-1", "person seated in chair", true, 3)
	tr.Update("dir-1", "completely different empty loading dock", false, 3)
	state, established := tr.Update("dir-1", "completely different empty loading dock", false, 3)

	assert.False(t, established)
	assert.Equal(t, 2, state.ConsistencyCounter)
}

func TestTracker_NeverAutoChangesOnceEstablished(t *testing.T) {
	tr := baseline.NewTracker(8)
	tr.Update("dir-1", "person seated in chair", true, 3)
	tr.Update("dir-1", "person seated in chair", true, 3)
	tr.Update("dir-1", "person seated in chair", true, 3)

	state, established := tr.Update("dir-1", "totally empty room now", false, 3)

	assert.False(t, established)
	assert.True(t, state.Established)
	assert.True(t, state.PersonWasPresent, "established baseline must not mutate on later frames")
}

func TestTracker_ForgetClearsBaselineAndHistory(t *testing.T) {
	tr := baseline.NewTracker(8)
	tr.Update("dir-1", "person seated in chair", true, 3)
	tr.HistoryFor("dir-1").Append(baseline.Entry{SceneDescription: "x"})

	tr.Forget("dir-1")

	assert.Nil(t, tr.BaselineFor("dir-1"))
	assert.Empty(t, tr.HistoryFor("dir-1").Entries())
}

func TestHistory_EvictsOldestOnOverflow(t *testing.T) {
	h := baseline.NewHistory(2)
	h.Append(baseline.Entry{SceneDescription: "first"})
	h.Append(baseline.Entry{SceneDescription: "second"})
	h.Append(baseline.Entry{SceneDescription: "third"})

	entries := h.Entries()
	assert.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].SceneDescription)
	assert.Equal(t, "third", entries[1].SceneDescription)
}
