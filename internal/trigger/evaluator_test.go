package trigger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoaded(lectureID string, triggers ...Trigger) (*Store, *[]Fired, *Evaluator) {
	store := NewStore()
	store.Load(lectureID, triggers)
	var fired []Fired
	ev := NewEvaluator(store, func(f Fired) { fired = append(fired, f) })
	return store, &fired, ev
}

func TestEvaluatorFiresOnceAtFirstDueTick(t *testing.T) {
	_, fired, ev := newLoaded("l1",
		Trigger{Time: 5, Action: "c1", Type: Code},
		Trigger{Time: 10, Action: "q1", Type: Quiz},
	)

	firedAt := map[string]float64{}
	for _, tick := range []float64{0, 3, 6, 9, 12, 15} {
		for _, f := range ev.Evaluate(tick) {
			firedAt[f.Action] = tick
		}
	}

	require.Len(t, *fired, 2)
	assert.Equal(t, map[string]float64{"c1": 6, "q1": 12}, firedAt)
}

func TestEvaluatorBackwardSeekDoesNotRefire(t *testing.T) {
	_, fired, ev := newLoaded("l1", Trigger{Time: 5, Action: "c1", Type: Code})

	ev.Evaluate(6)
	for _, tick := range []float64{20, 2, 6} {
		ev.Evaluate(tick)
	}
	assert.Len(t, *fired, 1)
}

func TestEvaluatorJumpFiresInAscendingOrder(t *testing.T) {
	_, fired, ev := newLoaded("l1",
		Trigger{Time: 30, Action: "c"},
		Trigger{Time: 10, Action: "a"},
		Trigger{Time: 20, Action: "b"},
		Trigger{Time: 40, Action: "d"},
	)

	got := ev.Evaluate(35)
	require.Len(t, got, 3)
	var order []string
	for _, f := range *fired {
		order = append(order, f.Action)
		assert.Equal(t, "l1", f.LectureID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestEvaluatorExactTimeIsDue(t *testing.T) {
	_, _, ev := newLoaded("l1", Trigger{Time: 5, Action: "c1"})
	assert.Empty(t, ev.Evaluate(4.999))
	assert.Len(t, ev.Evaluate(5), 1)
}

func TestEvaluatorEmptyStore(t *testing.T) {
	ev := NewEvaluator(NewStore(), nil)
	assert.Empty(t, ev.Evaluate(100))
}

func TestLectureSwitchResetsTriggers(t *testing.T) {
	list := []Trigger{{Time: 5, Action: "c1", Type: Code}}
	store, fired, ev := newLoaded("A", list...)
	ev.Evaluate(6)
	require.Len(t, *fired, 1)
	assert.Equal(t, 0, store.Pending())

	// B's list carries A's fired flag, it must still start pending
	carried := store.Triggers()
	require.True(t, carried[0].Triggered)
	store.Reset()
	assert.Equal(t, StateEmpty, store.State())
	store.Load("B", carried)

	assert.Equal(t, StateLoaded, store.State())
	assert.Equal(t, "B", store.LectureID())
	for _, tr := range store.Triggers() {
		assert.False(t, tr.Triggered)
	}
	got := ev.Evaluate(6)
	require.Len(t, got, 1)
	assert.Equal(t, "B", got[0].LectureID)
}

func TestStoreLoadCopiesInput(t *testing.T) {
	input := []Trigger{{Time: 1, Action: "a"}}
	store := NewStore()
	store.Load("l1", input)
	NewEvaluator(store, nil).Evaluate(2)
	assert.False(t, input[0].Triggered)
}
