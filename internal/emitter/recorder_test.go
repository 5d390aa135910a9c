package emitter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecorder_CollectsEventsInOrder(t *testing.T) {
	r := NewRecorder()
	r.Emit(StageEvent{Stage: StageRetrieval, Status: StatusStart})
	r.Emit(StageEvent{Stage: StageRetrieval, Status: StatusSuccess})

	got := r.Events()
	require.Len(t, got, 2)
	require.Equal(t, StatusStart, got[0].Status)
	require.Equal(t, StatusSuccess, got[1].Status)
}

func TestRecorder_FatalIsRecorded(t *testing.T) {
	r := NewRecorder()
	require.Nil(t, r.FatalError())
	r.Fatal(errTest("oops"))
	require.EqualError(t, r.FatalError(), "oops")
}
