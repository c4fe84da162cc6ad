package metrics

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderStats(t *testing.T) {
	recorder := NewRecorder()

	recorder.Record("completion", 100)
	recorder.Record("completion", 300)
	recorder.Record("completion", 200)

	stats := recorder.Snapshot()["completion"]
	assert.Equal(t, 200.0, stats.Last)
	assert.Equal(t, 200.0, stats.Avg)
	assert.Equal(t, 100.0, stats.Min)
	assert.Equal(t, 300.0, stats.Max)
	assert.Equal(t, 3, stats.Count)
}

func TestRecorderEvictsOldestPastWindow(t *testing.T) {
	recorder := NewRecorder()

	// One spike followed by a full window of small samples: the spike must
	// fall out of every aggregate.
	recorder.Record("completion", 10000)
	for i := 0; i < WindowSize; i++ {
		recorder.Record("completion", 50)
	}

	stats := recorder.Snapshot()["completion"]
	assert.Equal(t, WindowSize, stats.Count)
	assert.Equal(t, 50.0, stats.Max)
	assert.Equal(t, 50.0, stats.Avg)
}

func TestRecorderCategoriesAreIndependent(t *testing.T) {
	recorder := NewRecorder()

	recorder.Record("completion", 100)
	recorder.Record("turn_total", 500)

	snapshot := recorder.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, 100.0, snapshot["completion"].Last)
	assert.Equal(t, 500.0, snapshot["turn_total"].Last)
}

func TestRecorderObserve(t *testing.T) {
	recorder := NewRecorder()

	recorder.Observe("chat_request", 250*time.Millisecond)

	stats := recorder.Snapshot()["chat_request"]
	assert.InDelta(t, 250.0, stats.Last, 0.001)
}

func TestRecorderConcurrentRecords(t *testing.T) {
	recorder := NewRecorder()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			category := fmt.Sprintf("cat-%d", i%4)
			for j := 0; j < 200; j++ {
				recorder.Record(category, float64(j))
			}
		}(i)
	}
	wg.Wait()

	snapshot := recorder.Snapshot()
	require.Len(t, snapshot, 4)
	for _, stats := range snapshot {
		assert.Equal(t, WindowSize, stats.Count)
	}
}

func TestReporterCycleSkipsEmptyCategories(t *testing.T) {
	recorder := NewRecorder()
	reporter := NewReporter(recorder).WithInterval(time.Minute)

	assert.NotPanics(t, func() {
		reporter.reportOnce()
	})
}
