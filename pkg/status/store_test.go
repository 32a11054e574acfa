package status_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/pipedeck/pkg/domain"
	"github.com/aretw0/pipedeck/pkg/progress"
	"github.com/aretw0/pipedeck/pkg/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countProgress(lines []string) int {
	n := 0
	for _, l := range lines {
		if progress.IsProgress(l) {
			n++
		}
	}
	return n
}

func TestStore_TwoProgressEventsLeaveOneLine(t *testing.T) {
	s := status.New()
	require.NoError(t, s.Append("Connecting"))
	require.NoError(t, s.Append("Uploading report.pdf"))
	require.NoError(t, s.ReplaceProgress("10%"))
	require.NoError(t, s.ReplaceProgress("20%"))

	snap := s.Snapshot()
	assert.Equal(t, []string{"Connecting", "Uploading report.pdf", "[PROGRESS] 20%"}, snap.Lines)
	assert.Equal(t, 1, countProgress(snap.Lines))

	v, ok := snap.Progress()
	assert.True(t, ok)
	assert.Equal(t, "20%", v)
}

func TestStore_InterleavedKeepsPlainOrder(t *testing.T) {
	s := status.New()
	steps := []struct {
		progress bool
		text     string
	}{
		{false, "a"},
		{true, "1%"},
		{false, "b"},
		{true, "5%"},
		{true, "9%"},
		{false, "c"},
		{true, "50%"},
	}
	for _, st := range steps {
		if st.progress {
			require.NoError(t, s.ReplaceProgress(st.text))
		} else {
			require.NoError(t, s.Append(st.text))
		}
	}

	snap := s.Snapshot()
	assert.Equal(t, []string{"a", "b", "c", "[PROGRESS] 50%"}, snap.Lines)
	assert.Equal(t, "[PROGRESS] 50%", snap.Last())
}

func TestStore_SnapshotsAreImmutable(t *testing.T) {
	s := status.New()
	require.NoError(t, s.Append("one"))
	require.NoError(t, s.ReplaceProgress("1%"))
	before := s.Snapshot()

	require.NoError(t, s.Append("two"))
	require.NoError(t, s.ReplaceProgress("2%"))

	assert.Equal(t, []string{"one", "[PROGRESS] 1%"}, before.Lines)
	assert.Equal(t, []string{"one", "two", "[PROGRESS] 2%"}, s.Snapshot().Lines)
	assert.Greater(t, s.Snapshot().Seq, before.Seq)
}

func TestStore_DropsBlankLines(t *testing.T) {
	s := status.New()
	require.NoError(t, s.Append(""))
	require.NoError(t, s.Append("   "))
	require.NoError(t, s.Append("kept"))
	assert.Equal(t, []string{"kept"}, s.Snapshot().Lines)
	assert.Equal(t, "kept", s.Snapshot().Text())
}

func TestStore_CompleteOnce(t *testing.T) {
	s := status.New()
	require.NoError(t, s.SetPhase(domain.PhaseStreaming))
	assert.False(t, s.IsDone())

	res := &domain.ExtractedResult{DirectLink: "https://x"}
	require.NoError(t, s.Complete(domain.PhaseSuccess, res, 0, ""))
	assert.ErrorIs(t, s.Complete(domain.PhaseFailed, nil, 1, "late"), domain.ErrAlreadyComplete)

	snap := s.Snapshot()
	assert.True(t, snap.Done)
	assert.Equal(t, domain.PhaseSuccess, snap.Phase)
	assert.Same(t, res, snap.Result)

	assert.ErrorIs(t, s.Append("after"), domain.ErrAlreadyComplete)
	assert.ErrorIs(t, s.ReplaceProgress("1%"), domain.ErrAlreadyComplete)
	assert.ErrorIs(t, s.SetPhase(domain.PhaseStreaming), domain.ErrAlreadyComplete)

	select {
	case <-s.Done():
	default:
		t.Fatal("done channel should be closed")
	}
}

func TestStore_Wait(t *testing.T) {
	s := status.New()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := s.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	go func() {
		_ = s.Append("bye")
		_ = s.Complete(domain.PhaseFailed, nil, 2, "boom")
	}()
	snap, err := s.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, snap.ExitCode)
	assert.Equal(t, "bye", snap.Last())
}

func TestStore_ConcurrentReaders(t *testing.T) {
	s := status.New()
	var wg sync.WaitGroup
	stop := make(chan struct{})

	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := s.Snapshot()
				assert.LessOrEqual(t, countProgress(snap.Lines), 1)
			}
		}()
	}

	for i := range 200 {
		if i%3 == 0 {
			_ = s.Append("line")
		} else {
			_ = s.ReplaceProgress("x")
		}
	}
	close(stop)
	wg.Wait()
}
