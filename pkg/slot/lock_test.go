package slot

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/pipedeck/pkg/domain"
	"github.com/aretw0/pipedeck/pkg/runner"
)

type nopStarter struct{}

func (nopStarter) Start(ctx context.Context, slot string, req domain.ActionRequest) *runner.Run {
	return nil
}

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(nopStarter{})
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		name := fmt.Sprintf("slot-%d", i)
		_ = mgr.Cancel(ctx, name)
		_ = mgr.Teardown(ctx, name)
	}

	lockCount := len(mgr.locks)
	if lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Teardown", lockCount)
	}
}
