package workflow

import (
	"sync"
	"time"
)

// idleResetTimer is the single pending return-to-idle action. Arming
// replaces any previously pending fire; there is never more than one.
type idleResetTimer struct {
	mu    sync.Mutex
	timer *time.Timer
}

func (t *idleResetTimer) Arm(delay time.Duration, fire func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(delay, fire)
}

// Cancel stops any pending fire. A fire that already started delivering is
// not waited for; the dispatcher's phase guard makes it a no-op.
func (t *idleResetTimer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
