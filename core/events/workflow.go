package events

// KindIdleResetElapsed identifies the idle-reset grace period running out.
const KindIdleResetElapsed Kind = "workflow.idle_reset_elapsed"

// IdleResetElapsed marks the end of the grace period after a terminal state.
type IdleResetElapsed struct{ Base }

// NewIdleResetElapsed creates an idle-reset event.
func NewIdleResetElapsed() IdleResetElapsed {
	return IdleResetElapsed{Base: NewBase(KindIdleResetElapsed)}
}
