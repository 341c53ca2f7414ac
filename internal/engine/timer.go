package engine

// Timer is a one-second-resolution countdown. It never goes negative, fires
// its expiry callback exactly once, and stops itself when it does so; a
// stopped timer ignores further ticks.
type Timer struct {
	remaining int
	stopped   bool
	expired   bool
	onExpire  func()
}

func NewTimer(seconds int, onExpire func()) *Timer {
	if seconds < 0 {
		seconds = 0
	}
	return &Timer{
		remaining: seconds,
		onExpire:  onExpire,
	}
}

// Tick advances the countdown by one second. When the countdown reaches
// zero the expiry callback fires once and the timer stops itself.
func (t *Timer) Tick() {
	if t.stopped || t.expired {
		return
	}
	if t.remaining > 0 {
		t.remaining--
	}
	if t.remaining == 0 {
		t.expired = true
		t.stopped = true
		if t.onExpire != nil {
			t.onExpire()
		}
	}
}

// Stop halts the countdown without firing expiry. Idempotent.
func (t *Timer) Stop() {
	t.stopped = true
}

// Resume re-arms a timer that was stopped before expiring.
func (t *Timer) Resume() {
	if !t.expired {
		t.stopped = false
	}
}

func (t *Timer) Remaining() int {
	return t.remaining
}

func (t *Timer) Expired() bool {
	return t.expired
}
