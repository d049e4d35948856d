package sctp

import (
	"sync"
	"time"
)

// condWaitTimeout waits on c (which must share its Locker with the
// caller's already-held lock l) until either c is signaled or d elapses.
// sync.Cond has no built-in timeout, so a timer is used to force a
// spurious broadcast once d elapses; the caller is expected to re-check
// its own wait condition and a deadline afterwards (which
// associationTable.awaitEstablished does), so a benign extra wakeup near
// the deadline is harmless.
func condWaitTimeout(c *sync.Cond, l sync.Locker, d time.Duration) {
	timer := time.AfterFunc(d, func() {
		l.Lock()
		c.Broadcast()
		l.Unlock()
	})
	defer timer.Stop()

	c.Wait()
}
