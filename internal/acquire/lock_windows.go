//go:build windows

package acquire

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fjelltone/themepatch/internal/messages"
)

var lockSleep = time.Sleep

var (
	lockWaitTimeout = 30 * time.Second
	lockPollEvery   = 100 * time.Millisecond
)

// withFileLock serializes via an exclusively-created lock file. Windows has
// no flock; O_EXCL creation is the portable equivalent for a once-only
// download guard. A stale lock left by a crashed process times the waiter
// out rather than deadlocking it.
func withFileLock(path string, fn func() error) error {
	deadline := time.Now().Add(lockWaitTimeout)
	for {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_ = file.Close()
			defer func() { _ = os.Remove(path) }()
			return fn()
		}
		if !errors.Is(err, os.ErrExist) {
			return fmt.Errorf(messages.AcquireOpenLockFmt, path, err)
		}
		if time.Now().After(deadline) {
			return fmt.Errorf(messages.AcquireLockTimeoutFmt, lockWaitTimeout)
		}
		lockSleep(lockPollEvery)
	}
}
