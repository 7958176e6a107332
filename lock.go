package depot

const (
	// SystemLockBit is held by Update while a system runs.
	SystemLockBit uint32 = 0
	// MaxLockBits bounds the lock bits usable at once.
	MaxLockBits uint32 = 64

	firstScanLockBit uint32 = 8
)

func (l *lockSet) add(bit uint32) {
	l.bits.Mark(bit)
}

// remove clears bit and reports whether that released the last lock.
func (l *lockSet) remove(bit uint32) bool {
	if !l.has(bit) {
		return false
	}
	l.bits.Unmark(bit)
	return !l.locked()
}

func (l *lockSet) has(bit uint32) bool {
	return l.bits.Contains(bit)
}

func (l *lockSet) locked() bool {
	return !l.bits.IsEmpty()
}

// free returns the lowest unused bit at or above firstScanLockBit.
func (l *lockSet) free() uint32 {
	for bit := firstScanLockBit; bit < MaxLockBits; bit++ {
		if !l.has(bit) {
			return bit
		}
	}
	panic("depot: every lock bit is in use")
}

func (w *world) Locked() bool {
	return w.locks.locked()
}

// AddLock opens a safety window under bit. Direct structural changes fail
// until every bit is removed again.
func (w *world) AddLock(bit uint32) {
	w.locks.add(bit)
}

// RemoveLock clears bit. When it was the last one the window closes and the
// command buffer is flushed.
func (w *world) RemoveLock(bit uint32) error {
	if !w.locks.remove(bit) {
		return nil
	}
	return w.buffer.Flush()
}

// Scan runs fn inside a safety window of its own and flushes buffered
// changes afterwards if no other window is still open.
func (w *world) Scan(fn func() error) error {
	bit := w.locks.free()
	w.AddLock(bit)
	err := fn()
	if ferr := w.RemoveLock(bit); err == nil {
		err = ferr
	}
	return err
}

func (w *world) guard(op string) error {
	if w.locks.locked() {
		return LockedStorageError{Op: op}
	}
	return nil
}
