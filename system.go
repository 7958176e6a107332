package depot

import (
	"fmt"
	"slices"

	"go.uber.org/zap"
)

const defaultGroup = "default"

type systemEntry struct {
	sys     System
	opts    SystemOptions
	seq     int
	enabled bool
}

// AddSystem registers sys. Systems run in ascending priority; equal
// priorities keep registration order.
func (w *world) AddSystem(sys System, opts SystemOptions) error {
	if opts.Name == "" {
		opts.Name = fmt.Sprintf("%T", sys)
	}
	if opts.Group == "" {
		opts.Group = defaultGroup
	}
	for _, entry := range w.systems {
		if entry.opts.Name == opts.Name {
			return fmt.Errorf("system %q already registered", opts.Name)
		}
	}
	if initializer, ok := sys.(Initializer); ok {
		if err := initializer.Init(w); err != nil {
			return fmt.Errorf("init system %q: %w", opts.Name, err)
		}
	}

	w.systems = append(w.systems, &systemEntry{
		sys:     sys,
		opts:    opts,
		seq:     w.nextSeq,
		enabled: !opts.Disabled,
	})
	w.nextSeq++
	slices.SortStableFunc(w.systems, func(a, b *systemEntry) int {
		switch {
		case a.opts.Priority < b.opts.Priority:
			return -1
		case a.opts.Priority > b.opts.Priority:
			return 1
		}
		return a.seq - b.seq
	})
	return nil
}

func (w *world) EnableSystem(name string, enabled bool) error {
	for _, entry := range w.systems {
		if entry.opts.Name == name {
			entry.enabled = enabled
			return nil
		}
	}
	return fmt.Errorf("system %q is not registered", name)
}

// Update runs every enabled system, optionally only those in groups. Each
// system runs inside its own safety window; the command buffer is flushed as
// soon as it returns, so the next system sees its structural changes.
//
// A failing system has its buffered changes discarded. If it implements
// ErrorHandler and OnError returns nil the update goes on, otherwise the
// error stops it.
func (w *world) Update(dt float64, groups ...string) error {
	systems := slices.Clone(w.systems)
	for _, entry := range systems {
		if !entry.enabled {
			continue
		}
		if len(groups) > 0 && !slices.Contains(groups, entry.opts.Group) {
			continue
		}
		if err := w.runSystem(entry, dt); err != nil {
			return err
		}
	}
	return nil
}

func (w *world) runSystem(entry *systemEntry, dt float64) error {
	w.AddLock(SystemLockBit)
	err := entry.sys.Update(w, dt)
	if err != nil {
		w.buffer.Clear()
	}
	flushErr := w.RemoveLock(SystemLockBit)

	if err != nil {
		w.logger.Error("system update failed",
			zap.String("system", entry.opts.Name),
			zap.Error(err),
		)
		if handler, ok := entry.sys.(ErrorHandler); ok {
			err = handler.OnError(w, err)
		}
		if err != nil {
			return fmt.Errorf("system %q: %w", entry.opts.Name, err)
		}
	}
	if flushErr != nil {
		return fmt.Errorf("system %q: %w", entry.opts.Name, flushErr)
	}
	return nil
}
