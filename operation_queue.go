package depot

import (
	"fmt"
	"maps"

	"go.uber.org/zap"
)

type operationType int

const (
	opCreate operationType = iota
	opDestroy
	opAddComponent
	opRemoveComponent
)

func (t operationType) String() string {
	switch t {
	case opCreate:
		return "create entity"
	case opDestroy:
		return "remove entity"
	case opAddComponent:
		return "add components"
	case opRemoveComponent:
		return "remove components"
	}
	return fmt.Sprintf("operation(%d)", int(t))
}

type operation struct {
	typ    operationType
	entity Entity
	data   Data
	kinds  []*Kind
}

// CommandBuffer records structural changes for later replay. Recording never
// touches storage; Flush applies the entries in the order they were recorded.
type CommandBuffer struct {
	sto      *storage
	ops      []operation
	reserved []Entity
	logger   *zap.Logger
}

func newCommandBuffer(sto *storage, logger *zap.Logger) *CommandBuffer {
	return &CommandBuffer{sto: sto, logger: logger}
}

// CreateEntity reserves an id right away and records its creation. Reads of
// the id fail as pending until the buffer is flushed.
func (b *CommandBuffer) CreateEntity(data Data) Entity {
	id := b.sto.reserve()
	b.reserved = append(b.reserved, id)
	b.ops = append(b.ops, operation{typ: opCreate, entity: id, data: maps.Clone(data)})
	return id
}

func (b *CommandBuffer) RemoveEntity(e Entity) {
	b.ops = append(b.ops, operation{typ: opDestroy, entity: e})
}

func (b *CommandBuffer) AddComponents(e Entity, data Data) {
	b.ops = append(b.ops, operation{typ: opAddComponent, entity: e, data: maps.Clone(data)})
}

func (b *CommandBuffer) RemoveComponents(e Entity, kinds ...*Kind) {
	b.ops = append(b.ops, operation{
		typ:    opRemoveComponent,
		entity: e,
		kinds:  append([]*Kind(nil), kinds...),
	})
}

// Len is the number of entries waiting for the next flush.
func (b *CommandBuffer) Len() int {
	return len(b.ops)
}

// Flush replays every recorded entry against storage, bypassing the safety
// window. The first failing entry stops the flush: earlier entries stay
// applied, later ones are discarded. Either way the buffer ends empty and ids
// reserved for creations that never ran are released. Entries recorded while
// a flush is running are kept for the next one.
func (b *CommandBuffer) Flush() error {
	if len(b.ops) == 0 && len(b.reserved) == 0 {
		return nil
	}
	ops, reserved := b.ops, b.reserved
	b.ops, b.reserved = nil, nil
	defer b.sto.releaseReserved(reserved...)

	for i, op := range ops {
		if err := b.apply(op); err != nil {
			b.logger.Warn("command buffer flush failed",
				zap.Int("applied", i),
				zap.Int("discarded", len(ops)-i-1),
				zap.Stringer("operation", op.typ),
				zap.Uint64("entity", uint64(op.entity)),
				zap.Error(err),
			)
			return fmt.Errorf("flush entry %d of %d (%s entity %d): %w", i+1, len(ops), op.typ, op.entity, err)
		}
	}
	b.logger.Debug("command buffer flushed", zap.Int("applied", len(ops)))
	return nil
}

func (b *CommandBuffer) apply(op operation) error {
	switch op.typ {
	case opCreate:
		_, err := b.sto.create(op.data, op.entity)
		return err
	case opDestroy:
		return b.sto.remove(op.entity)
	case opAddComponent:
		return b.sto.addComponents(op.entity, op.data)
	case opRemoveComponent:
		return b.sto.removeComponents(op.entity, op.kinds...)
	}
	return fmt.Errorf("unknown operation %d", op.typ)
}

// Clear drops every pending entry without applying it.
func (b *CommandBuffer) Clear() {
	reserved := b.reserved
	b.ops, b.reserved = nil, nil
	b.sto.releaseReserved(reserved...)
}
