package depot

import (
	"slices"

	"go.uber.org/zap"
)

// storage is the entity manager: it owns the directory and every archetype,
// and performs structural changes without consulting the safety window.
type storage struct {
	registry           *Registry
	archetypes         *archetypes
	dir                directory
	initialCapacity    int
	onArchetypeCreated func(*archetype)
	logger             *zap.Logger
}

type archetypes struct {
	nextID           archetypeID
	asSlice          []*archetype
	idsGroupedByMask map[Signature]archetypeID
}

func newStorage(cfg Config, registry *Registry, logger *zap.Logger) *storage {
	return &storage{
		registry: registry,
		archetypes: &archetypes{
			nextID:           1,
			idsGroupedByMask: make(map[Signature]archetypeID),
		},
		dir:             directory{recycle: cfg.RecycleEntityIDs},
		initialCapacity: cfg.InitialCapacity,
		logger:          logger,
	}
}

// getOrCreateArchetype returns the single archetype for the composition of
// kinds, creating it and notifying the query cache on first use.
func (sto *storage) getOrCreateArchetype(kinds []*Kind) *archetype {
	kinds = sto.registry.CanonicalOrder(kinds...)
	sig := sto.registry.Signature(kinds...)
	if id, found := sto.archetypes.idsGroupedByMask[sig]; found {
		return sto.archetypes.asSlice[id-1]
	}

	created := newArchetype(sto.archetypes.nextID, sig, kinds, sto.initialCapacity)
	sto.archetypes.asSlice = append(sto.archetypes.asSlice, created)
	sto.archetypes.idsGroupedByMask[sig] = sto.archetypes.nextID
	sto.archetypes.nextID++

	sto.logger.Debug("archetype created",
		zap.Uint32("archetype", created.ID()),
		zap.Stringers("kinds", kinds),
	)
	if sto.onArchetypeCreated != nil {
		sto.onArchetypeCreated(created)
	}
	return created
}

func (sto *storage) reserve() Entity {
	return sto.dir.allocate()
}

// releaseReserved drops ids that are still pending. Created or unknown ids
// are left alone.
func (sto *storage) releaseReserved(ids ...Entity) {
	for _, id := range ids {
		if rec := sto.dir.lookup(id); rec != nil && rec.state == statePending {
			sto.dir.release(id)
		}
	}
}

// create writes data into a new row. A non-nil reserved id must be pending
// and becomes the created entity.
func (sto *storage) create(data Data, reserved Entity) (Entity, error) {
	if reserved != NilEntity {
		rec := sto.dir.lookup(reserved)
		if rec == nil || rec.state != statePending {
			return NilEntity, ReservationError{Entity: reserved}
		}
	}
	kinds, encoded, err := sto.encode(data)
	if err != nil {
		return NilEntity, err
	}

	arch := sto.getOrCreateArchetype(kinds)
	id := reserved
	if id == NilEntity {
		id = sto.dir.allocate()
	}
	row := arch.allocate(id)
	for k, v := range encoded {
		arch.write(row, k, v)
	}
	sto.dir.place(id, arch, row)
	return id, nil
}

func (sto *storage) remove(e Entity) error {
	rec, err := sto.dir.liveRecord(e)
	if err != nil {
		return err
	}
	sto.detach(rec.arch, rec.row)
	sto.dir.release(e)
	return nil
}

// detach frees row in arch and repoints the entity compaction moved into it.
func (sto *storage) detach(arch *archetype, row int) {
	if moved, ok := arch.remove(row); ok {
		sto.dir.place(moved, arch, row)
	}
}

func (sto *storage) addComponents(e Entity, data Data) error {
	rec, err := sto.dir.liveRecord(e)
	if err != nil {
		return err
	}
	kinds, encoded, err := sto.encode(data)
	if err != nil {
		return err
	}

	prev, prevRow := rec.arch, rec.row
	sig := prev.signature
	for _, k := range kinds {
		sig = sig.with(sto.registry.Bit(k))
	}
	if sig == prev.signature {
		for k, v := range encoded {
			prev.write(prevRow, k, v)
		}
		return nil
	}

	union := append(prev.Kinds(), kinds...)
	dest := sto.getOrCreateArchetype(union)
	sto.migrate(e, prev, prevRow, dest)
	row := sto.dir.records[e-1].row
	for k, v := range encoded {
		dest.write(row, k, v)
	}
	return nil
}

func (sto *storage) removeComponents(e Entity, kinds ...*Kind) error {
	rec, err := sto.dir.liveRecord(e)
	if err != nil {
		return err
	}
	prev, prevRow := rec.arch, rec.row
	sig := prev.signature
	for _, k := range kinds {
		sig = sig.without(sto.registry.Bit(k))
	}
	if sig == prev.signature {
		return nil
	}

	remaining := make([]*Kind, 0, len(prev.kinds))
	for _, k := range prev.kinds {
		if !slices.Contains(kinds, k) {
			remaining = append(remaining, k)
		}
	}
	dest := sto.getOrCreateArchetype(remaining)
	sto.migrate(e, prev, prevRow, dest)
	return nil
}

// migrate moves e from prev to dest, carrying every column both share.
func (sto *storage) migrate(e Entity, prev *archetype, prevRow int, dest *archetype) {
	row := dest.allocate(e)
	for k, col := range prev.columns {
		if destCol, ok := dest.columns[k]; ok {
			destCol.copyFrom(col, prevRow, row)
		}
	}
	sto.detach(prev, prevRow)
	sto.dir.place(e, dest, row)
}

func (sto *storage) setComponent(e Entity, k *Kind, value any) error {
	rec, err := sto.dir.liveRecord(e)
	if err != nil {
		return err
	}
	if !rec.arch.Has(k) {
		return ComponentNotFoundError{Entity: e, Kind: k}
	}
	encoded, err := k.encode(value)
	if err != nil {
		return err
	}
	rec.arch.write(rec.row, k, encoded)
	return nil
}

// component returns the live row of k for e. Writes to the returned slice
// land in storage. Tags return nil.
func (sto *storage) component(e Entity, k *Kind) (any, error) {
	rec, err := sto.dir.liveRecord(e)
	if err != nil {
		return nil, err
	}
	if !rec.arch.Has(k) {
		return nil, ComponentNotFoundError{Entity: e, Kind: k}
	}
	if k.IsTag() {
		return nil, nil
	}
	v, _ := rec.arch.row(rec.row, k)
	return v, nil
}

func (sto *storage) archetypeOf(e Entity) (*archetype, error) {
	rec, err := sto.dir.liveRecord(e)
	if err != nil {
		return nil, err
	}
	return rec.arch, nil
}

// encode validates every value of data before anything is written, so a
// schema error leaves storage untouched.
func (sto *storage) encode(data Data) ([]*Kind, map[*Kind]any, error) {
	kinds := make([]*Kind, 0, len(data))
	encoded := make(map[*Kind]any, len(data))
	for k, v := range data {
		enc, err := k.encode(v)
		if err != nil {
			return nil, nil, err
		}
		kinds = append(kinds, k)
		if !k.IsTag() {
			encoded[k] = enc
		}
	}
	return sto.registry.CanonicalOrder(kinds...), encoded, nil
}
