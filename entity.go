package depot

// Entity is an opaque entity id. Ids start at 1; NilEntity never names an entity.
type Entity uint64

const NilEntity Entity = 0

type entityState uint8

const (
	stateAbsent entityState = iota
	statePending
	stateLive
)

type entityRecord struct {
	state entityState
	arch  *archetype
	row   int
}

// directory maps entity ids to their archetype row. Records are indexed by id-1.
type directory struct {
	records []entityRecord
	free    []Entity
	recycle bool
	live    int
}

func (d *directory) allocate() Entity {
	if d.recycle && len(d.free) > 0 {
		id := d.free[0]
		d.free = d.free[1:]
		d.records[id-1] = entityRecord{state: statePending}
		return id
	}
	if len(d.records) == cap(d.records) {
		newCap := max(64, 2*cap(d.records))
		records := make([]entityRecord, len(d.records), newCap)
		copy(records, d.records)
		d.records = records
	}
	d.records = append(d.records, entityRecord{state: statePending})
	return Entity(len(d.records))
}

func (d *directory) lookup(e Entity) *entityRecord {
	if e == NilEntity || int(e) > len(d.records) {
		return nil
	}
	rec := &d.records[e-1]
	if rec.state == stateAbsent {
		return nil
	}
	return rec
}

// liveRecord returns the record of a created entity, or the not-found / pending
// error describing why there is none.
func (d *directory) liveRecord(e Entity) (*entityRecord, error) {
	rec := d.lookup(e)
	if rec == nil {
		return nil, EntityNotFoundError{Entity: e}
	}
	if rec.state == statePending {
		return nil, PendingEntityError{Entity: e}
	}
	return rec, nil
}

func (d *directory) place(e Entity, arch *archetype, row int) {
	rec := &d.records[e-1]
	if rec.state != stateLive {
		d.live++
	}
	*rec = entityRecord{state: stateLive, arch: arch, row: row}
}

func (d *directory) release(e Entity) {
	rec := &d.records[e-1]
	if rec.state == stateLive {
		d.live--
	}
	*rec = entityRecord{}
	if d.recycle {
		d.free = append(d.free, e)
	}
}
