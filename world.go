package depot

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var _ World = &world{}

// world composes the registry, entity storage, query cache, command buffer
// and scheduler of one independent ECS instance.
type world struct {
	id       uuid.UUID
	registry *Registry
	sto      *storage
	queries  *queryCache
	buffer   *CommandBuffer
	locks    lockSet
	systems  []*systemEntry
	nextSeq  int
	logger   *zap.Logger
}

func newWorld(cfg Config) *world {
	cfg = cfg.withDefaults()
	id := uuid.New()
	logger := cfg.Logger.With(zap.String("world", id.String()))
	registry := NewRegistry()

	w := &world{
		id:       id,
		registry: registry,
		queries:  newQueryCache(registry, cfg.QueryCacheCapacity),
		logger:   logger,
	}
	w.sto = newStorage(cfg, registry, logger)
	w.sto.onArchetypeCreated = w.queries.onArchetypeCreated
	w.buffer = newCommandBuffer(w.sto, logger)
	return w
}

func (w *world) ID() uuid.UUID {
	return w.id
}

func (w *world) Registry() *Registry {
	return w.registry
}

func (w *world) Logger() *zap.Logger {
	return w.logger
}

// Reserve allocates an id whose data will be supplied later with
// CreateReserved. It is not a structural change and is allowed while locked.
func (w *world) Reserve() Entity {
	return w.sto.reserve()
}

// ReleaseReserved drops ids that were reserved but never created.
func (w *world) ReleaseReserved(ids ...Entity) {
	w.sto.releaseReserved(ids...)
}

func (w *world) Create(data Data) (Entity, error) {
	if err := w.guard("create entity"); err != nil {
		return NilEntity, err
	}
	return w.sto.create(data, NilEntity)
}

func (w *world) CreateReserved(id Entity, data Data) error {
	if err := w.guard("create entity"); err != nil {
		return err
	}
	_, err := w.sto.create(data, id)
	return err
}

func (w *world) Remove(e Entity) error {
	if err := w.guard("remove entity"); err != nil {
		return err
	}
	return w.sto.remove(e)
}

// AddComponents moves e into the archetype of its composition plus the kinds
// of data, copying every value it already had. Kinds e already has are
// overwritten in place. Migration copies a full row; toggling state every
// tick is cheaper with a tag kept in the composition.
func (w *world) AddComponents(e Entity, data Data) error {
	if err := w.guard("add components"); err != nil {
		return err
	}
	return w.sto.addComponents(e, data)
}

func (w *world) RemoveComponents(e Entity, kinds ...*Kind) error {
	if err := w.guard("remove components"); err != nil {
		return err
	}
	return w.sto.removeComponents(e, kinds...)
}

// SetComponent overwrites a value in place. It never migrates, so it is
// allowed inside a safety window.
func (w *world) SetComponent(e Entity, k *Kind, value any) error {
	return w.sto.setComponent(e, k, value)
}

func (w *world) Component(e Entity, k *Kind) (any, error) {
	return w.sto.component(e, k)
}

func (w *world) ArchetypeOf(e Entity) (Archetype, error) {
	arch, err := w.sto.archetypeOf(e)
	if err != nil {
		return nil, err
	}
	return arch, nil
}

// Contains reports whether e is created and not removed.
func (w *world) Contains(e Entity) bool {
	rec := w.sto.dir.lookup(e)
	return rec != nil && rec.state == stateLive
}

func (w *world) Len() int {
	return w.sto.dir.live
}

func (w *world) Archetypes() []Archetype {
	out := make([]Archetype, len(w.sto.archetypes.asSlice))
	for i, arch := range w.sto.archetypes.asSlice {
		out[i] = arch
	}
	return out
}

// Query returns the cached query for the composition. A query seen for the
// first time is tested once against every existing archetype; later
// archetypes reach it through the creation hook.
func (w *world) Query(include []*Kind, exclude ...*Kind) (Query, error) {
	q, created, err := w.queries.getOrCreate(include, exclude)
	if err != nil {
		return nil, err
	}
	if created {
		for _, arch := range w.sto.archetypes.asSlice {
			q.tryAdd(arch)
		}
		w.logger.Debug("query created",
			zap.Stringers("include", q.includeKinds),
			zap.Stringers("exclude", q.excludeKinds),
			zap.Int("matches", len(q.matches)),
		)
	}
	return q, nil
}

func (w *world) Commands() *CommandBuffer {
	return w.buffer
}

// Flush applies the command buffer now. Calling it while views from Fetch
// are still in use can invalidate them.
func (w *world) Flush() error {
	return w.buffer.Flush()
}
