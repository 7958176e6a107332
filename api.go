package depot

import (
	"iter"

	"github.com/TheBitDrifter/mask"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Data maps kinds to the values an entity should hold for them. Tag values are
// ignored; a nil value is fine for a tag.
type Data map[*Kind]any

type World interface {
	ID() uuid.UUID
	Registry() *Registry
	Logger() *zap.Logger

	Reserve() Entity
	ReleaseReserved(...Entity)
	Create(Data) (Entity, error)
	CreateReserved(Entity, Data) error
	Remove(Entity) error
	AddComponents(Entity, Data) error
	RemoveComponents(Entity, ...*Kind) error
	SetComponent(Entity, *Kind, any) error
	Component(Entity, *Kind) (any, error)
	ArchetypeOf(Entity) (Archetype, error)
	Contains(Entity) bool
	Len() int
	Archetypes() []Archetype

	Query(include []*Kind, exclude ...*Kind) (Query, error)

	Commands() *CommandBuffer
	Flush() error

	Locked() bool
	AddLock(bit uint32)
	RemoveLock(bit uint32) error
	Scan(func() error) error

	AddSystem(System, SystemOptions) error
	EnableSystem(name string, enabled bool) error
	Update(dt float64, groups ...string) error
}

type Archetype interface {
	ID() uint32
	Signature() Signature
	Kinds() []*Kind
	Has(*Kind) bool
	Len() int
	Cap() int
}

type Query interface {
	Include() []*Kind
	Exclude() []*Kind
	Matches() []Archetype
	Len() int
	Fetch(optional ...*Kind) iter.Seq[View]
	Gather(optionalTags ...*Kind) (*Gathered, error)
}

// ColumnSource is anything exposing typed column data by kind: views, gathered
// snapshots and cursors.
type ColumnSource interface {
	Values(*Kind) (any, bool)
}

type System interface {
	Update(w World, dt float64) error
}

// SystemFunc adapts a plain function to System.
type SystemFunc func(w World, dt float64) error

func (f SystemFunc) Update(w World, dt float64) error {
	return f(w, dt)
}

// Initializer is implemented by systems that need one-time setup when added.
type Initializer interface {
	Init(w World) error
}

// ErrorHandler is implemented by systems that want to recover from their own
// update errors. Returning nil lets the update continue with the next system.
type ErrorHandler interface {
	OnError(w World, err error) error
}

type SystemOptions struct {
	Name     string
	Priority float64
	Group    string
	Disabled bool
}

type Cache[K comparable, T any] interface {
	GetIndex(K) (int, bool)
	GetItem(int) *T
	Register(K, T) (int, error)
	Len() int
}

// View is one matching archetype as seen by Fetch. Column values are live
// slices into storage; Entities is a copy.
type View struct {
	Archetype Archetype
	Entities  []Entity
	columns   map[*Kind]any
}

// Span is the contiguous range [Start, End) an archetype occupies in a
// gathered snapshot.
type Span struct {
	Archetype Archetype
	Start     int
	End       int
	arch      *archetype
}

// Gathered is a merged copy of every matching archetype.
type Gathered struct {
	Entities []Entity
	Spans    []Span
	columns  map[*Kind]any
}

// Warning: holds a safety window open between the first Next and exhaustion.
type Cursor struct {
	query    *query
	world    *world
	optional []*Kind

	// Current iteration state
	views       []View
	current     View
	currentArch *archetype
	viewIndex   int
	entityIndex int
	remaining   int

	initialized bool
	lockBit     uint32
	locked      bool
	err         error
}

// Accessor is a typed handle on a kind whose element type is T.
type Accessor[T Scalar] struct {
	kind *Kind
}

type SimpleCache[K comparable, T any] struct {
	items       []T
	itemIndices map[K]int
	maxCapacity int
}

type lockSet struct {
	bits mask.Mask
}
