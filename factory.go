package depot

type factory struct{}

var Factory factory

// NewWorld builds an independent world. A zero Config is valid.
func (f factory) NewWorld(cfg Config) World {
	return newWorld(cfg)
}

// NewCursor returns a row cursor over q. Both must come from the same
// package; a world or query from elsewhere panics.
func (f factory) NewCursor(q Query, w World, optional ...*Kind) *Cursor {
	return newCursor(q.(*query), w.(*world), optional)
}
