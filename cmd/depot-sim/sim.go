package main

import (
	_ "embed"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TheBitDrifter/depot"
)

//go:embed kinds.yaml
var kindsYAML string

const (
	sunMass    = 100
	softening  = 0.05
	escapeDist = 200
)

type bodyKinds struct {
	position *depot.Kind
	velocity *depot.Kind
	mass     *depot.Kind
	locked   *depot.Kind
}

func loadBodyKinds() (bodyKinds, error) {
	ks, err := depot.LoadKinds(strings.NewReader(kindsYAML))
	if err != nil {
		return bodyKinds{}, err
	}
	var bk bodyKinds
	for name, dst := range map[string]**depot.Kind{
		"position": &bk.position,
		"velocity": &bk.velocity,
		"mass":     &bk.mass,
		"locked":   &bk.locked,
	} {
		if *dst, err = ks.Get(name); err != nil {
			return bodyKinds{}, err
		}
	}
	return bk, nil
}

type summary struct {
	ID            uuid.UUID
	Bodies        int
	Archetypes    int
	KineticEnergy float64
}

// simulate spawns a pinned sun and params.Bodies-1 orbiting bodies, then runs
// params.Ticks updates.
func simulate(params simParams, seed uint64) (summary, error) {
	kinds, err := loadBodyKinds()
	if err != nil {
		return summary{}, err
	}
	w := depot.Factory.NewWorld(params.World)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	if _, err := w.Create(depot.Data{
		kinds.position: 0,
		kinds.velocity: 0,
		kinds.mass:     sunMass,
		kinds.locked:   nil,
	}); err != nil {
		return summary{}, fmt.Errorf("spawn sun: %w", err)
	}
	for range params.Bodies - 1 {
		r := 5 + 15*rng.Float64()
		theta := 2 * math.Pi * rng.Float64()
		speed := math.Sqrt(params.G * sunMass / r)
		if _, err := w.Create(depot.Data{
			kinds.position: []float64{r * math.Cos(theta), r * math.Sin(theta)},
			kinds.velocity: []float64{-speed * math.Sin(theta), speed * math.Cos(theta)},
			kinds.mass:     0.01 + 0.09*rng.Float64(),
		}); err != nil {
			return summary{}, fmt.Errorf("spawn body: %w", err)
		}
	}

	systems := []struct {
		sys  depot.System
		opts depot.SystemOptions
	}{
		{&gravitySystem{kinds: kinds, g: params.G}, depot.SystemOptions{Name: "gravity", Priority: 0}},
		{&movementSystem{kinds: kinds}, depot.SystemOptions{Name: "movement", Priority: 1}},
		{&escapeSystem{kinds: kinds, radius: escapeDist}, depot.SystemOptions{Name: "escape", Priority: 2}},
	}
	for _, s := range systems {
		if err := w.AddSystem(s.sys, s.opts); err != nil {
			return summary{}, err
		}
	}

	for tick := range params.Ticks {
		if err := w.Update(params.DT); err != nil {
			return summary{}, fmt.Errorf("tick %d: %w", tick, err)
		}
	}

	energy, err := kineticEnergy(w, kinds)
	if err != nil {
		return summary{}, err
	}
	w.Logger().Debug("world finished", zap.Int("bodies", w.Len()), zap.Float64("kinetic_energy", energy))
	return summary{
		ID:            w.ID(),
		Bodies:        w.Len(),
		Archetypes:    len(w.Archetypes()),
		KineticEnergy: energy,
	}, nil
}

// gravitySystem accumulates pairwise accelerations on a gathered copy of
// every body and writes velocities back. Locked bodies attract but never move.
type gravitySystem struct {
	kinds bodyKinds
	g     float64
	query depot.Query
}

func (s *gravitySystem) Init(w depot.World) (err error) {
	s.query, err = w.Query([]*depot.Kind{s.kinds.position, s.kinds.velocity, s.kinds.mass})
	return err
}

func (s *gravitySystem) Update(w depot.World, dt float64) error {
	gathered, err := s.query.Gather(s.kinds.locked)
	if err != nil {
		return err
	}
	pos := depot.Values[float32](gathered, s.kinds.position)
	vel := depot.Values[float32](gathered, s.kinds.velocity)
	mass := depot.Values[float32](gathered, s.kinds.mass)
	flags, _ := gathered.Values(s.kinds.locked)
	locked := flags.([]bool)

	n := gathered.Len()
	for i := range n {
		if locked[i] {
			continue
		}
		var ax, ay float64
		for j := range n {
			if i == j {
				continue
			}
			dx := float64(pos[2*j] - pos[2*i])
			dy := float64(pos[2*j+1] - pos[2*i+1])
			d2 := dx*dx + dy*dy + softening*softening
			f := s.g * float64(mass[j]) / (d2 * math.Sqrt(d2))
			ax += f * dx
			ay += f * dy
		}
		vel[2*i] += float32(ax * dt)
		vel[2*i+1] += float32(ay * dt)
	}
	return gathered.Scatter(s.kinds.velocity)
}

// movementSystem integrates positions in place on live views.
type movementSystem struct {
	kinds bodyKinds
	query depot.Query
}

func (s *movementSystem) Init(w depot.World) (err error) {
	s.query, err = w.Query([]*depot.Kind{s.kinds.position, s.kinds.velocity}, s.kinds.locked)
	return err
}

func (s *movementSystem) Update(w depot.World, dt float64) error {
	for view := range s.query.Fetch() {
		pos := depot.Values[float32](view, s.kinds.position)
		vel := depot.Values[float32](view, s.kinds.velocity)
		for i := range pos {
			pos[i] += vel[i] * float32(dt)
		}
	}
	return nil
}

// escapeSystem removes bodies that drifted past radius. Removal is recorded
// on the command buffer and applied once the system returns.
type escapeSystem struct {
	kinds  bodyKinds
	radius float64
	query  depot.Query
}

func (s *escapeSystem) Init(w depot.World) (err error) {
	s.query, err = w.Query([]*depot.Kind{s.kinds.position}, s.kinds.locked)
	return err
}

func (s *escapeSystem) Update(w depot.World, dt float64) error {
	limit := float32(s.radius * s.radius)
	for view := range s.query.Fetch() {
		pos := depot.Values[float32](view, s.kinds.position)
		for i, e := range view.Entities {
			x, y := pos[2*i], pos[2*i+1]
			if x*x+y*y > limit {
				w.Commands().RemoveEntity(e)
			}
		}
	}
	return nil
}

func kineticEnergy(w depot.World, kinds bodyKinds) (float64, error) {
	q, err := w.Query([]*depot.Kind{kinds.velocity, kinds.mass})
	if err != nil {
		return 0, err
	}
	var energy float64
	err = w.Scan(func() error {
		for view := range q.Fetch() {
			vel := depot.Values[float32](view, kinds.velocity)
			mass := depot.Values[float32](view, kinds.mass)
			for i, m := range mass {
				vx, vy := float64(vel[2*i]), float64(vel[2*i+1])
				energy += 0.5 * float64(m) * (vx*vx + vy*vy)
			}
		}
		return nil
	})
	return energy, err
}
