package depot_test

import (
	"errors"
	"fmt"

	"github.com/TheBitDrifter/depot"
)

// Example_basic shows entity creation and a query over live views
func Example_basic() {
	w := depot.Factory.NewWorld(depot.DefaultConfig())

	position := depot.NewKind("position", depot.Float64, 2)
	velocity := depot.NewKind("velocity", depot.Float64, 2)
	name := depot.NewTag("named")

	for i := 0; i < 5; i++ {
		w.Create(depot.Data{position: 0})
	}
	for i := 0; i < 3; i++ {
		w.Create(depot.Data{position: 0, velocity: []float64{1, 2}})
	}
	player, _ := w.Create(depot.Data{position: []float64{10, 20}, velocity: []float64{1, 2}, name: nil})

	moving, _ := w.Query([]*depot.Kind{position, velocity})
	fmt.Printf("Found %d entities with position and velocity\n", moving.Len())

	w.Scan(func() error {
		for view := range moving.Fetch() {
			pos := depot.Values[float64](view, position)
			vel := depot.Values[float64](view, velocity)
			for i := range pos {
				pos[i] += vel[i]
			}
		}
		return nil
	})

	pos, _ := depot.Get[float64](w, player, position)
	fmt.Printf("Player position: (%.1f, %.1f)\n", pos[0], pos[1])

	// Output:
	// Found 4 entities with position and velocity
	// Player position: (11.0, 22.0)
}

// Example_commandBuffer shows deferring structural changes during a scan
func Example_commandBuffer() {
	w := depot.Factory.NewWorld(depot.Config{})
	health := depot.NewKind("health", depot.Int32)
	dead := depot.NewTag("dead")

	for _, hp := range []int{10, 0, 5, 0} {
		w.Create(depot.Data{health: hp})
	}
	alive, _ := w.Query([]*depot.Kind{health}, dead)

	w.Scan(func() error {
		for view := range alive.Fetch() {
			hp := depot.Values[int32](view, health)
			for i, e := range view.Entities {
				if hp[i] > 0 {
					continue
				}
				_, err := w.Create(depot.Data{health: 1})
				fmt.Println("direct create while scanning:", errors.Is(err, depot.ErrIllegalMutation))
				w.Commands().AddComponents(e, depot.Data{dead: nil})
			}
		}
		return nil
	})

	fmt.Println("alive after scan:", alive.Len())

	// Output:
	// direct create while scanning: true
	// direct create while scanning: true
	// alive after scan: 2
}

// Example_gather shows merged snapshots across archetypes
func Example_gather() {
	w := depot.Factory.NewWorld(depot.Config{})
	mass := depot.NewKind("mass", depot.Float64)
	planet := depot.NewTag("planet")

	w.Create(depot.Data{mass: 1})
	w.Create(depot.Data{mass: 2})
	w.Create(depot.Data{mass: 100, planet: nil})

	q, _ := w.Query([]*depot.Kind{mass})
	g, _ := q.Gather(planet)

	flags, _ := g.Values(planet)
	fmt.Println(depot.Values[float64](g, mass), flags)
	for _, span := range g.Spans {
		fmt.Printf("[%d, %d)\n", span.Start, span.End)
	}

	// Output:
	// [1 2 100] [false false true]
	// [0, 2)
	// [2, 3)
}

// Example_systems shows systems running in priority order
func Example_systems() {
	w := depot.Factory.NewWorld(depot.Config{})
	counter := depot.NewKind("counter", depot.Int64)
	e, _ := w.Create(depot.Data{counter: 0})

	w.AddSystem(depot.SystemFunc(func(w depot.World, dt float64) error {
		c, _ := depot.Get[int64](w, e, counter)
		fmt.Println("double", c[0])
		c[0] *= 2
		return nil
	}), depot.SystemOptions{Name: "double", Priority: 2})
	w.AddSystem(depot.SystemFunc(func(w depot.World, dt float64) error {
		c, _ := depot.Get[int64](w, e, counter)
		fmt.Println("increment", c[0])
		c[0]++
		return nil
	}), depot.SystemOptions{Name: "increment", Priority: 1})

	w.Update(1)
	w.Update(1)

	c, _ := depot.Get[int64](w, e, counter)
	fmt.Println("result", c[0])

	// Output:
	// increment 0
	// double 1
	// increment 2
	// double 3
	// result 6
}
