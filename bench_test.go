package depot_test

import (
	"testing"

	"github.com/TheBitDrifter/depot"
)

const (
	nPos    = 9000
	nPosVel = 1000
)

func benchWorld(b *testing.B) (depot.World, *depot.Kind, *depot.Kind, depot.Query) {
	b.Helper()
	position := depot.NewKind("position", depot.Float64, 2)
	velocity := depot.NewKind("velocity", depot.Float64, 2)
	w := depot.Factory.NewWorld(depot.DefaultConfig())

	for i := 0; i < nPosVel; i++ {
		if _, err := w.Create(depot.Data{position: 0, velocity: 1}); err != nil {
			b.Fatal(err)
		}
	}
	for i := 0; i < nPos; i++ {
		if _, err := w.Create(depot.Data{position: 0}); err != nil {
			b.Fatal(err)
		}
	}
	q, err := w.Query([]*depot.Kind{position, velocity})
	if err != nil {
		b.Fatal(err)
	}
	return w, position, velocity, q
}

func BenchmarkIterCursor(b *testing.B) {
	b.StopTimer()
	w, position, velocity, q := benchWorld(b)
	posAcc, _ := depot.NewAccessor[float64](position)
	velAcc, _ := depot.NewAccessor[float64](velocity)
	cursor := depot.Factory.NewCursor(q, w)
	b.StartTimer()

	for i := 0; i < b.N; i++ {
		for cursor.Next() {
			pos := posAcc.GetFromCursor(cursor)
			vel := velAcc.GetFromCursor(cursor)
			pos[0] += vel[0]
			pos[1] += vel[1]
		}
	}
}

func BenchmarkIterFetch(b *testing.B) {
	b.StopTimer()
	_, position, velocity, q := benchWorld(b)
	b.StartTimer()

	for i := 0; i < b.N; i++ {
		for view := range q.Fetch() {
			pos := depot.Values[float64](view, position)
			vel := depot.Values[float64](view, velocity)
			for j := range pos {
				pos[j] += vel[j]
			}
		}
	}
}

func BenchmarkGatherScatter(b *testing.B) {
	b.StopTimer()
	_, position, velocity, q := benchWorld(b)
	b.StartTimer()

	for i := 0; i < b.N; i++ {
		g, err := q.Gather()
		if err != nil {
			b.Fatal(err)
		}
		pos := depot.Values[float64](g, position)
		vel := depot.Values[float64](g, velocity)
		for j := range pos {
			pos[j] += vel[j]
		}
		if err := g.Scatter(position); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAddRemoveComponent(b *testing.B) {
	b.StopTimer()
	w, _, _, _ := benchWorld(b)
	tag := depot.NewTag("marked")
	e, _ := w.Create(depot.Data{tag: nil})
	extra := depot.NewKind("extra", depot.Int32)
	b.StartTimer()

	for i := 0; i < b.N; i++ {
		if err := w.AddComponents(e, depot.Data{extra: i}); err != nil {
			b.Fatal(err)
		}
		if err := w.RemoveComponents(e, extra); err != nil {
			b.Fatal(err)
		}
	}
}
