package depot

import (
	"fmt"
	"iter"
	"slices"
)

var _ Query = &query{}

type query struct {
	key          queryKey
	includeKinds []*Kind
	excludeKinds []*Kind
	matches      []*archetype
}

func newQuery(key queryKey, include, exclude []*Kind) *query {
	return &query{
		key:          key,
		includeKinds: include,
		excludeKinds: exclude,
	}
}

// tryAdd records arch as a match when its signature holds every included
// bit and none of the excluded ones. Repeated calls never duplicate it.
func (q *query) tryAdd(arch *archetype) bool {
	if !arch.signature.ContainsAll(q.key.include) {
		return false
	}
	if !arch.signature.ContainsNone(q.key.exclude) {
		return false
	}
	if slices.Contains(q.matches, arch) {
		return false
	}
	q.matches = append(q.matches, arch)
	return true
}

func (q *query) Include() []*Kind {
	return append([]*Kind(nil), q.includeKinds...)
}

func (q *query) Exclude() []*Kind {
	return append([]*Kind(nil), q.excludeKinds...)
}

func (q *query) Matches() []Archetype {
	out := make([]Archetype, len(q.matches))
	for i, arch := range q.matches {
		out[i] = arch
	}
	return out
}

// Len is the number of entities across all matching archetypes.
func (q *query) Len() int {
	total := 0
	for _, arch := range q.matches {
		total += arch.count
	}
	return total
}

// Fetch yields one View per non-empty matching archetype. Optional kinds are
// added to a view only when its archetype has them. Column slices alias live
// storage, so the caller must keep structural changes out until it is done.
func (q *query) Fetch(optional ...*Kind) iter.Seq[View] {
	return func(yield func(View) bool) {
		for _, arch := range q.matches {
			if arch.count == 0 {
				continue
			}
			if !yield(q.view(arch, optional)) {
				return
			}
		}
	}
}

func (q *query) view(arch *archetype, optional []*Kind) View {
	columns := make(map[*Kind]any, len(q.includeKinds)+len(optional))
	for _, k := range q.includeKinds {
		if col, ok := arch.columns[k]; ok {
			columns[k] = col.view(arch.count)
		}
	}
	for _, k := range optional {
		if col, ok := arch.columns[k]; ok {
			columns[k] = col.view(arch.count)
		}
	}
	return View{
		Archetype: arch,
		Entities:  slices.Clone(arch.entities[:arch.count]),
		columns:   columns,
	}
}

// Gather copies every matching archetype into one merged array per kind.
// Included tags and optionalTags come out as []bool presence flags. Only tags
// may be optional, since data kinds missing from some archetypes have no
// merged representation.
func (q *query) Gather(optionalTags ...*Kind) (*Gathered, error) {
	for _, k := range optionalTags {
		if !k.IsTag() {
			return nil, SchemaMismatchError{Kind: k, Reason: "only tag kinds can be gathered as optional"}
		}
	}

	total := q.Len()
	g := &Gathered{
		Entities: make([]Entity, 0, total),
		columns:  make(map[*Kind]any, len(q.includeKinds)+len(optionalTags)),
	}
	for _, k := range q.includeKinds {
		if k.IsTag() {
			g.columns[k] = make([]bool, total)
		} else {
			g.columns[k] = newBuffer(k, total)
		}
	}
	for _, k := range optionalTags {
		g.columns[k] = make([]bool, total)
	}

	offset := 0
	for _, arch := range q.matches {
		if arch.count == 0 {
			continue
		}
		for k, buf := range g.columns {
			if k.IsTag() {
				if arch.Has(k) {
					flags := buf.([]bool)
					for i := offset; i < offset+arch.count; i++ {
						flags[i] = true
					}
				}
				continue
			}
			arch.columns[k].gatherInto(buf, offset, arch.count)
		}
		g.Entities = append(g.Entities, arch.entities[:arch.count]...)
		g.Spans = append(g.Spans, Span{
			Archetype: arch,
			Start:     offset,
			End:       offset + arch.count,
			arch:      arch,
		})
		offset += arch.count
	}
	return g, nil
}

func (v View) Values(k *Kind) (any, bool) {
	vals, ok := v.columns[k]
	return vals, ok
}

func (v View) Len() int {
	return len(v.Entities)
}

func (g *Gathered) Values(k *Kind) (any, bool) {
	vals, ok := g.columns[k]
	return vals, ok
}

func (g *Gathered) Len() int {
	return len(g.Entities)
}

func (g *Gathered) SpanOf(a Archetype) (Span, bool) {
	for _, span := range g.Spans {
		if span.Archetype == a {
			return span, true
		}
	}
	return Span{}, false
}

// Scatter writes the gathered copies of kinds back into live storage, one
// span at a time. With no kinds it writes every data column. It fails if an
// archetype no longer holds the same entities in the same rows as when it was
// gathered.
func (g *Gathered) Scatter(kinds ...*Kind) error {
	if len(kinds) == 0 {
		for k := range g.columns {
			if !k.IsTag() {
				kinds = append(kinds, k)
			}
		}
	}
	for _, span := range g.Spans {
		if span.arch.count != span.End-span.Start {
			return fmt.Errorf("archetype %d changed from %d to %d rows since gather",
				span.arch.id, span.End-span.Start, span.arch.count)
		}
		if !slices.Equal(g.Entities[span.Start:span.End], span.arch.entities[:span.arch.count]) {
			return fmt.Errorf("archetype %d rows were reassigned since gather", span.arch.id)
		}
	}
	for _, k := range kinds {
		buf, ok := g.columns[k]
		if !ok || k.IsTag() {
			return SchemaMismatchError{Kind: k, Reason: "not a gathered data column"}
		}
		for _, span := range g.Spans {
			span.arch.columns[k].scatterFrom(buf, span.Start, span.End-span.Start)
		}
	}
	return nil
}

// Values returns the typed slice src holds for k, or nil when src lacks k or
// T is not the kind's element type.
func Values[T Scalar](src ColumnSource, k *Kind) []T {
	vals, ok := src.Values(k)
	if !ok {
		return nil
	}
	out, _ := vals.([]T)
	return out
}
