package depot

import (
	"fmt"
	"slices"

	"github.com/TheBitDrifter/mask"
)

// MaxKinds is the number of distinct kinds one registry can assign bits to.
const MaxKinds = 64

// Signature is the bitset of a composition. Signatures are only comparable
// between values produced by the same Registry.
type Signature struct {
	bits mask.Mask
}

func (s Signature) with(bit uint32) Signature {
	s.bits.Mark(bit)
	return s
}

func (s Signature) without(bit uint32) Signature {
	s.bits.Unmark(bit)
	return s
}

func (s Signature) IsZero() bool {
	return s == Signature{}
}

// ContainsAll reports whether every bit of sub is set in s.
func (s Signature) ContainsAll(sub Signature) bool {
	if sub.IsZero() {
		return true
	}
	return s.bits.ContainsAll(sub.bits)
}

// ContainsNone reports whether s and other share no bit.
func (s Signature) ContainsNone(other Signature) bool {
	if other.IsZero() || s.IsZero() {
		return true
	}
	return s.bits.ContainsNone(other.bits)
}

func (s Signature) has(bit uint32) bool {
	return s.bits.Contains(bit)
}

// Registry hands out one exclusive bit per kind, in first-seen order. It is
// owned by a single world; bits are never reclaimed.
type Registry struct {
	bits  map[*Kind]uint32
	kinds []*Kind
}

func NewRegistry() *Registry {
	return &Registry{
		bits: make(map[*Kind]uint32),
	}
}

// Bit returns the bit of k, assigning the next unused one on first sight.
func (r *Registry) Bit(k *Kind) uint32 {
	if bit, ok := r.bits[k]; ok {
		return bit
	}
	if len(r.kinds) >= MaxKinds {
		panic(fmt.Sprintf("depot: too many component kinds (max %d)", MaxKinds))
	}
	bit := uint32(len(r.kinds))
	r.bits[k] = bit
	r.kinds = append(r.kinds, k)
	return bit
}

func (r *Registry) Signature(kinds ...*Kind) Signature {
	var sig Signature
	for _, k := range kinds {
		sig = sig.with(r.Bit(k))
	}
	return sig
}

// CanonicalOrder returns kinds deduplicated and sorted by their bit.
func (r *Registry) CanonicalOrder(kinds ...*Kind) []*Kind {
	out := make([]*Kind, 0, len(kinds))
	for _, k := range kinds {
		r.Bit(k)
		if !slices.Contains(out, k) {
			out = append(out, k)
		}
	}
	slices.SortFunc(out, func(a, b *Kind) int {
		return int(r.bits[a]) - int(r.bits[b])
	})
	return out
}

// KindsOf lists the kinds whose bits are set in sig, in bit order.
func (r *Registry) KindsOf(sig Signature) []*Kind {
	var out []*Kind
	for bit, k := range r.kinds {
		if sig.has(uint32(bit)) {
			out = append(out, k)
		}
	}
	return out
}

func (r *Registry) Len() int {
	return len(r.kinds)
}
