package classify

import "sync/atomic"

// Slot states. A slot moves from empty to full exactly once; full slots are
// immutable until the whole table is abandoned by growth.
const (
	slotEmpty uint32 = iota
	slotFull
)

// slot is one open-addressing bucket. state is the publication marker:
// writers fill hash/result/typ first and store slotFull last (release), so a
// reader that loads slotFull (acquire) is guaranteed to see the paired
// fields, never a zero-initialized result.
type slot[H comparable] struct {
	state  atomic.Uint32
	hash   uint64
	result int32
	typ    H
}

// table is an immutable-length probe array. len(slots) is always a power of
// two; mask == len(slots)-1.
type table[H comparable] struct {
	mask  uint64
	slots []slot[H]
}

func newTable[H comparable](buckets int) *table[H] {
	return &table[H]{
		mask:  uint64(buckets - 1),
		slots: make([]slot[H], buckets),
	}
}

// probe walks the linear probe sequence for hash. It returns (result, _,
// true) on a match, or (_, idx, false) at the first empty slot, where idx is
// where an insert for this handle belongs. Safe without the write lock: it
// only dereferences fields of slots it has observed as full.
//
// Scanning every bucket without hitting either outcome is impossible while
// the load factor stays below 1/4; reaching it means the invariant is broken
// and any answer would be a wrong classification, so probe panics.
func (t *table[H]) probe(hash uint64, h H) (int32, uint64, bool) {
	i := hash & t.mask
	for n := uint64(0); n <= t.mask; n++ {
		s := &t.slots[i]
		if s.state.Load() == slotEmpty {
			return 0, i, false
		}
		if s.hash == hash && s.typ == h {
			return s.result, i, true
		}
		i = (i + 1) & t.mask
	}
	panic("classify: probe exhausted the table; load-factor invariant violated")
}

// place inserts during growth, while the destination table is still private
// to the growing writer. Publication of the whole table happens afterwards
// via the cache's atomic table pointer. Always terminates: the grown table
// has at least four slots per surviving entry.
func (t *table[H]) place(hash uint64, h H, result int32) {
	i := hash & t.mask
	for {
		s := &t.slots[i]
		if s.state.Load() == slotEmpty {
			s.hash = hash
			s.result = result
			s.typ = h
			s.state.Store(slotFull)
			return
		}
		i = (i + 1) & t.mask
	}
}
