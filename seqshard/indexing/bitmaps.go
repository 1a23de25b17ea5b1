package indexing

import (
	roaring "github.com/RoaringBitmap/roaring"
)

// PositionSet holds roaring bitmaps of corpus positions keyed by Reason.
// Example: Filtered -> bitmap of positions longer than max length.
type PositionSet struct {
	byReason map[Reason]*roaring.Bitmap
}

func NewPositionSet() *PositionSet {
	return &PositionSet{byReason: make(map[Reason]*roaring.Bitmap)}
}

func (ps *PositionSet) Add(r Reason, pos Position) {
	bm, ok := ps.byReason[r]
	if !ok {
		bm = roaring.New()
		ps.byReason[r] = bm
	}
	bm.Add(uint32(pos))
}

func (ps *PositionSet) Contains(r Reason, pos Position) bool {
	bm, ok := ps.byReason[r]
	if !ok {
		return false
	}
	return bm.Contains(uint32(pos))
}

// Count returns the number of positions recorded for r.
func (ps *PositionSet) Count(r Reason) int {
	bm, ok := ps.byReason[r]
	if !ok {
		return 0
	}
	return int(bm.GetCardinality())
}

// Positions returns the positions recorded for r in ascending order.
func (ps *PositionSet) Positions(r Reason) []Position {
	bm, ok := ps.byReason[r]
	if !ok {
		return nil
	}
	raw := bm.ToArray()
	out := make([]Position, len(raw))
	for i, p := range raw {
		out[i] = Position(p)
	}
	return out
}

// Union returns every recorded position regardless of reason.
func (ps *PositionSet) Union() *roaring.Bitmap {
	res := roaring.New()
	for _, bm := range ps.byReason {
		res.Or(bm)
	}
	return res
}

// Overlap returns the positions recorded under both a and b.
func (ps *PositionSet) Overlap(a, b Reason) []Position {
	res := ps.clone(ps.byReason[a])
	if other, ok := ps.byReason[b]; ok {
		res.And(other)
	} else {
		res.Clear()
	}
	raw := res.ToArray()
	out := make([]Position, len(raw))
	for i, p := range raw {
		out[i] = Position(p)
	}
	return out
}

func (ps *PositionSet) clone(b *roaring.Bitmap) *roaring.Bitmap {
	if b == nil {
		return roaring.New()
	}
	c := roaring.New()
	c.Or(b) // copy
	return c
}
