package kcp

import "github.com/google/btree"

// rcvBuf holds the out-of-order arrival set described in spec §3/§4.5:
// segments keyed by sn, sorted ascending, with frequent middle-insert
// (arrivals rarely land at either end) and a frequent "does rcv_nxt
// exist" probe during promotion. A btree.BTree is the direct fit for
// that access pattern named in the "List choices" design note, and
// gives every plausible degree-tunable balanced tree in the example
// pack's dependency set a home.
type rcvBuf struct {
	tree *btree.BTree
}

// segItem adapts *segment to btree.Item, ordering by sequence number
// with the package's wrap-safe comparison.
type segItem struct {
	seg *segment
}

func (a segItem) Less(than btree.Item) bool {
	return seqLess(a.seg.sn, than.(segItem).seg.sn)
}

func newRcvBuf() *rcvBuf {
	return &rcvBuf{tree: btree.New(32)}
}

func (b *rcvBuf) len() int { return b.tree.Len() }

// has reports whether a segment with this sn is already present
// (duplicate detection for parse_data).
func (b *rcvBuf) has(sn uint32) bool {
	return b.tree.Get(segItem{&segment{sn: sn}}) != nil
}

func (b *rcvBuf) insert(s *segment) {
	b.tree.ReplaceOrInsert(segItem{s})
}

func (b *rcvBuf) remove(sn uint32) *segment {
	item := b.tree.Delete(segItem{&segment{sn: sn}})
	if item == nil {
		return nil
	}
	return item.(segItem).seg
}

// min returns the segment with the smallest sn, or nil if empty.
func (b *rcvBuf) min() *segment {
	item := b.tree.Min()
	if item == nil {
		return nil
	}
	return item.(segItem).seg
}

// ascend calls fn for every segment in ascending sn order until fn
// returns false. The hot promotion path in promoteFromRcvBuf uses
// remove/min directly rather than this iterator.
func (b *rcvBuf) ascend(fn func(*segment) bool) {
	b.tree.Ascend(func(i btree.Item) bool {
		return fn(i.(segItem).seg)
	})
}
