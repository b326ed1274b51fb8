package node

// Edge is an immutable directed dependency between two nodes. A pipe edge
// also forwards the source's result to the target.
type Edge struct {
	from string
	to   string
	pipe bool
}

// Source returns the id of the node the edge starts at.
func (e Edge) Source() string { return e.from }

// Target returns the id of the node the edge points to.
func (e Edge) Target() string { return e.to }

// IsPipe reports whether the edge forwards the source's result.
func (e Edge) IsPipe() bool { return e.pipe }

// Link records the edge from -> to on both endpoints in one step. It
// returns false, changing nothing, when the ordered pair is already linked;
// the pipe flag of the first call wins.
//
// A self-edge is recorded like any other and makes the stream cyclic.
func Link(from, to *Node, pipe bool) bool {
	unlock := lockPair(from, to)
	defer unlock()

	if _, ok := from.succs[to.id]; ok {
		return false
	}
	from.succs[to.id] = Edge{from: from.id, to: to.id, pipe: pipe}
	from.succOrder = append(from.succOrder, to.id)
	to.preds[from.id] = struct{}{}
	to.predOrder = append(to.predOrder, from.id)
	return true
}

// lockPair write-locks both nodes in id order.
func lockPair(a, b *Node) func() {
	if a == b {
		a.mu.Lock()
		return a.mu.Unlock
	}
	first, second := a, b
	if b.id < a.id {
		first, second = b, a
	}
	first.mu.Lock()
	second.mu.Lock()
	return func() {
		second.mu.Unlock()
		first.mu.Unlock()
	}
}
