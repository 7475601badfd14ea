package observe

// node carries the version bookkeeping every container embeds. Containers
// own their elements; an element that is itself a container holds a
// non-owning back-reference to its parent so mutations propagate upward.
type node struct {
	clock  *Clock
	ver    int64
	parent *node
}

func (n *node) setOwner(p *node) { n.parent = p }

// bump stamps a fresh version on the node and every ancestor. The walk
// tolerates a container placed into its own ancestor chain: a node is
// stamped at most once per bump, so a self-referential chain terminates
// instead of looping forever.
func (n *node) bump() {
	var visited []*node
	for cur := n; cur != nil; cur = cur.parent {
		if seen(visited, cur) {
			return
		}
		visited = append(visited, cur)
		ck := cur.clock
		if ck == nil {
			ck = &defaultClock
		}
		cur.ver = ck.Next()
	}
}

func seen(visited []*node, n *node) bool {
	for _, v := range visited {
		if v == n {
			return true
		}
	}
	return false
}

// adopt wires v's back-reference when v is itself a container.
func adopt(parent *node, v any) {
	if o, ok := v.(interface{ setOwner(*node) }); ok {
		o.setOwner(parent)
	}
}

// orphan clears v's back-reference.
func orphan(v any) {
	if o, ok := v.(interface{ setOwner(*node) }); ok {
		o.setOwner(nil)
	}
}
