package shard

// Candidates returns up to n distinct nodes for key in ring order, starting
// at the primary owner. Unhealthy nodes are skipped when healthyOnly is set.
func (r *Ring) Candidates(key []byte, n int, healthyOnly bool) []Node {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.vnodes) == 0 || n <= 0 {
		return nil
	}
	if n > len(r.nodes) {
		n = len(r.nodes)
	}

	out := make([]Node, 0, n)
	seen := make(map[string]struct{}, n)
	start := r.searchLocked(Token(key))
	for i := 0; i < len(r.vnodes) && len(out) < n; i++ {
		vn := r.vnodes[(start+i)%len(r.vnodes)]
		if _, dup := seen[vn.NodeID]; dup {
			continue
		}
		seen[vn.NodeID] = struct{}{}

		node := r.nodes[vn.NodeID]
		if healthyOnly && !node.Healthy() {
			continue
		}
		out = append(out, node)
	}
	return out
}
