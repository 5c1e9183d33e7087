// Package shard places objects on storage nodes with a consistent hash ring.
package shard

import (
	"sort"
	"strconv"
	"sync"

	"github.com/spaolacci/murmur3"
)

// DefaultVNodesPerNode balances key spread against ring size.
const DefaultVNodesPerNode = 128

// Ring maps keys to nodes. It is safe for concurrent use.
type Ring struct {
	mu            sync.RWMutex
	vnodes        []VNode // sorted by Token
	nodes         map[string]Node
	vnodesPerNode int
}

func NewRing(vnodesPerNode int) *Ring {
	if vnodesPerNode <= 0 {
		vnodesPerNode = DefaultVNodesPerNode
	}
	return &Ring{
		nodes:         make(map[string]Node),
		vnodesPerNode: vnodesPerNode,
	}
}

// AddNode inserts a node, or refreshes address and status of a known one.
// Token ownership depends on the node ID only.
func (r *Ring) AddNode(node Node) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if node.Status == "" {
		node.Status = NodeStatusHealthy
	}
	if _, exists := r.nodes[node.ID]; exists {
		r.nodes[node.ID] = node
		return
	}
	r.nodes[node.ID] = node

	for i := 0; i < r.vnodesPerNode; i++ {
		r.vnodes = append(r.vnodes, VNode{
			Token:  Token([]byte(node.ID + "#" + strconv.Itoa(i))),
			NodeID: node.ID,
		})
	}
	sort.Slice(r.vnodes, func(i, j int) bool {
		return r.vnodes[i].Token < r.vnodes[j].Token
	})
}

// SetNodeStatus changes status without moving tokens.
func (r *Ring) SetNodeStatus(nodeID string, status NodeStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if node, exists := r.nodes[nodeID]; exists {
		node.Status = status
		r.nodes[nodeID] = node
	}
}

func (r *Ring) RemoveNode(nodeID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.nodes[nodeID]; !exists {
		return
	}
	delete(r.nodes, nodeID)

	kept := r.vnodes[:0]
	for _, vn := range r.vnodes {
		if vn.NodeID != nodeID {
			kept = append(kept, vn)
		}
	}
	r.vnodes = kept
}

// GetNode looks a node up by ID.
func (r *Ring) GetNode(nodeID string) (Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.nodes[nodeID]
	return n, ok
}

// LocateKey returns the primary owner of key, or a zero Node on an empty ring.
func (r *Ring) LocateKey(key []byte) Node {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.vnodes) == 0 {
		return Node{}
	}
	return r.nodes[r.vnodes[r.searchLocked(Token(key))].NodeID]
}

// GetNodes returns all nodes ordered by ID.
func (r *Ring) GetNodes() []Node {
	r.mu.RLock()
	defer r.mu.RUnlock()

	nodes := make([]Node, 0, len(r.nodes))
	for _, n := range r.nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes
}

func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nodes)
}

func (r *Ring) searchLocked(token uint64) int {
	idx := sort.Search(len(r.vnodes), func(i int) bool {
		return r.vnodes[i].Token >= token
	})
	if idx == len(r.vnodes) {
		idx = 0
	}
	return idx
}

// Token hashes data onto the ring.
func Token(data []byte) uint64 {
	return murmur3.Sum64(data)
}
