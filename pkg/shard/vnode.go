package shard

import (
	"fmt"
)

// Node is one storage node reachable over gRPC.
type Node struct {
	ID     string     `json:"id"`
	Addr   string     `json:"addr"`
	Status NodeStatus `json:"status"`
}

type NodeStatus string

const (
	NodeStatusHealthy   NodeStatus = "healthy"
	NodeStatusUnhealthy NodeStatus = "unhealthy"
	NodeStatusLeft      NodeStatus = "left"
)

func (n Node) String() string {
	return fmt.Sprintf("%s@%s[%s]", n.ID, n.Addr, n.Status)
}

func (n Node) Healthy() bool {
	return n.Status == "" || n.Status == NodeStatusHealthy
}

// VNode is a point on the ring owned by a physical node.
type VNode struct {
	Token  uint64
	NodeID string
}
