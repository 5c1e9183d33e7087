// Package gossip keeps a storage node's view of its peers current through
// memberlist and mirrors it into a placement ring.
package gossip

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/anthanhphan/go-file-gateway/pkg/shard"
	"github.com/anthanhphan/gosdk/logger"
	"github.com/hashicorp/memberlist"
)

// leaveTimeout bounds the graceful leave broadcast.
const leaveTimeout = 5 * time.Second

type Config struct {
	NodeID     string
	BindAddr   string
	BindPort   int
	ServerPort int
	// DataDir is advertised so operators can see where a node keeps objects.
	DataDir string
}

// nodeMeta travels with every gossip message about this node.
type nodeMeta struct {
	ServerPort int    `json:"server_port"`
	DataDir    string `json:"data_dir,omitempty"`
}

// Membership joins the storage cluster and maintains the ring.
type Membership struct {
	list *memberlist.Memberlist
	ring *shard.Ring
	cfg  Config
}

var (
	_ memberlist.Delegate      = (*Membership)(nil)
	_ memberlist.EventDelegate = (*Membership)(nil)
)

func New(cfg Config, ring *shard.Ring) (*Membership, error) {
	mlConf := memberlist.DefaultLANConfig()
	mlConf.Name = cfg.NodeID
	mlConf.BindAddr = cfg.BindAddr
	mlConf.BindPort = cfg.BindPort
	mlConf.AdvertisePort = cfg.BindPort
	mlConf.LogOutput = io.Discard

	m := &Membership{ring: ring, cfg: cfg}
	mlConf.Events = m
	mlConf.Delegate = m

	list, err := memberlist.Create(mlConf)
	if err != nil {
		return nil, fmt.Errorf("failed to create memberlist: %w", err)
	}
	m.list = list

	ring.AddNode(m.LocalNode())
	return m, nil
}

func (m *Membership) Join(seeds []string) error {
	if len(seeds) == 0 {
		return nil
	}
	if _, err := m.list.Join(seeds); err != nil {
		return fmt.Errorf("failed to join cluster: %w", err)
	}
	return nil
}

func (m *Membership) Leave() error {
	if err := m.list.Leave(leaveTimeout); err != nil {
		return err
	}
	return m.list.Shutdown()
}

// Members returns the live members as storage nodes.
func (m *Membership) Members() []shard.Node {
	members := m.list.Members()
	nodes := make([]shard.Node, 0, len(members))
	for _, member := range members {
		nodes = append(nodes, toNode(member))
	}
	return nodes
}

func (m *Membership) LocalNode() shard.Node {
	return shard.Node{
		ID:     m.cfg.NodeID,
		Addr:   net.JoinHostPort(m.advertiseHost(), strconv.Itoa(m.cfg.ServerPort)),
		Status: shard.NodeStatusHealthy,
	}
}

func (m *Membership) NodeMeta(limit int) []byte {
	data, err := json.Marshal(nodeMeta{ServerPort: m.cfg.ServerPort, DataDir: m.cfg.DataDir})
	if err != nil || len(data) > limit {
		logger.Warnw("gossip node meta dropped", "size", len(data), "limit", limit)
		return nil
	}
	return data
}

func (m *Membership) NotifyMsg([]byte)                           {}
func (m *Membership) GetBroadcasts(overhead, limit int) [][]byte { return nil }
func (m *Membership) LocalState(join bool) []byte                { return nil }
func (m *Membership) MergeRemoteState(buf []byte, join bool)     {}

func (m *Membership) NotifyJoin(node *memberlist.Node) {
	n := toNode(node)
	logger.Infow("Storage node joined", "id", n.ID, "addr", n.Addr)
	m.ring.AddNode(n)
}

// NotifyLeave keeps the node's tokens so objects placed there stay addressable
// while it is away.
func (m *Membership) NotifyLeave(node *memberlist.Node) {
	logger.Infow("Storage node left", "id", node.Name)
	m.ring.SetNodeStatus(node.Name, shard.NodeStatusLeft)
}

func (m *Membership) NotifyUpdate(node *memberlist.Node) {
	m.ring.AddNode(toNode(node))
}

func toNode(member *memberlist.Node) shard.Node {
	port := int(member.Port)
	if meta := decodeMeta(member.Meta); meta.ServerPort > 0 {
		port = meta.ServerPort
	}
	return shard.Node{
		ID:     member.Name,
		Addr:   net.JoinHostPort(member.Addr.String(), strconv.Itoa(port)),
		Status: shard.NodeStatusHealthy,
	}
}

func decodeMeta(raw []byte) nodeMeta {
	var meta nodeMeta
	if len(raw) == 0 {
		return meta
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		logger.Warnw("failed to decode node metadata", "error", err.Error())
		return nodeMeta{}
	}
	return meta
}

// advertiseHost prefers memberlist's advertised address when bound to a
// wildcard address.
func (m *Membership) advertiseHost() string {
	host := m.cfg.BindAddr
	if ip := net.ParseIP(host); host != "" && (ip == nil || !ip.IsUnspecified()) {
		return host
	}
	if m.list == nil || m.list.LocalNode() == nil {
		return host
	}
	adv := m.list.LocalNode().Addr.String()
	if ip := net.ParseIP(adv); adv == "" || (ip != nil && ip.IsUnspecified()) {
		return host
	}
	return adv
}
