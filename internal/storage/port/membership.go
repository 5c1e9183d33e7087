package port

import (
	"github.com/anthanhphan/go-file-gateway/pkg/shard"
)

// MembershipPort is cluster membership and failure detection.
type MembershipPort interface {
	Join(seeds []string) error
	Leave() error
	Members() []shard.Node
	LocalNode() shard.Node
}
