package storagerpc

import (
	"context"

	"github.com/anthanhphan/go-file-gateway/pkg/shard"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

// MetadataObjectKey names the metadata entry holding a Put's key.
const MetadataObjectKey = "x-object-key"

// MaxMessageSize is applied on both ends; the default 4MB is below the
// gateway's upload limit.
const MaxMessageSize = 64 << 20

func WithObjectKey(ctx context.Context, key string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, MetadataObjectKey, key)
}

func ObjectKeyFromContext(ctx context.Context) (string, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", false
	}
	values := md.Get(MetadataObjectKey)
	if len(values) != 1 || values[0] == "" {
		return "", false
	}
	return values[0], true
}

// EncodeTopology renders nodes as {"nodes":[{"id","addr","status"}]}.
func EncodeTopology(nodes []shard.Node) (*structpb.Struct, error) {
	list := make([]any, 0, len(nodes))
	for _, n := range nodes {
		list = append(list, map[string]any{
			"id":     n.ID,
			"addr":   n.Addr,
			"status": string(n.Status),
		})
	}
	return structpb.NewStruct(map[string]any{"nodes": list})
}

// DecodeTopology skips entries without an id.
func DecodeTopology(s *structpb.Struct) []shard.Node {
	values := s.GetFields()["nodes"].GetListValue().GetValues()
	nodes := make([]shard.Node, 0, len(values))
	for _, v := range values {
		fields := v.GetStructValue().GetFields()
		id := fields["id"].GetStringValue()
		if id == "" {
			continue
		}
		nodes = append(nodes, shard.Node{
			ID:     id,
			Addr:   fields["addr"].GetStringValue(),
			Status: shard.NodeStatus(fields["status"].GetStringValue()),
		})
	}
	return nodes
}
