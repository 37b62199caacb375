package implementation

import (
	"encoding/hex"
	"fmt"

	bwmarrin "github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/jt828/go-graphql-tracing/pkg/idgen"
)

type snowflakeGenerator struct {
	node *bwmarrin.Node
}

// NewGenerator derives span ids from a snowflake node and trace ids from
// random UUIDs. nodeID must be within 0-1023.
func NewGenerator(nodeID int64) (idgen.Generator, error) {
	node, err := bwmarrin.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", nodeID, err)
	}
	return &snowflakeGenerator{node: node}, nil
}

func (g *snowflakeGenerator) TraceID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

func (g *snowflakeGenerator) SpanID() string {
	return fmt.Sprintf("%016x", uint64(g.node.Generate().Int64()))
}
