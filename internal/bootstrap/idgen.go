package bootstrap

import (
	"encoding/binary"
	"errors"
	"hash/fnv"

	"github.com/jt828/go-graphql-tracing/pkg/idgen"
	idgenImpl "github.com/jt828/go-graphql-tracing/pkg/idgen/implementation"
)

func InitializeIdGenerator(hostname string) (idgen.Generator, error) {
	nodeID, err := PodNodeID(hostname)
	if err != nil {
		return nil, err
	}
	return idgenImpl.NewGenerator(nodeID)
}

// PodNodeID maps a pod hostname onto a snowflake node id in 0-1023.
func PodNodeID(hostname string) (int64, error) {
	if hostname == "" {
		return 0, errors.New("HOSTNAME is not set")
	}

	h := fnv.New64a()
	h.Write([]byte(hostname))
	return int64(binary.BigEndian.Uint64(h.Sum(nil)) % 1024), nil
}
