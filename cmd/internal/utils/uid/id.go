package uid

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

// User ids are snowflakes minted by this process's node. Note ids are UUIDv7,
// so they sort by creation time and never collide across nodes.

var (
	mu   sync.RWMutex
	node *snowflake.Node
)

// Init binds user id generation to 'nodeID' (0-1023). A later call replaces the node.
func Init(nodeID int64) error {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return fmt.Errorf("invalid snowflake node %d: %w", nodeID, err)
	}

	mu.Lock()
	node = n
	mu.Unlock()
	return nil
}

// UserID panics when called before Init.
func UserID() int64 {
	mu.RLock()
	n := node
	mu.RUnlock()

	if n == nil {
		panic("uid: UserID called before Init")
	}
	return n.Generate().Int64()
}

func NoteID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
