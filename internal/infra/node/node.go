package node

import (
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Node describes the running bot process
type Node struct {
	ID         string
	Hostname   string
	Version    string
	CommitHash string
	StartedAt  time.Time
}

var Version = "development"
var CommitHash = "unknown"

var (
	nodeOnce sync.Once
	current  Node
)

// GetNodeInfo returns the current node information
func GetNodeInfo() *Node {
	nodeOnce.Do(func() {
		current = Node{
			ID:        uuid.NewString(),
			Hostname:  hostname(),
			StartedAt: time.Now().UTC(),
		}
	})

	info := current
	info.Version = Version
	info.CommitHash = CommitHash
	return &info
}

// Uptime returns how long the process has been running
func (n *Node) Uptime() time.Duration {
	return time.Since(n.StartedAt)
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return "localhost"
	}
	return name
}
