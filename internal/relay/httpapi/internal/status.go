package internal

import (
	"time"

	"cfguard-bot/internal/infra/node"
)

type NodeResponse struct {
	ID         string    `json:"id"`
	Hostname   string    `json:"hostname"`
	Version    string    `json:"version"`
	CommitHash string    `json:"commit_hash"`
	StartedAt  time.Time `json:"started_at"`
	UptimeSec  int64     `json:"uptime_seconds"`
}

type StatusResponse struct {
	Node           NodeResponse `json:"node"`
	PendingImports int          `json:"pending_imports"`
	LocalEvents    int64        `json:"local_events"`
}

func ToNodeResponse(info *node.Node) NodeResponse {
	return NodeResponse{
		ID:         info.ID,
		Hostname:   info.Hostname,
		Version:    info.Version,
		CommitHash: info.CommitHash,
		StartedAt:  info.StartedAt,
		UptimeSec:  int64(info.Uptime().Seconds()),
	}
}
