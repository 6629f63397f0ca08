package model

// SnapshotVersion is bumped on incompatible layout changes.
const SnapshotVersion = 1

// Snapshot is the single durable document the tracker persists and
// restores. Rolling aggregates are derived state and are recomputed from
// the swap histories after restore.
type Snapshot struct {
	Version            int               `json:"version"`
	LastProcessedBlock uint64            `json:"last_processed_block"`
	Launches           []Launch          `json:"launches"`
	Histories          map[string][]Swap `json:"histories"`
	SavedAt            string            `json:"saved_at"`
}
