package domain

type ImportRequest struct {
	Project  string
	FileName string
	Content  []byte
}

type ImportResult struct {
	Imported   int
	SnapshotID string
}

type SnapshotStatus struct {
	Project    string
	SnapshotID string
	Status     string
}

type ProjectSnapshots struct {
	Project   string
	Snapshots []string
}
