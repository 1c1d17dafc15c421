package platformconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/spacereach/tasking-core/internal/coreerr"
)

// SnapshotMetadata is the metadata.json written alongside every config
// snapshot: a plan always records the config_hash it was built against,
// and snapshots let an operator recover the exact document later.
type SnapshotMetadata struct {
	ID         string    `json:"id"`
	ConfigHash string    `json:"config_hash"`
	CreatedAt  time.Time `json:"created_at"`
	Note       string    `json:"note,omitempty"`
}

// SnapshotStore manages config/snapshots/{id}/ directories: each holds a
// copy of the five admin documents plus metadata.json, so a committed plan
// can always be replayed against the exact platform truth it was built
// under even after the live documents change.
type SnapshotStore struct {
	root string
}

// NewSnapshotStore roots snapshot storage at dir (typically
// "<config-root>/snapshots").
func NewSnapshotStore(dir string) *SnapshotStore {
	return &SnapshotStore{root: dir}
}

// Create copies the current FileSet's documents into a fresh snapshot
// directory and returns its id.
func (s *SnapshotStore) Create(fs FileSet, doc *Document, note string) (string, error) {
	id := uuid.NewString()
	dir := filepath.Join(s.root, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", coreerr.Persistence("creating snapshot directory", err)
	}

	for _, pair := range []struct {
		src string
		name string
	}{
		{fs.Satellites, "satellites.yaml"},
		{fs.SARModes, "sar_modes.yaml"},
		{fs.GroundStations, "ground_stations.yaml"},
		{fs.MissionSettings, "mission_settings.yaml"},
		{fs.BatchPolicies, "batch_policies.yaml"},
	} {
		raw, err := os.ReadFile(pair.src)
		if err != nil {
			return "", coreerr.Persistence(fmt.Sprintf("reading %s for snapshot", pair.src), err)
		}
		if err := os.WriteFile(filepath.Join(dir, pair.name), raw, 0o644); err != nil {
			return "", coreerr.Persistence(fmt.Sprintf("writing snapshot %s", pair.name), err)
		}
	}

	meta := SnapshotMetadata{
		ID: id,
		ConfigHash: doc.ConfigHash,
		CreatedAt: nowUTC(),
		Note: note,
	}
	metaRaw, err := json.MarshalIndent(meta, "", " ")
	if err != nil {
		return "", coreerr.Persistence("marshaling snapshot metadata", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "metadata.json"), metaRaw, 0o644); err != nil {
		return "", coreerr.Persistence("writing snapshot metadata", err)
	}
	return id, nil
}

// Metadata loads one snapshot's metadata.json.
func (s *SnapshotStore) Metadata(id string) (*SnapshotMetadata, error) {
	raw, err := os.ReadFile(filepath.Join(s.root, id, "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, coreerr.NotFound("config_snapshot", id)
		}
		return nil, coreerr.Persistence("reading snapshot metadata", err)
	}
	var meta SnapshotMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, coreerr.Persistence("parsing snapshot metadata", err)
	}
	return &meta, nil
}

// Restore loads the document stored in snapshot id, without touching the
// live FileSet.
func (s *SnapshotStore) Restore(id string) (*Document, error) {
	dir := filepath.Join(s.root, id)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, coreerr.NotFound("config_snapshot", id)
	}
	return Load(FileSet{
		Satellites: filepath.Join(dir, "satellites.yaml"),
		SARModes: filepath.Join(dir, "sar_modes.yaml"),
		GroundStations: filepath.Join(dir, "ground_stations.yaml"),
		MissionSettings: filepath.Join(dir, "mission_settings.yaml"),
		BatchPolicies: filepath.Join(dir, "batch_policies.yaml"),
	})
}

// List returns the metadata of every readable snapshot, sorted by creation
// time, newest first.
func (s *SnapshotStore) List() ([]SnapshotMetadata, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, coreerr.Persistence("listing snapshots", err)
	}
	metas := make([]SnapshotMetadata, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		m, err := s.Metadata(e.Name())
		if err != nil {
			continue
		}
		metas = append(metas, *m)
	}
	sort.Slice(metas, func(i, j int) bool { return metas[i].CreatedAt.After(metas[j].CreatedAt) })
	return metas, nil
}

// Delete removes a snapshot directory.
func (s *SnapshotStore) Delete(id string) error {
	dir := filepath.Join(s.root, id)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return coreerr.NotFound("config_snapshot", id)
	}
	if err := os.RemoveAll(dir); err != nil {
		return coreerr.Persistence("deleting snapshot", err)
	}
	return nil
}

// nowUTC is the one clock read in this package; isolated so tests can
// observe CreatedAt without depending on wall-clock time elsewhere.
func nowUTC() time.Time {
	return time.Now().UTC()
}
