package platformconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/spacereach/tasking-core/internal/coreerr"
)

// FileSet names the five on-disk documents relative to a config root
// directory. Every field is required; Load fails closed if any file
// is missing rather than substituting empty defaults, since a half-loaded
// platform document would silently disable governance checks.
type FileSet struct {
	Satellites      string
	SARModes        string
	GroundStations  string
	MissionSettings string
	BatchPolicies   string
}

// DefaultFileSet returns the conventional file names under root.
func DefaultFileSet(root string) FileSet {
	return FileSet{
		Satellites: filepath.Join(root, "satellites.yaml"),
		SARModes: filepath.Join(root, "sar_modes.yaml"),
		GroundStations: filepath.Join(root, "ground_stations.yaml"),
		MissionSettings: filepath.Join(root, "mission_settings.yaml"),
		BatchPolicies: filepath.Join(root, "batch_policies.yaml"),
	}
}

// Load reads and parses all five documents and computes their config_hash.
func Load(fs FileSet) (*Document, error) {
	doc := &Document{}

	if err := readYAML(fs.Satellites, &doc.Satellites); err != nil {
		return nil, err
	}
	if err := readYAML(fs.SARModes, &doc.SARModes); err != nil {
		return nil, err
	}
	if err := readYAML(fs.GroundStations, &doc.GroundStations); err != nil {
		return nil, err
	}
	if err := readYAML(fs.MissionSettings, &doc.MissionSettings); err != nil {
		return nil, err
	}
	if err := readYAML(fs.BatchPolicies, &doc.BatchPolicies); err != nil {
		return nil, err
	}

	doc.ConfigHash = ComputeHash(doc)
	return doc, nil
}

func readYAML(path string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return coreerr.Validation(fmt.Sprintf("reading %s: %v", path, err))
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return coreerr.Validation(fmt.Sprintf("parsing %s: %v", path, err))
	}
	return nil
}
