// Package targets holds the landing type for externally ingested target
// records. Parsing KML/KMZ, GeoJSON, CSV, and free-form coordinate strings
// is a Non-goal of the core (§1, §6) — the ingest collaborator does that
// work and hands the core already-normalized records of this shape.
package targets

// Record is one normalized target as produced by the external ingest
// collaborator, regardless of which source format it came from.
type Record struct {
	Name        string
	Latitude    float64
	Longitude   float64
	Description string
}
