// Package project persists design snapshots.
package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/example/glowplan/internal/calibrate"
	"github.com/example/glowplan/internal/scene"
)

// Version is the snapshot format written by this package. Version 1
// snapshots, which predate measurement lines, are still read.
const Version = 2

var (
	// ErrNotFound is returned by store internals when a project has no
	// snapshot. Store.Load reports it as a nil snapshot instead.
	ErrNotFound = errors.New("project not found")
	// ErrUnsupportedVersion is returned for snapshots newer than Version.
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
	// ErrInvalidID is returned for project ids that are not safe file names.
	ErrInvalidID = errors.New("invalid project id")
)

// Snapshot is the persisted state of one design.
type Snapshot struct {
	LightStrings     []scene.LightString     `json:"lightStrings"`
	SingleLights     []scene.SingularLight   `json:"singleLights"`
	Decor            []scene.DecorShape      `json:"decor"`
	ReferenceScale   *calibrate.Reference    `json:"referenceScale,omitempty"`
	MeasurementLines []scene.MeasurementLine `json:"measurementLines"`
	Version          int                     `json:"version"`
}

// Store loads and saves snapshots by project id.
type Store interface {
	// Load returns nil, nil when the project has never been saved.
	Load(ctx context.Context, projectID string) (*Snapshot, error)
	Save(ctx context.Context, projectID string, snap *Snapshot) error
	// List returns the saved project ids in ascending order.
	List(ctx context.Context) ([]string, error)
}

var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// ValidateID checks that id can be used as a file name.
func ValidateID(id string) error {
	if !idPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// Encode writes snap as indented JSON, stamping the current Version.
func Encode(w io.Writer, snap *Snapshot) error {
	out := *snap
	out.Version = Version
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(&out)
}

// Decode reads a snapshot written by any supported version.
func Decode(r io.Reader) (*Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return upgrade(&snap)
}

func upgrade(snap *Snapshot) (*Snapshot, error) {
	switch {
	case snap.Version > Version:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, snap.Version)
	case snap.Version <= 1:
		snap.MeasurementLines = nil
	}
	snap.Version = Version
	return snap, nil
}

// Clone returns a deep copy of snap.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{
		LightStrings:     make([]scene.LightString, len(s.LightStrings)),
		SingleLights:     append([]scene.SingularLight(nil), s.SingleLights...),
		Decor:            append([]scene.DecorShape(nil), s.Decor...),
		MeasurementLines: make([]scene.MeasurementLine, len(s.MeasurementLines)),
		Version:          s.Version,
	}
	for i, ls := range s.LightStrings {
		if ls.Spacing != nil {
			v := *ls.Spacing
			ls.Spacing = &v
		}
		out.LightStrings[i] = ls
	}
	for i, m := range s.MeasurementLines {
		if m.LengthInFeet != nil {
			v := *m.LengthInFeet
			m.LengthInFeet = &v
		}
		out.MeasurementLines[i] = m
	}
	if s.ReferenceScale != nil {
		ref := *s.ReferenceScale
		out.ReferenceScale = &ref
	}
	return out
}

// Empty reports whether the snapshot holds no entities and no calibration.
func (s *Snapshot) Empty() bool {
	return len(s.LightStrings) == 0 && len(s.SingleLights) == 0 && len(s.Decor) == 0 &&
		len(s.MeasurementLines) == 0 && s.ReferenceScale == nil
}
