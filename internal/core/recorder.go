package core

import (
	"strings"
	"sync"
)

// Recorder accumulates every (groupID, artifactID, version) a Session
// resolves, in first-resolved order, and can synthesize a replay manifest
// from them: a manifest whose streams all use SelectorFixed, so resolving
// against it reproduces exactly what was recorded.
type Recorder struct {
	mu      sync.Mutex
	order   []ArtifactCoordinate
	indices map[[2]string]int // (groupID, artifactID) -> index into order
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{indices: make(map[[2]string]int)}
}

// Record notes that (groupID, artifactID) resolved to version. Idempotent:
// re-recording the same coordinate overwrites its version in place rather
// than appending a duplicate entry, keeping the recorded manifest's stream
// list free of duplicate (groupId, artifactId) pairs.
func (r *Recorder) Record(groupID, artifactID, version string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := [2]string{groupID, artifactID}
	if idx, ok := r.indices[key]; ok {
		r.order[idx].Version = version
		return
	}
	r.indices[key] = len(r.order)
	r.order = append(r.order, ArtifactCoordinate{GroupID: groupID, ArtifactID: artifactID, Version: version})
}

// Manifest synthesizes a fixed-version manifest from everything recorded so
// far, in first-recorded order (NewManifest sorts it lexicographically, as
// it does for every manifest).
func (r *Recorder) Manifest(id, name string) (*Manifest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	streams := make([]Stream, 0, len(r.order))
	purls := make([]string, 0, len(r.order))
	for _, c := range r.order {
		s, err := NewStream(c.GroupID, c.ArtifactID, VersionSelector{Kind: SelectorFixed, Fixed: c.Version})
		if err != nil {
			return nil, err
		}
		streams = append(streams, s)
		purls = append(purls, c.PURL())
	}
	description := "recorded channel"
	if len(purls) > 0 {
		description = "recorded channel: " + strings.Join(purls, ", ")
	}
	return NewManifest("1.0.0", id, name, "", description, streams, nil)
}
