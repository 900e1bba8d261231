package core

import (
	"context"
	"fmt"
	"os"
	"sync"
)

// ManifestDecoder turns a raw manifest document into a Manifest. Kept as an
// injected function, not a hard dependency on any particular serialization
// package, so core never imports internal/manifestyaml (that package
// imports core, not the reverse).
type ManifestDecoder func([]byte) (*Manifest, error)

// ManifestResolver loads manifests referenced by Maven coordinates or by a
// channel's manifest source. It does not walk `requires` lists or detect
// cycles; BuildSession does that. It caches
// every manifest it loads under its (groupId, artifactId, version), per
// §4.3's "fetch via backend; parse; cache" contract, so the same
// requirement reached by two different paths in the graph is fetched once.
type ManifestResolver struct {
	Backend ArtifactBackend
	Decode  ManifestDecoder

	mu    sync.Mutex
	cache map[[3]string]*Manifest
}

// LoadByCoordinate fetches and decodes the manifest published at
// (groupID, artifactID, version) with classifier "manifest" and extension
// "yaml", per ChannelManifest.CLASSIFIER / ChannelManifest.EXTENSION.
// Repeated calls with the same coordinate return the cached Manifest
// without touching the backend again.
func (r *ManifestResolver) LoadByCoordinate(ctx context.Context, groupID, artifactID, version string) (*Manifest, error) {
	key := [3]string{groupID, artifactID, version}

	r.mu.Lock()
	if r.cache == nil {
		r.cache = make(map[[3]string]*Manifest)
	}
	if m, ok := r.cache[key]; ok {
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()

	path, err := r.Backend.ResolveArtifact(ctx, ArtifactCoordinate{
		GroupID:    groupID,
		ArtifactID: artifactID,
		Extension:  ManifestExtension,
		Classifier: ManifestClassifier,
		Version:    version,
	})
	if err != nil {
		return nil, fmt.Errorf("resolving manifest %s:%s:%s: %w", groupID, artifactID, version, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s:%s:%s: %w", groupID, artifactID, version, err)
	}
	m, err := r.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding manifest %s:%s:%s: %w", groupID, artifactID, version, err)
	}

	r.mu.Lock()
	r.cache[key] = m
	r.mu.Unlock()
	return m, nil
}

// LoadManifestSource resolves whichever form a ChannelDefinition's
// manifestSource (or blocklistSource-shaped reference) takes: a Maven
// coordinate goes through LoadByCoordinate's cache, a plain URL is fetched
// and decoded directly via the backend's ResolveChannelMetadata.
func (r *ManifestResolver) LoadManifestSource(ctx context.Context, source ManifestSource) (*Manifest, error) {
	if source.Kind == ManifestSourceMaven || source.Kind == ManifestSourceSignedMaven {
		return r.LoadByCoordinate(ctx, source.GroupID, source.ArtifactID, source.Version)
	}
	path, err := r.Backend.ResolveChannelMetadata(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("resolving manifest source %s: %w", source.URL, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest source %s: %w", source.URL, err)
	}
	m, err := r.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding manifest source %s: %w", source.URL, err)
	}
	return m, nil
}

// dfsColor tracks white/gray/black state during a depth-first walk of the
// requirement graph, shared by BuildSession's wiring pass.
type dfsColor int

const (
	dfsWhite dfsColor = iota
	dfsGray
	dfsBlack
)
