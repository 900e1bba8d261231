package core

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/git-pkgs/mavenchannels/internal/mavenversion"
)

// Session is the entry point client code uses: a set of root channel
// instances, a recorder tracking every resolution, and a backend spanning
// every repository across every channel for direct (channel-bypassing)
// lookups. Mirrors org.wildfly.channel.ChannelSession.
type Session struct {
	roots         []*ChannelInstance
	directBackend ArtifactBackend
	recorder      *Recorder

	closeOnce sync.Once
	closeErr  error
}

// NewSession validates that no two root channels share a non-empty
// manifest id — duplicate ids among *transitively required* manifests are
// not checked, matching ChannelSession.validateNoDuplicatedManifests,
// which only inspects the roots it was constructed with.
func NewSession(roots []*ChannelInstance, directBackend ArtifactBackend) (*Session, error) {
	seen := make(map[string]struct{}, len(roots))
	for _, r := range roots {
		if r.Manifest == nil || r.Manifest.ID == "" {
			continue
		}
		if _, dup := seen[r.Manifest.ID]; dup {
			return nil, &DuplicateManifestIDError{ID: r.Manifest.ID}
		}
		seen[r.Manifest.ID] = struct{}{}
	}
	return &Session{roots: roots, directBackend: directBackend, recorder: NewRecorder()}, nil
}

// BuildSession implements the §4.5 Session construction contract end to
// end: union every channel's repositories into a combined backend used for
// direct fetches; build one ChannelInstance per definition, each with its
// own backend built from its own repositories via factory; wire each
// instance's manifest `requires` list, resolving sibling references to the
// matching ChannelInstance (marking it a dependency, so it is excluded from
// the roots) and Maven-coordinate references by fetching the referenced
// manifest through the requiring instance's own backend; then hand the
// resulting roots to NewSession, which performs the final duplicate-id
// validation.
func BuildSession(ctx context.Context, defs []ChannelDefinition, factory BackendFactory, decodeManifest ManifestDecoder, decodeBlocklist BlocklistDecoder) (*Session, error) {
	combinedBackend, err := factory.Create(unionRepositories(defs))
	if err != nil {
		return nil, fmt.Errorf("building combined backend: %w", err)
	}

	instances := make([]*ChannelInstance, len(defs))
	resolverByInstance := make(map[*ChannelInstance]*ManifestResolver, len(defs))
	byManifestID := make(map[string]*ChannelInstance, len(defs))

	for i, def := range defs {
		backend, err := factory.Create(def.Repositories)
		if err != nil {
			return nil, fmt.Errorf("building backend for channel %q: %w", def.ID, err)
		}
		resolver := &ManifestResolver{Backend: backend, Decode: decodeManifest}
		manifest, err := resolver.LoadManifestSource(ctx, def.ManifestSource)
		if err != nil {
			return nil, fmt.Errorf("loading manifest for channel %q: %w", def.ID, err)
		}
		blocklist, err := loadBlocklistSource(ctx, backend, decodeBlocklist, def.BlocklistSource)
		if err != nil {
			return nil, fmt.Errorf("loading blocklist for channel %q: %w", def.ID, err)
		}

		inst := &ChannelInstance{Definition: def, Manifest: manifest, Backend: backend, Blocklist: blocklist}
		instances[i] = inst
		resolverByInstance[inst] = resolver
		if manifest != nil && manifest.ID != "" {
			byManifestID[manifest.ID] = inst
		}
	}

	isDependency := make(map[*ChannelInstance]bool, len(instances))
	colors := make(map[string]dfsColor)
	var path []string

	var wire func(inst *ChannelInstance, key string) error
	wire = func(inst *ChannelInstance, key string) error {
		if inst.Manifest == nil {
			return nil
		}
		switch colors[key] {
		case dfsGray:
			return &CyclicDependencyError{Path: append(append([]string{}, path...), key)}
		case dfsBlack:
			return nil
		}
		colors[key] = dfsGray
		path = append(path, key)
		resolver := resolverByInstance[inst]

		for _, req := range inst.Manifest.Requires {
			if req.ID != "" {
				if sibling, ok := byManifestID[req.ID]; ok {
					isDependency[sibling] = true
					inst.Required = append(inst.Required, sibling)
					if err := wire(sibling, manifestKey(sibling.Manifest, "def:"+sibling.Definition.ID)); err != nil {
						return err
					}
					continue
				}
			}
			if req.Maven != nil {
				childManifest, err := resolver.LoadByCoordinate(ctx, req.Maven.GroupID, req.Maven.ArtifactID, req.Maven.Version)
				if err != nil {
					return err
				}
				child := &ChannelInstance{Definition: inst.Definition, Manifest: childManifest, Backend: inst.Backend, Blocklist: inst.Blocklist}
				inst.Required = append(inst.Required, child)
				resolverByInstance[child] = resolver
				childKey := manifestKey(childManifest, mavenCoordinateKey(req.Maven.GroupID, req.Maven.ArtifactID, req.Maven.Version))
				if err := wire(child, childKey); err != nil {
					return err
				}
				continue
			}
			return &UnresolvedRequiredManifestError{RequirementID: req.ID}
		}

		colors[key] = dfsBlack
		path = path[:len(path)-1]
		return nil
	}

	for _, inst := range instances {
		if err := wire(inst, manifestKey(inst.Manifest, "def:"+inst.Definition.ID)); err != nil {
			return nil, err
		}
	}

	roots := make([]*ChannelInstance, 0, len(instances))
	for _, inst := range instances {
		if !isDependency[inst] {
			roots = append(roots, inst)
		}
	}

	return NewSession(roots, combinedBackend)
}

// manifestKey identifies a manifest along a requirement path for cycle
// detection: its own id when it has one, else fallback. fallback must
// itself already be unique to this manifest's position in the graph — the
// declaring channel's definition id for a root or sibling-required
// instance, or the required Maven coordinate for a maven:-required child,
// since two distinct coordinate-resolved manifests can otherwise share the
// same (empty) id and the same requiring channel's definition id.
func manifestKey(m *Manifest, fallback string) string {
	if m.ID != "" {
		return "id:" + m.ID
	}
	return fallback
}

// mavenCoordinateKey identifies a manifest resolved by Maven coordinate,
// for use as manifestKey's fallback when that manifest itself has no id.
func mavenCoordinateKey(groupID, artifactID, version string) string {
	return "gav:" + groupID + ":" + artifactID + ":" + version
}

// unionRepositories collects every repository declared by any channel
// definition, in first-seen order, deduplicated by id.
func unionRepositories(defs []ChannelDefinition) []Repository {
	seen := make(map[string]struct{})
	var repos []Repository
	for _, def := range defs {
		for _, r := range def.Repositories {
			if _, ok := seen[r.ID]; ok {
				continue
			}
			seen[r.ID] = struct{}{}
			repos = append(repos, r)
		}
	}
	return repos
}

// loadBlocklistSource resolves a channel's optional blocklist source the
// same way a manifest source is resolved: through the channel's own
// backend, then decoded by the injected BlocklistDecoder. A nil source
// yields an empty (never-blocking) Blocklist.
func loadBlocklistSource(ctx context.Context, backend ArtifactBackend, decode BlocklistDecoder, source *ManifestSource) (*Blocklist, error) {
	if source == nil {
		return NewBlocklist(), nil
	}
	path, err := backend.ResolveChannelMetadata(ctx, *source)
	if err != nil {
		return nil, fmt.Errorf("resolving blocklist source: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading blocklist source: %w", err)
	}
	return decode(data)
}

// findChannelWithLatestVersion arbitrates across every root channel,
// returning the instance that actually held the matching stream (which may
// be a required descendant of a root, not the root itself) and the version
// it won with. Ties (equal versions under mavenversion.Compare) are broken
// in favor of the earliest root, a deliberate fix of the origin
// implementation's map-iteration-order dependent tie-break.
func (s *Session) findChannelWithLatestVersion(ctx context.Context, groupID, artifactID, extension, classifier, baseVersion string) (*ChannelInstance, string, bool, error) {
	var best *ChannelInstance
	bestVersion := ""
	for _, root := range s.roots {
		v, channel, found, err := root.ResolveLatestVersion(ctx, groupID, artifactID, extension, classifier, baseVersion)
		if err != nil {
			return nil, "", false, err
		}
		if !found {
			continue
		}
		if best == nil || mavenversion.Compare(v, bestVersion) > 0 {
			best = channel
			bestVersion = v
		}
	}
	return best, bestVersion, best != nil, nil
}

// ResolveMavenArtifact resolves a single coordinate against the channel
// tree and downloads it from the winning channel's backend. baseVersion is
// passed through to each channel's resolution, where only the
// NoStreamOriginal fallback uses it; stream selectors ignore it.
func (s *Session) ResolveMavenArtifact(ctx context.Context, groupID, artifactID, extension, classifier, baseVersion string) (*MavenArtifact, error) {
	inst, version, found, err := s.findChannelWithLatestVersion(ctx, groupID, artifactID, extension, classifier, baseVersion)
	if err != nil {
		return nil, err
	}
	if !found {
		slog.Warn("no channel matched coordinate", "groupId", groupID, "artifactId", artifactID)
		return nil, &UnresolvedMavenArtifactError{GroupID: groupID, ArtifactID: artifactID, Extension: extension, Classifier: classifier}
	}
	coord := ArtifactCoordinate{GroupID: groupID, ArtifactID: artifactID, Extension: extension, Classifier: classifier, Version: version}
	slog.Debug("arbitration winner", "purl", coord.PURL(), "channel", inst.Definition.ID)
	file, err := inst.ResolveArtifact(ctx, coord)
	if err != nil {
		return nil, &UnresolvedMavenArtifactError{GroupID: groupID, ArtifactID: artifactID, Extension: extension, Classifier: classifier, Reason: err}
	}
	s.recorder.Record(groupID, artifactID, version)
	return &MavenArtifact{GroupID: groupID, ArtifactID: artifactID, Extension: extension, Classifier: classifier, Version: version, File: file}, nil
}

// ResolveMavenArtifacts resolves a batch of coordinates. Per coordinate it
// arbitrates the winning channel using the coordinate's own baseVersion,
// then groups winners by channel and issues one batched
// ArtifactBackend.ResolveArtifacts call per channel, run concurrently
// across channels: the overall result order need not reflect fetch order,
// only coords order, which is restored at the end. This reproduces
// ChannelSession.splitArtifactsPerChannel, including its quirk of
// re-deriving each per-channel query coordinate from the arbitration
// result rather than the caller's original coordinate.
func (s *Session) ResolveMavenArtifacts(ctx context.Context, coords []ArtifactCoordinate) ([]*MavenArtifact, error) {
	type winner struct {
		inst  *ChannelInstance
		coord ArtifactCoordinate // resolved version, same g:a:ext:classifier as the caller's coord
	}

	winners := make([]winner, len(coords))
	byInst := make(map[*ChannelInstance][]int) // instance -> indices into coords/winners
	order := make([]*ChannelInstance, 0)

	for i, c := range coords {
		inst, version, found, err := s.findChannelWithLatestVersion(ctx, c.GroupID, c.ArtifactID, c.Extension, c.Classifier, c.Version)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, &UnresolvedMavenArtifactError{GroupID: c.GroupID, ArtifactID: c.ArtifactID, Extension: c.Extension, Classifier: c.Classifier}
		}
		resolved := c
		resolved.Version = version
		winners[i] = winner{inst: inst, coord: resolved}
		if _, seen := byInst[inst]; !seen {
			order = append(order, inst)
		}
		byInst[inst] = append(byInst[inst], i)
	}

	files := make([]string, len(coords))
	group, gctx := errgroup.WithContext(ctx)
	for _, inst := range order {
		inst := inst
		indices := byInst[inst]
		group.Go(func() error {
			batch := make([]ArtifactCoordinate, len(indices))
			for j, idx := range indices {
				batch[j] = winners[idx].coord
			}
			resolvedFiles, err := inst.ResolveArtifacts(gctx, batch)
			if err != nil {
				return err
			}
			for j, idx := range indices {
				files[idx] = resolvedFiles[j]
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	results := make([]*MavenArtifact, len(coords))
	for i, c := range coords {
		s.recorder.Record(c.GroupID, c.ArtifactID, winners[i].coord.Version)
		results[i] = &MavenArtifact{
			GroupID:    c.GroupID,
			ArtifactID: c.ArtifactID,
			Extension:  c.Extension,
			Classifier: c.Classifier,
			Version:    winners[i].coord.Version,
			File:       files[i],
		}
	}
	return results, nil
}

// ResolveDirectMavenArtifact resolves a coordinate with an already-known
// version straight from the union of every repository in the session,
// bypassing channels and streams entirely.
func (s *Session) ResolveDirectMavenArtifact(ctx context.Context, coord ArtifactCoordinate) (*MavenArtifact, error) {
	file, err := s.directBackend.ResolveArtifact(ctx, coord)
	if err != nil {
		return nil, &UnresolvedMavenArtifactError{GroupID: coord.GroupID, ArtifactID: coord.ArtifactID, Extension: coord.Extension, Classifier: coord.Classifier, Reason: err}
	}
	s.recorder.Record(coord.GroupID, coord.ArtifactID, coord.Version)
	return &MavenArtifact{
		GroupID:    coord.GroupID,
		ArtifactID: coord.ArtifactID,
		Extension:  coord.Extension,
		Classifier: coord.Classifier,
		Version:    coord.Version,
		File:       file,
	}, nil
}

// ResolveDirectMavenArtifacts is the batch form of ResolveDirectMavenArtifact.
func (s *Session) ResolveDirectMavenArtifacts(ctx context.Context, coords []ArtifactCoordinate) ([]*MavenArtifact, error) {
	files, err := s.directBackend.ResolveArtifacts(ctx, coords)
	if err != nil {
		return nil, err
	}
	results := make([]*MavenArtifact, len(coords))
	for i, c := range coords {
		s.recorder.Record(c.GroupID, c.ArtifactID, c.Version)
		results[i] = &MavenArtifact{
			GroupID:    c.GroupID,
			ArtifactID: c.ArtifactID,
			Extension:  c.Extension,
			Classifier: c.Classifier,
			Version:    c.Version,
			File:       files[i],
		}
	}
	return results, nil
}

// FindLatestMavenArtifactVersion runs channel arbitration without
// downloading anything.
func (s *Session) FindLatestMavenArtifactVersion(ctx context.Context, groupID, artifactID string) (string, error) {
	_, version, found, err := s.findChannelWithLatestVersion(ctx, groupID, artifactID, "", "", "")
	if err != nil {
		return "", err
	}
	if !found {
		return "", &UnresolvedMavenArtifactError{GroupID: groupID, ArtifactID: artifactID}
	}
	return version, nil
}

// GetRecordedChannel synthesizes a replayable manifest from everything
// this session has resolved so far.
func (s *Session) GetRecordedChannel(id, name string) (*Manifest, error) {
	return s.recorder.Manifest(id, name)
}

// Close closes every channel instance reachable from the session's roots,
// plus the direct backend, once, regardless of how many times Close is
// called. Each ChannelInstance.Close is itself idempotent and safe to call
// on instances that share a backend, so no separate backend-dedup bookkeeping
// is needed here.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		seen := make(map[*ChannelInstance]struct{})
		var walk func(*ChannelInstance)
		walk = func(inst *ChannelInstance) {
			if _, ok := seen[inst]; ok {
				return
			}
			seen[inst] = struct{}{}
			if err := inst.Close(); err != nil && s.closeErr == nil {
				s.closeErr = err
			}
			for _, req := range inst.Required {
				walk(req)
			}
		}
		for _, r := range s.roots {
			walk(r)
		}
		if s.directBackend != nil {
			if err := s.directBackend.Close(); err != nil && s.closeErr == nil {
				s.closeErr = err
			}
		}
	})
	return s.closeErr
}
