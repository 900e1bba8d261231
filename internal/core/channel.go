package core

import (
	"context"
	"sync"

	"github.com/git-pkgs/mavenchannels/internal/mavenversion"
)

// ChannelDefinition is the static, declared shape of a channel: where its
// manifest comes from, which repositories back it, and how it falls back
// when no stream matches a coordinate. It carries no resolved state.
type ChannelDefinition struct {
	SchemaVersion    string
	ID               string
	Name             string
	ManifestSource   ManifestSource
	Repositories     []Repository
	NoStreamStrategy NoStreamStrategy
	BlocklistSource  *ManifestSource // optional, resolved like a manifest but read as a flat list
}

// ChannelInstance is a ChannelDefinition bound to a resolved Manifest, its
// resolved required instances (forming the requirement DAG), and a live
// backend. All coordinate resolution flows through it.
type ChannelInstance struct {
	Definition ChannelDefinition
	Manifest   *Manifest
	Required   []*ChannelInstance
	Backend    ArtifactBackend
	Blocklist  *Blocklist

	closeOnce sync.Once
	closeErr  error
}

// NewChannelInstance binds a definition to its manifest, backend, and
// already-resolved required instances. The blocklist may be nil.
func NewChannelInstance(def ChannelDefinition, manifest *Manifest, backend ArtifactBackend, blocklist *Blocklist, required []*ChannelInstance) *ChannelInstance {
	return &ChannelInstance{
		Definition: def,
		Manifest:   manifest,
		Required:   required,
		Backend:    backend,
		Blocklist:  blocklist,
	}
}

// resolveOwnStream looks only at this instance's own manifest, not its
// required channels.
func (c *ChannelInstance) resolveOwnStream(groupID, artifactID string) (Stream, bool) {
	if c.Manifest == nil {
		return Stream{}, false
	}
	return c.Manifest.FindStream(groupID, artifactID)
}

// ResolveLatestVersion performs the depth-first search across this
// instance's manifest and then its required manifests, in declaration
// order, returning the version a matching stream selects and the
// ChannelInstance that actually held the matching stream (which may be a
// required descendant, not c itself). Each required instance is resolved
// with this same method, so its own NoStreamStrategy fallback applies before
// the next required instance is tried. If neither c's manifest nor any
// required instance yields a version, it falls back to
// c.Definition.NoStreamStrategy.
func (c *ChannelInstance) ResolveLatestVersion(ctx context.Context, groupID, artifactID, extension, classifier, baseVersion string) (string, *ChannelInstance, bool, error) {
	if stream, ok := c.resolveOwnStream(groupID, artifactID); ok {
		version, matched, err := c.selectFromStream(ctx, stream, groupID, artifactID, extension, classifier)
		if err != nil {
			return "", nil, false, err
		}
		if matched {
			return version, c, true, nil
		}
	}
	for _, req := range c.Required {
		version, channel, found, err := req.ResolveLatestVersion(ctx, groupID, artifactID, extension, classifier, baseVersion)
		if err != nil {
			return "", nil, false, err
		}
		if found {
			return version, channel, true, nil
		}
	}
	return c.fallback(ctx, groupID, artifactID, extension, classifier, baseVersion)
}

// selectFromStream applies a matched stream's selector. Fixed returns its
// literal without touching the backend. Pattern and VersionsSet fetch the
// backend's known versions, drop blocklisted ones, and apply the selector;
// an empty result after a stream promised a match is ArtifactNotResolved,
// not a silent miss (the channel found a stream, it just can't satisfy it).
func (c *ChannelInstance) selectFromStream(ctx context.Context, stream Stream, groupID, artifactID, extension, classifier string) (string, bool, error) {
	if stream.Selector.Kind == SelectorFixed {
		v, ok := stream.Select(nil)
		return v, ok, nil
	}
	all, err := c.Backend.GetAllVersions(ctx, groupID, artifactID, extension, classifier)
	if err != nil {
		return "", false, err
	}
	all = c.Blocklist.Filter(groupID, artifactID, all)
	version, ok := stream.Select(all)
	if !ok {
		return "", false, &UnresolvedMavenArtifactError{
			GroupID: groupID, ArtifactID: artifactID, Extension: extension, Classifier: classifier,
			Reason: ErrArtifactNotResolved,
		}
	}
	return version, true, nil
}

// fallback implements the NoStreamStrategy dispatch table. NONE (and the
// zero value) yields "not found" rather than an error; the caller decides
// whether that is fatal.
func (c *ChannelInstance) fallback(ctx context.Context, groupID, artifactID, extension, classifier, baseVersion string) (string, *ChannelInstance, bool, error) {
	switch c.Definition.NoStreamStrategy {
	case NoStreamLatest:
		all, err := c.Backend.GetAllVersions(ctx, groupID, artifactID, extension, classifier)
		if err != nil {
			return "", nil, false, err
		}
		all = c.Blocklist.Filter(groupID, artifactID, all)
		v, ok := mavenversion.LatestOf(all, nil)
		if !ok {
			return "", nil, false, nil
		}
		return v, c, true, nil
	case NoStreamMavenLatest:
		v, ok, err := c.Backend.GetMetadataLatestVersion(ctx, groupID, artifactID)
		if err != nil {
			return "", nil, false, err
		}
		if !ok || c.Blocklist.Blocks(groupID, artifactID, v) {
			return "", nil, false, nil
		}
		return v, c, true, nil
	case NoStreamMavenRelease:
		v, ok, err := c.Backend.GetMetadataReleaseVersion(ctx, groupID, artifactID)
		if err != nil {
			return "", nil, false, err
		}
		if !ok || c.Blocklist.Blocks(groupID, artifactID, v) {
			return "", nil, false, nil
		}
		return v, c, true, nil
	case NoStreamOriginal:
		if baseVersion == "" || c.Blocklist.Blocks(groupID, artifactID, baseVersion) {
			return "", nil, false, nil
		}
		return baseVersion, c, true, nil
	case NoStreamNone, "":
		return "", nil, false, nil
	default:
		return "", nil, false, nil
	}
}

// ResolveArtifact proxies a single artifact fetch to this channel's
// backend.
func (c *ChannelInstance) ResolveArtifact(ctx context.Context, coord ArtifactCoordinate) (string, error) {
	return c.Backend.ResolveArtifact(ctx, coord)
}

// ResolveArtifacts proxies a batched artifact fetch to this channel's
// backend, preserving coords order.
func (c *ChannelInstance) ResolveArtifacts(ctx context.Context, coords []ArtifactCoordinate) ([]string, error) {
	return c.Backend.ResolveArtifacts(ctx, coords)
}

// Close releases this channel's backend exactly once. Safe to call more
// than once, and safe to call on a ChannelInstance whose Backend is shared
// with another instance (e.g. a Maven-coordinate-required child sharing its
// parent's backend) since the underlying backend's own Close is idempotent
// too.
func (c *ChannelInstance) Close() error {
	c.closeOnce.Do(func() {
		if c.Backend != nil {
			c.closeErr = c.Backend.Close()
		}
	})
	return c.closeErr
}
