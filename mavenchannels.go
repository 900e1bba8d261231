// Package mavenchannels resolves Maven artifact coordinates against a
// tree of channels: curated (streams, required-manifest, blocklist,
// no-stream-fallback) descriptions of which versions of which artifacts a
// consumer is allowed to see. It re-exports the resolver core so callers
// never import internal/core directly.
package mavenchannels

import (
	"bytes"
	"context"

	"github.com/git-pkgs/mavenchannels/internal/core"
	"github.com/git-pkgs/mavenchannels/internal/manifestyaml"
	"github.com/git-pkgs/mavenchannels/internal/mavenbackend"
)

type (
	// Repository is a named Maven repository URL.
	Repository = core.Repository
	// ArtifactCoordinate identifies a Maven artifact, optionally pinned to
	// a version.
	ArtifactCoordinate = core.ArtifactCoordinate
	// MavenArtifact is a resolved artifact: its coordinate plus a local
	// file path.
	MavenArtifact = core.MavenArtifact
	// VersionSelector is a tagged union over a stream's fixed version,
	// version pattern, or version set.
	VersionSelector = core.VersionSelector
	// NoStreamStrategy governs fallback behavior when nothing in a
	// channel's manifest tree matches a coordinate.
	NoStreamStrategy = core.NoStreamStrategy
	// GPGConfig carries a channel's manifest signature metadata.
	GPGConfig = core.GPGConfig
	// ManifestSource points at where a channel's manifest document lives.
	ManifestSource = core.ManifestSource
	// ChannelDefinition is the static, declared shape of a channel.
	ChannelDefinition = core.ChannelDefinition
	// ChannelInstance is a ChannelDefinition bound to a resolved manifest
	// tree and a live backend.
	ChannelInstance = core.ChannelInstance
	// Manifest is a named collection of streams plus required manifests.
	Manifest = core.Manifest
	// Stream maps a coordinate to a version selector.
	Stream = core.Stream
	// ArtifactBackend is the capability a ChannelInstance uses to reach a
	// Maven repository.
	ArtifactBackend = core.ArtifactBackend
	// Session is the entry point: a set of root channel instances plus a
	// recorder tracking every resolution made through it.
	Session = core.Session
	// Blocklist is a per-channel set of disallowed (groupId, artifactId,
	// version-or-pattern) triples.
	Blocklist = core.Blocklist
	// BackendFactory creates an ArtifactBackend scoped to a set of
	// repositories, one per channel.
	BackendFactory = core.BackendFactory
)

const (
	SelectorFixed       = core.SelectorFixed
	SelectorPattern     = core.SelectorPattern
	SelectorVersionsSet = core.SelectorVersionsSet

	NoStreamNone         = core.NoStreamNone
	NoStreamLatest       = core.NoStreamLatest
	NoStreamMavenLatest  = core.NoStreamMavenLatest
	NoStreamMavenRelease = core.NoStreamMavenRelease
	NoStreamOriginal     = core.NoStreamOriginal
)

var (
	// ErrArtifactNotResolved is returned when a channel promises a stream
	// but the backend has no matching version.
	ErrArtifactNotResolved = core.ErrArtifactNotResolved
)

type (
	UnresolvedMavenArtifactError    = core.UnresolvedMavenArtifactError
	UnresolvedRequiredManifestError = core.UnresolvedRequiredManifestError
	CyclicDependencyError           = core.CyclicDependencyError
	DuplicateManifestIDError        = core.DuplicateManifestIDError
	InvalidChannelError             = core.InvalidChannelError
)

// NewStream validates and builds a Stream.
func NewStream(groupID, artifactID string, selector VersionSelector) (Stream, error) {
	return core.NewStream(groupID, artifactID, selector)
}

// NewManifest validates and builds a Manifest.
func NewManifest(schemaVersion, id, name, logicalVersion, description string, streams []Stream, requires []ManifestRequirement) (*Manifest, error) {
	return core.NewManifest(schemaVersion, id, name, logicalVersion, description, streams, requires)
}

// ManifestRequirement references another manifest a manifest transitively
// requires.
type ManifestRequirement = core.ManifestRequirement

// NewBackend builds this module's own HTTP-backed ArtifactBackend over
// repositories.
func NewBackend(repositories []Repository) (ArtifactBackend, error) {
	return mavenbackend.New(repositories)
}

// DefaultBackendFactory is a BackendFactory that builds one HTTP-backed
// mavenbackend.Backend per call. BuildSession requires a non-nil factory;
// this one is not applied automatically.
var DefaultBackendFactory = mavenbackend.Factory

// DecodeManifest decodes a channel manifest document from its YAML wire
// format.
func DecodeManifest(data []byte) (*Manifest, error) {
	return manifestyaml.DecodeManifest(bytes.NewReader(data))
}

// DecodeChannelDefinition decodes a channel definition document from its
// YAML wire format.
func DecodeChannelDefinition(data []byte) (*ChannelDefinition, error) {
	return manifestyaml.DecodeChannelDefinition(bytes.NewReader(data))
}

// NewSession builds a Session over the given root channel instances and a
// backend spanning every repository, for direct (channel-bypassing)
// lookups.
func NewSession(roots []*ChannelInstance, directBackend ArtifactBackend) (*Session, error) {
	return core.NewSession(roots, directBackend)
}

// BuildSession constructs a Session directly from channel definitions: it
// unions their repositories into a combined backend, builds each channel's
// own backend and manifest tree, wires sibling and Maven-coordinate
// requirements together, and derives session roots from whichever instances
// no other channel claimed as a dependency.
func BuildSession(ctx context.Context, defs []ChannelDefinition, factory BackendFactory, decodeManifest func([]byte) (*Manifest, error), decodeBlocklist func([]byte) (*Blocklist, error)) (*Session, error) {
	return core.BuildSession(ctx, defs, factory, decodeManifest, decodeBlocklist)
}

// DecodeBlocklist decodes a channel's blocklist document from its YAML wire
// format.
func DecodeBlocklist(data []byte) (*Blocklist, error) {
	return manifestyaml.DecodeBlocklist(bytes.NewReader(data))
}

// ResolveMavenArtifact resolves and downloads a single coordinate.
func ResolveMavenArtifact(ctx context.Context, session *Session, groupID, artifactID, extension, classifier, baseVersion string) (*MavenArtifact, error) {
	return session.ResolveMavenArtifact(ctx, groupID, artifactID, extension, classifier, baseVersion)
}
