package core

import "context"

// ArtifactBackend is the injected capability the resolver core uses to
// reach a Maven repository. The core owns only a reference, never a
// concrete implementation — see internal/mavenbackend for the module's own
// HTTP-backed one.
type ArtifactBackend interface {
	// ResolveArtifact fetches a single artifact, returning a path to the
	// downloaded file.
	ResolveArtifact(ctx context.Context, coord ArtifactCoordinate) (string, error)

	// ResolveArtifacts fetches a batch of artifacts. The returned slice is
	// order-preserving with coords.
	ResolveArtifacts(ctx context.Context, coords []ArtifactCoordinate) ([]string, error)

	// GetAllVersions returns every version known to this backend for
	// (groupID, artifactID, extension, classifier).
	GetAllVersions(ctx context.Context, groupID, artifactID, extension, classifier string) ([]string, error)

	// GetMetadataLatestVersion returns the Maven metadata "latest" marker,
	// if present.
	GetMetadataLatestVersion(ctx context.Context, groupID, artifactID string) (version string, ok bool, err error)

	// GetMetadataReleaseVersion returns the Maven metadata "release"
	// marker, if present.
	GetMetadataReleaseVersion(ctx context.Context, groupID, artifactID string) (version string, ok bool, err error)

	// ResolveChannelMetadata resolves a manifest or blocklist source to a
	// local file path, downloading and caching it if necessary.
	ResolveChannelMetadata(ctx context.Context, source ManifestSource) (string, error)

	// Close releases backend resources. Must be safe to call more than
	// once.
	Close() error
}

// BackendFactory creates an ArtifactBackend scoped to a set of
// repositories.
type BackendFactory interface {
	Create(repositories []Repository) (ArtifactBackend, error)
}

// BackendFactoryFunc adapts a plain function to BackendFactory.
type BackendFactoryFunc func(repositories []Repository) (ArtifactBackend, error)

// Create implements BackendFactory.
func (f BackendFactoryFunc) Create(repositories []Repository) (ArtifactBackend, error) {
	return f(repositories)
}
