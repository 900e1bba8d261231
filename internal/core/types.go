// Package core implements the channel-based Maven artifact version
// resolver: the graph of channels and their transitively required
// manifests, the depth-first search that maps a coordinate to a winning
// stream, the cross-channel latest-version arbitration, and the recording
// of resolutions into a synthetic manifest.
package core

// Repository is a named Maven repository URL. A channel's backend is built
// from the repositories its own definition declares; a channel required by
// sibling id does not inherit the requiring channel's repositories. A
// manifest required by Maven coordinate shares the requiring channel's
// backend.
type Repository struct {
	ID  string
	URL string
}

// ArtifactCoordinate identifies a single Maven artifact, optionally pinned
// to a version. Extension and Classifier may be empty.
type ArtifactCoordinate struct {
	GroupID    string
	ArtifactID string
	Extension  string
	Classifier string
	Version    string
}

// MavenArtifact is a resolved Maven artifact: its coordinate plus the file
// the backend produced for it.
type MavenArtifact struct {
	GroupID    string
	ArtifactID string
	Extension  string
	Classifier string
	Version    string
	File       string
}

// SelectorKind tags which variant of VersionSelector is populated.
type SelectorKind int

const (
	SelectorFixed SelectorKind = iota
	SelectorPattern
	SelectorVersionsSet
)

// VersionSelector is a tagged union: exactly one of Fixed, Pattern, or
// VersionsSet applies, as indicated by Kind. Replaces inheritance over
// "selector" the origin implementation used.
type VersionSelector struct {
	Kind SelectorKind

	// Fixed holds the literal version when Kind == SelectorFixed.
	Fixed string

	// PatternSource is the regular expression source when
	// Kind == SelectorPattern.
	PatternSource string

	// VersionsSet holds the finite candidate set when
	// Kind == SelectorVersionsSet. Reserved for future base-version
	// disambiguation.
	VersionsSet []string
}

// NoStreamStrategy governs the fallback behavior when a channel's own
// manifest and its required channels have no stream matching a coordinate.
type NoStreamStrategy string

const (
	NoStreamNone         NoStreamStrategy = "NONE"
	NoStreamLatest       NoStreamStrategy = "LATEST"
	NoStreamMavenLatest  NoStreamStrategy = "MAVEN_LATEST"
	NoStreamMavenRelease NoStreamStrategy = "MAVEN_RELEASE"
	NoStreamOriginal     NoStreamStrategy = "ORIGINAL"
)

// GPGConfig carries the (currently unverified — signature verification is
// an external collaborator) signing metadata a channel's manifest source
// may declare.
type GPGConfig struct {
	KeyID          string
	FingerprintURL string
}

// ManifestSourceKind tags which form a ChannelDefinition's manifest source
// takes.
type ManifestSourceKind int

const (
	ManifestSourceURL ManifestSourceKind = iota
	ManifestSourceMaven
	ManifestSourceSignedMaven
)

// ManifestSource points at where a channel's manifest document lives.
type ManifestSource struct {
	Kind ManifestSourceKind

	// URL is populated when Kind == ManifestSourceURL.
	URL string

	// GroupID/ArtifactID/Version are populated when Kind is
	// ManifestSourceMaven or ManifestSourceSignedMaven. Version may be
	// the literal string "latest".
	GroupID    string
	ArtifactID string
	Version    string

	// GPG is populated only for ManifestSourceSignedMaven.
	GPG *GPGConfig
}
