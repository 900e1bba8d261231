package core

import (
	"sort"
	"strings"
)

// ManifestRequirement references another manifest this one transitively
// pulls in, either by sibling id within the same session or by Maven
// coordinates resolved through a ManifestResolver.
type ManifestRequirement struct {
	ID    string
	Maven *ArtifactCoordinate
}

// Manifest is a named collection of streams plus the manifests it requires.
// Mirrors org.wildfly.channel.ChannelManifest field-for-field.
type Manifest struct {
	SchemaVersion  string
	ID             string
	Name           string
	LogicalVersion string
	Description    string
	Streams        []Stream
	Requires       []ManifestRequirement
}

// ManifestClassifier and ManifestExtension are the Maven coordinate suffixes a manifest is
// published under, per ChannelManifest.CLASSIFIER / .EXTENSION.
const (
	ManifestClassifier = "manifest"
	ManifestExtension  = "yaml"
)

// NewManifest validates and sorts streams by (groupId, artifactId),
// rejecting duplicate (groupId, artifactId) pairs.
func NewManifest(schemaVersion, id, name, logicalVersion, description string, streams []Stream, requires []ManifestRequirement) (*Manifest, error) {
	if schemaVersion == "" {
		return nil, &InvalidChannelError{Reason: "manifest is missing schemaVersion"}
	}

	sorted := make([]Stream, len(streams))
	copy(sorted, streams)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].GroupID != sorted[j].GroupID {
			return sorted[i].GroupID < sorted[j].GroupID
		}
		return sorted[i].ArtifactID < sorted[j].ArtifactID
	})

	seen := make(map[[2]string]struct{}, len(sorted))
	for _, s := range sorted {
		key := [2]string{s.GroupID, s.ArtifactID}
		if _, dup := seen[key]; dup {
			return nil, &InvalidChannelError{Reason: "duplicate stream for " + s.GroupID + ":" + s.ArtifactID}
		}
		seen[key] = struct{}{}
	}

	return &Manifest{
		SchemaVersion:  schemaVersion,
		ID:             id,
		Name:           name,
		LogicalVersion: logicalVersion,
		Description:    description,
		Streams:        sorted,
		Requires:       requires,
	}, nil
}

// String renders the manifest's id followed by the PURL of every stream
// pinned to a fixed version (pattern and version-set streams have no single
// coordinate to render). Used for log lines and debug output.
func (m *Manifest) String() string {
	var b strings.Builder
	b.WriteString(m.ID)
	for _, s := range m.Streams {
		if s.Selector.Kind != SelectorFixed {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(ArtifactCoordinate{GroupID: s.GroupID, ArtifactID: s.ArtifactID, Version: s.Selector.Fixed}.PURL())
	}
	return b.String()
}

// FindStream implements exact-before-wildcard: an exact (groupId,
// artifactId) stream is preferred over a (groupId, "*") one, matching
// ChannelManifest.findStreamFor.
func (m *Manifest) FindStream(groupID, artifactID string) (Stream, bool) {
	var wildcard Stream
	haveWildcard := false
	for _, s := range m.Streams {
		if s.GroupID != groupID {
			continue
		}
		if s.ArtifactID == artifactID {
			return s, true
		}
		if s.ArtifactID == "*" {
			wildcard = s
			haveWildcard = true
		}
	}
	return wildcard, haveWildcard
}
