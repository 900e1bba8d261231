// Package manifestyaml decodes channel definitions and manifests from
// their YAML wire format into internal/core types. It is the only package
// in this module that knows the on-disk shape of either document; core
// stays serialization-agnostic.
package manifestyaml

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/git-pkgs/mavenchannels/internal/core"
)

type manifestDoc struct {
	SchemaVersion  string       `yaml:"schemaVersion"`
	ID             string       `yaml:"id"`
	Name           string       `yaml:"name"`
	LogicalVersion string       `yaml:"logical-version"`
	Description    string       `yaml:"description"`
	Requires       []requireDoc `yaml:"requires"`
	Streams        []streamDoc  `yaml:"streams"`
}

type requireDoc struct {
	ID    string       `yaml:"id"`
	Maven *mavenRefDoc `yaml:"maven"`
}

type mavenRefDoc struct {
	GroupID    string `yaml:"groupId"`
	ArtifactID string `yaml:"artifactId"`
	Version    string `yaml:"version"`
}

type streamDoc struct {
	GroupID        string   `yaml:"groupId"`
	ArtifactID     string   `yaml:"artifactId"`
	Version        string   `yaml:"version"`
	VersionPattern string   `yaml:"versionPattern"`
	Versions       []string `yaml:"versions"`
}

// DecodeManifest decodes a channel manifest document.
func DecodeManifest(r io.Reader) (*core.Manifest, error) {
	var doc manifestDoc
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}

	streams := make([]core.Stream, 0, len(doc.Streams))
	for _, sd := range doc.Streams {
		selector, err := selectorFromStreamDoc(sd)
		if err != nil {
			return nil, fmt.Errorf("stream %s:%s: %w", sd.GroupID, sd.ArtifactID, err)
		}
		s, err := core.NewStream(sd.GroupID, sd.ArtifactID, selector)
		if err != nil {
			return nil, err
		}
		streams = append(streams, s)
	}

	requires := make([]core.ManifestRequirement, 0, len(doc.Requires))
	for _, rd := range doc.Requires {
		req := core.ManifestRequirement{ID: rd.ID}
		if rd.Maven != nil {
			req.Maven = &core.ArtifactCoordinate{
				GroupID:    rd.Maven.GroupID,
				ArtifactID: rd.Maven.ArtifactID,
				Version:    rd.Maven.Version,
			}
		}
		requires = append(requires, req)
	}

	return core.NewManifest(doc.SchemaVersion, doc.ID, doc.Name, doc.LogicalVersion, doc.Description, streams, requires)
}

func selectorFromStreamDoc(sd streamDoc) (core.VersionSelector, error) {
	populated := 0
	if sd.Version != "" {
		populated++
	}
	if sd.VersionPattern != "" {
		populated++
	}
	if len(sd.Versions) > 0 {
		populated++
	}
	if populated != 1 {
		return core.VersionSelector{}, &core.InvalidChannelError{Reason: fmt.Sprintf("exactly one of version, versionPattern, or versions must be set, got %d", populated)}
	}

	switch {
	case sd.Version != "":
		return core.VersionSelector{Kind: core.SelectorFixed, Fixed: sd.Version}, nil
	case sd.VersionPattern != "":
		return core.VersionSelector{Kind: core.SelectorPattern, PatternSource: sd.VersionPattern}, nil
	default:
		return core.VersionSelector{Kind: core.SelectorVersionsSet, VersionsSet: sd.Versions}, nil
	}
}

// EncodeManifest is the inverse of DecodeManifest, used to publish a
// session's recorded channel as a replayable document.
func EncodeManifest(w io.Writer, m *core.Manifest) error {
	doc := manifestDoc{
		SchemaVersion:  m.SchemaVersion,
		ID:             m.ID,
		Name:           m.Name,
		LogicalVersion: m.LogicalVersion,
		Description:    m.Description,
	}
	for _, s := range m.Streams {
		sd := streamDoc{GroupID: s.GroupID, ArtifactID: s.ArtifactID}
		switch s.Selector.Kind {
		case core.SelectorFixed:
			sd.Version = s.Selector.Fixed
		case core.SelectorPattern:
			sd.VersionPattern = s.Selector.PatternSource
		case core.SelectorVersionsSet:
			sd.Versions = s.Selector.VersionsSet
		}
		doc.Streams = append(doc.Streams, sd)
	}
	for _, req := range m.Requires {
		rd := requireDoc{ID: req.ID}
		if req.Maven != nil {
			rd.Maven = &mavenRefDoc{GroupID: req.Maven.GroupID, ArtifactID: req.Maven.ArtifactID, Version: req.Maven.Version}
		}
		doc.Requires = append(doc.Requires, rd)
	}

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(doc)
}
