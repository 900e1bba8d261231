package manifestyaml

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/git-pkgs/mavenchannels/internal/core"
)

type blocklistDoc struct {
	SchemaVersion string              `yaml:"schemaVersion"`
	Blocks        []blocklistEntryDoc `yaml:"blocks"`
}

type blocklistEntryDoc struct {
	GroupID        string `yaml:"groupId"`
	ArtifactID     string `yaml:"artifactId"`
	Versions       string `yaml:"versions"`
	VersionPattern string `yaml:"versionPattern"`
}

// DecodeBlocklist decodes a channel's blocklist document: a flat list of
// exact or pattern-based (groupId, artifactId, version) exclusions, read
// the way a Manifest's requires/streams lists are, but with no selector
// semantics — every entry only ever removes candidates, never picks one.
func DecodeBlocklist(r io.Reader) (*core.Blocklist, error) {
	var doc blocklistDoc
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding blocklist: %w", err)
	}
	if doc.SchemaVersion == "" {
		return nil, &core.InvalidChannelError{Reason: "blocklist is missing schemaVersion"}
	}

	blocklist := core.NewBlocklist()
	for _, entry := range doc.Blocks {
		if entry.GroupID == "" || entry.ArtifactID == "" {
			return nil, &core.InvalidChannelError{Reason: "blocklist entry is missing groupId or artifactId"}
		}
		switch {
		case entry.VersionPattern != "":
			if err := blocklist.AddPattern(entry.GroupID, entry.ArtifactID, entry.VersionPattern); err != nil {
				return nil, err
			}
		case entry.Versions != "":
			blocklist.AddExact(entry.GroupID, entry.ArtifactID, entry.Versions)
		default:
			return nil, &core.InvalidChannelError{Reason: fmt.Sprintf("blocklist entry %s:%s has neither versions nor versionPattern", entry.GroupID, entry.ArtifactID)}
		}
	}
	return blocklist, nil
}
