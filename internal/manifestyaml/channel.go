package manifestyaml

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/git-pkgs/mavenchannels/internal/core"
)

type channelDoc struct {
	SchemaVersion    string          `yaml:"schemaVersion"`
	Name             string          `yaml:"name"`
	ID               string          `yaml:"id"`
	Manifest         *manifestRefDoc `yaml:"manifest"`
	Blocklist        *manifestRefDoc `yaml:"blocklist"`
	Repositories     []repositoryDoc `yaml:"repositories"`
	NoStreamStrategy string          `yaml:"resolve-if-no-stream"`
}

type manifestRefDoc struct {
	URL   string       `yaml:"url"`
	Maven *mavenRefDoc `yaml:"maven"`
	GPG   *gpgDoc      `yaml:"gpg"`
}

type gpgDoc struct {
	KeyID string `yaml:"keyId"`
	URL   string `yaml:"url"`
}

type repositoryDoc struct {
	ID  string `yaml:"id"`
	URL string `yaml:"url"`
}

// DecodeChannelDefinition decodes a channel definition document.
func DecodeChannelDefinition(r io.Reader) (*core.ChannelDefinition, error) {
	var doc channelDoc
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding channel: %w", err)
	}
	if doc.SchemaVersion == "" {
		return nil, &core.InvalidChannelError{Reason: "channel is missing schemaVersion"}
	}
	if doc.Manifest == nil {
		return nil, fmt.Errorf("channel %q has no manifest source", doc.ID)
	}

	source, err := manifestSourceFromDoc(*doc.Manifest)
	if err != nil {
		return nil, fmt.Errorf("channel %q: %w", doc.ID, err)
	}

	repos := make([]core.Repository, len(doc.Repositories))
	for i, rd := range doc.Repositories {
		repos[i] = core.Repository{ID: rd.ID, URL: rd.URL}
	}

	strategy := core.NoStreamStrategy(doc.NoStreamStrategy)
	if strategy == "" {
		strategy = core.NoStreamNone
	}

	var blocklistSource *core.ManifestSource
	if doc.Blocklist != nil {
		bs, err := manifestSourceFromDoc(*doc.Blocklist)
		if err != nil {
			return nil, fmt.Errorf("channel %q: blocklist source: %w", doc.ID, err)
		}
		blocklistSource = &bs
	}

	return &core.ChannelDefinition{
		SchemaVersion:    doc.SchemaVersion,
		ID:               doc.ID,
		Name:             doc.Name,
		ManifestSource:   source,
		Repositories:     repos,
		NoStreamStrategy: strategy,
		BlocklistSource:  blocklistSource,
	}, nil
}

func manifestSourceFromDoc(doc manifestRefDoc) (core.ManifestSource, error) {
	switch {
	case doc.URL != "":
		return core.ManifestSource{Kind: core.ManifestSourceURL, URL: doc.URL}, nil
	case doc.Maven != nil:
		src := core.ManifestSource{
			Kind:       core.ManifestSourceMaven,
			GroupID:    doc.Maven.GroupID,
			ArtifactID: doc.Maven.ArtifactID,
			Version:    doc.Maven.Version,
		}
		if doc.GPG != nil {
			src.Kind = core.ManifestSourceSignedMaven
			src.GPG = &core.GPGConfig{KeyID: doc.GPG.KeyID, FingerprintURL: doc.GPG.URL}
		}
		return src, nil
	default:
		return core.ManifestSource{}, fmt.Errorf("manifest source has neither url nor maven coordinates")
	}
}
