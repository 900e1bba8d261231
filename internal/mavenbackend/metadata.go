package mavenbackend

import "encoding/xml"

// mavenMetadata mirrors the subset of maven-metadata.xml this backend
// reads: the full version list plus the latest/release markers.
type mavenMetadata struct {
	XMLName    xml.Name `xml:"metadata"`
	GroupID    string   `xml:"groupId"`
	ArtifactID string   `xml:"artifactId"`
	Versioning struct {
		Latest   string   `xml:"latest"`
		Release  string   `xml:"release"`
		Versions []string `xml:"versions>version"`
	} `xml:"versioning"`
}

func parseMetadata(data []byte) (*mavenMetadata, error) {
	var m mavenMetadata
	if err := xml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
