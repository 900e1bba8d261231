package core

import packageurl "github.com/package-url/packageurl-go"

// PURL renders a resolved Maven artifact as a Package URL, for logs and
// for the coordinates embedded in a recorded manifest's description.
func (a MavenArtifact) PURL() string {
	var qualifiers packageurl.Qualifiers
	if a.Extension != "" && a.Extension != "jar" {
		qualifiers = append(qualifiers, packageurl.Qualifier{Key: "type", Value: a.Extension})
	}
	if a.Classifier != "" {
		qualifiers = append(qualifiers, packageurl.Qualifier{Key: "classifier", Value: a.Classifier})
	}
	p := packageurl.NewPackageURL(packageurl.TypeMaven, a.GroupID, a.ArtifactID, a.Version, qualifiers, "")
	return p.ToString()
}

// PURL renders a coordinate (which may lack a resolved version) the same
// way.
func (c ArtifactCoordinate) PURL() string {
	var qualifiers packageurl.Qualifiers
	if c.Extension != "" && c.Extension != "jar" {
		qualifiers = append(qualifiers, packageurl.Qualifier{Key: "type", Value: c.Extension})
	}
	if c.Classifier != "" {
		qualifiers = append(qualifiers, packageurl.Qualifier{Key: "classifier", Value: c.Classifier})
	}
	p := packageurl.NewPackageURL(packageurl.TypeMaven, c.GroupID, c.ArtifactID, c.Version, qualifiers, "")
	return p.ToString()
}
