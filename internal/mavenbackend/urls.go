// Package mavenbackend is the module's own core.ArtifactBackend: an
// HTTP-backed client for one or more Maven-layout repositories, with
// per-repository circuit breaking, retries, and DNS caching.
package mavenbackend

import (
	"fmt"
	"strings"
)

// groupPath turns a Maven groupId into its repository path segment, e.g.
// "com.google.guava" -> "com/google/guava".
func groupPath(groupID string) string {
	return strings.ReplaceAll(groupID, ".", "/")
}

// artifactPath builds the full repository-relative path to one artifact
// file, following the standard Maven2 layout:
// <groupPath>/<artifactId>/<version>/<artifactId>-<version>[-<classifier>].<extension>
func artifactPath(groupID, artifactID, extension, classifier, version string) string {
	if extension == "" {
		extension = "jar"
	}
	fileName := artifactID + "-" + version
	if classifier != "" {
		fileName += "-" + classifier
	}
	fileName += "." + extension
	return fmt.Sprintf("%s/%s/%s/%s", groupPath(groupID), artifactID, version, fileName)
}

// metadataPath builds the repository-relative path to maven-metadata.xml
// for (groupId, artifactId).
func metadataPath(groupID, artifactID string) string {
	return fmt.Sprintf("%s/%s/maven-metadata.xml", groupPath(groupID), artifactID)
}

// joinURL concatenates a repository base URL and a repository-relative
// path without producing a double slash.
func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// manifestPath is artifactPath specialized to the classifier/extension a
// channel manifest is always published under.
func manifestPath(groupID, artifactID, version string) string {
	return artifactPath(groupID, artifactID, "yaml", "manifest", version)
}
