package mavenbackend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArtifactPath(t *testing.T) {
	got := artifactPath("com.google.guava", "guava", "jar", "", "32.1.0")
	assert.Equal(t, "com/google/guava/guava/32.1.0/guava-32.1.0.jar", got)
}

func TestArtifactPathWithClassifier(t *testing.T) {
	got := artifactPath("org.example", "lib", "yaml", "manifest", "1.0.0")
	assert.Equal(t, "org/example/lib/1.0.0/lib-1.0.0-manifest.yaml", got)
}

func TestArtifactPathDefaultsExtensionToJar(t *testing.T) {
	got := artifactPath("org.example", "lib", "", "", "1.0.0")
	assert.Equal(t, "org/example/lib/1.0.0/lib-1.0.0.jar", got)
}

func TestMetadataPath(t *testing.T) {
	got := metadataPath("org.apache.commons", "commons-lang3")
	assert.Equal(t, "org/apache/commons/commons-lang3/maven-metadata.xml", got)
}

func TestManifestPath(t *testing.T) {
	got := manifestPath("org.example", "channel", "1.0.0")
	assert.Equal(t, "org/example/channel/1.0.0/channel-1.0.0-manifest.yaml", got)
}

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "https://repo1.maven.org/maven2/a/b", joinURL("https://repo1.maven.org/maven2/", "/a/b"))
	assert.Equal(t, "https://repo1.maven.org/maven2/a/b", joinURL("https://repo1.maven.org/maven2", "a/b"))
}
