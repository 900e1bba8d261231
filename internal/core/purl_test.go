package core

import "testing"

func TestMavenArtifactPURL(t *testing.T) {
	a := MavenArtifact{GroupID: "com.google.guava", ArtifactID: "guava", Version: "32.1.0"}
	got := a.PURL()
	want := "pkg:maven/com.google.guava/guava@32.1.0"
	if got != want {
		t.Fatalf("PURL() = %q, want %q", got, want)
	}
}

func TestMavenArtifactPURLWithClassifier(t *testing.T) {
	a := MavenArtifact{GroupID: "org.example", ArtifactID: "lib", Version: "1.0.0", Extension: "yaml", Classifier: "manifest"}
	got := a.PURL()
	if got != "pkg:maven/org.example/lib@1.0.0?classifier=manifest&type=yaml" {
		t.Fatalf("unexpected PURL: %q", got)
	}
}
