package core

import "testing"

func TestManifestFindStreamExactBeforeWildcard(t *testing.T) {
	exact := mustStream(t, "org.example", "lib", VersionSelector{Kind: SelectorFixed, Fixed: "1.0"})
	wildcard := mustStream(t, "org.example", "*", VersionSelector{Kind: SelectorFixed, Fixed: "2.0"})

	m, err := NewManifest("1.0.0", "test", "test", "", "", []Stream{wildcard, exact}, nil)
	if err != nil {
		t.Fatal(err)
	}

	s, ok := m.FindStream("org.example", "lib")
	if !ok || s.Selector.Fixed != "1.0" {
		t.Fatalf("expected the exact stream to win, got %+v, %v", s, ok)
	}

	s, ok = m.FindStream("org.example", "other")
	if !ok || s.Selector.Fixed != "2.0" {
		t.Fatalf("expected the wildcard stream for an unmatched artifactId, got %+v, %v", s, ok)
	}

	if _, ok := m.FindStream("org.other", "lib"); ok {
		t.Fatal("expected no match for a different groupId")
	}
}

func TestNewManifestRejectsMissingSchemaVersion(t *testing.T) {
	_, err := NewManifest("", "test", "test", "", "", nil, nil)
	if err == nil {
		t.Fatal("expected an error for a missing schemaVersion")
	}
	if _, ok := err.(*InvalidChannelError); !ok {
		t.Fatalf("expected *InvalidChannelError, got %T", err)
	}
}

func TestNewManifestRejectsDuplicateStreams(t *testing.T) {
	a := mustStream(t, "org.example", "lib", VersionSelector{Kind: SelectorFixed, Fixed: "1.0"})
	b := mustStream(t, "org.example", "lib", VersionSelector{Kind: SelectorFixed, Fixed: "2.0"})

	if _, err := NewManifest("1.0.0", "test", "test", "", "", []Stream{a, b}, nil); err == nil {
		t.Fatal("expected an error for duplicate (groupId, artifactId) streams")
	}
}

func TestNewManifestSortsStreams(t *testing.T) {
	b := mustStream(t, "org.b", "lib", VersionSelector{Kind: SelectorFixed, Fixed: "1.0"})
	a := mustStream(t, "org.a", "lib", VersionSelector{Kind: SelectorFixed, Fixed: "1.0"})

	m, err := NewManifest("1.0.0", "test", "test", "", "", []Stream{b, a}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if m.Streams[0].GroupID != "org.a" || m.Streams[1].GroupID != "org.b" {
		t.Fatalf("expected streams sorted by groupId, got %+v", m.Streams)
	}
}
