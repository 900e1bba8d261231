package core

import (
	"context"
	"testing"
)

func rootFor(t *testing.T, id string, backend *fakeBackend, streams ...Stream) *ChannelInstance {
	m, err := NewManifest("1.0.0", id, id, "", "", streams, nil)
	if err != nil {
		t.Fatal(err)
	}
	return NewChannelInstance(ChannelDefinition{ID: id}, m, backend, NewBlocklist(), nil)
}

func TestSessionCrossChannelArbitration(t *testing.T) {
	backendA := newFakeBackend().withVersions("org.example", "lib", "1.0.0")
	backendB := newFakeBackend().withVersions("org.example", "lib", "2.0.0")

	streamA := mustStream(t, "org.example", "lib", VersionSelector{Kind: SelectorFixed, Fixed: "1.0.0"})
	streamB := mustStream(t, "org.example", "lib", VersionSelector{Kind: SelectorFixed, Fixed: "2.0.0"})

	a := rootFor(t, "a", backendA, streamA)
	b := rootFor(t, "b", backendB, streamB)

	session, err := NewSession([]*ChannelInstance{a, b}, newFakeBackend())
	if err != nil {
		t.Fatal(err)
	}

	artifact, err := session.ResolveMavenArtifact(context.Background(), "org.example", "lib", "", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if artifact.Version != "2.0.0" {
		t.Fatalf("expected the higher version 2.0.0 to win arbitration, got %s", artifact.Version)
	}
}

func TestSessionArbitrationTieBreaksOnEarliestRoot(t *testing.T) {
	backendA := newFakeBackend()
	backendB := newFakeBackend()
	streamA := mustStream(t, "org.example", "lib", VersionSelector{Kind: SelectorFixed, Fixed: "1.0.0"})
	streamB := mustStream(t, "org.example", "lib", VersionSelector{Kind: SelectorFixed, Fixed: "1.0.0"})

	a := rootFor(t, "a", backendA, streamA)
	b := rootFor(t, "b", backendB, streamB)

	session, err := NewSession([]*ChannelInstance{a, b}, newFakeBackend())
	if err != nil {
		t.Fatal(err)
	}

	inst, version, found, err := session.findChannelWithLatestVersion(context.Background(), "org.example", "lib", "", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if !found || version != "1.0.0" || inst != a {
		t.Fatalf("expected the earliest root (a) to win the tie, got inst=%v version=%s", inst, version)
	}
}

func TestSessionRejectsDuplicateRootManifestIDs(t *testing.T) {
	a := rootFor(t, "dup", newFakeBackend())
	b := rootFor(t, "dup", newFakeBackend())

	if _, err := NewSession([]*ChannelInstance{a, b}, newFakeBackend()); err == nil {
		t.Fatal("expected a DuplicateManifestIDError")
	}
}

func TestSessionResolveMavenArtifactNotFound(t *testing.T) {
	a := rootFor(t, "a", newFakeBackend())
	session, err := NewSession([]*ChannelInstance{a}, newFakeBackend())
	if err != nil {
		t.Fatal(err)
	}
	_, err = session.ResolveMavenArtifact(context.Background(), "org.example", "lib", "", "", "")
	if err == nil {
		t.Fatal("expected an UnresolvedMavenArtifactError")
	}
	if _, ok := err.(*UnresolvedMavenArtifactError); !ok {
		t.Fatalf("expected *UnresolvedMavenArtifactError, got %T", err)
	}
}

func TestSessionResolveMavenArtifactsBatched(t *testing.T) {
	backend := newFakeBackend().
		withVersions("org.example", "a", "1.0.0").
		withVersions("org.example", "b", "2.0.0")
	streamA := mustStream(t, "org.example", "a", VersionSelector{Kind: SelectorFixed, Fixed: "1.0.0"})
	streamB := mustStream(t, "org.example", "b", VersionSelector{Kind: SelectorFixed, Fixed: "2.0.0"})
	root := rootFor(t, "root", backend, streamA, streamB)

	session, err := NewSession([]*ChannelInstance{root}, newFakeBackend())
	if err != nil {
		t.Fatal(err)
	}

	results, err := session.ResolveMavenArtifacts(context.Background(), []ArtifactCoordinate{
		{GroupID: "org.example", ArtifactID: "a"},
		{GroupID: "org.example", ArtifactID: "b"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 || results[0].Version != "1.0.0" || results[1].Version != "2.0.0" {
		t.Fatalf("unexpected batch results: %+v", results)
	}
}

func TestSessionRecordingReplay(t *testing.T) {
	backend := newFakeBackend()
	stream := mustStream(t, "org.example", "lib", VersionSelector{Kind: SelectorFixed, Fixed: "1.0.0"})
	root := rootFor(t, "root", backend, stream)

	session, err := NewSession([]*ChannelInstance{root}, newFakeBackend())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := session.ResolveMavenArtifact(context.Background(), "org.example", "lib", "", "", ""); err != nil {
		t.Fatal(err)
	}

	recorded, err := session.GetRecordedChannel("recorded", "recorded")
	if err != nil {
		t.Fatal(err)
	}
	s, ok := recorded.FindStream("org.example", "lib")
	if !ok || s.Selector.Kind != SelectorFixed || s.Selector.Fixed != "1.0.0" {
		t.Fatalf("expected a recorded fixed stream at 1.0.0, got %+v, %v", s, ok)
	}

	replaySession, err := NewSession([]*ChannelInstance{
		NewChannelInstance(ChannelDefinition{ID: "replay"}, recorded, backend, NewBlocklist(), nil),
	}, newFakeBackend())
	if err != nil {
		t.Fatal(err)
	}
	artifact, err := replaySession.ResolveMavenArtifact(context.Background(), "org.example", "lib", "", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if artifact.Version != "1.0.0" {
		t.Fatalf("expected replay to reproduce version 1.0.0, got %s", artifact.Version)
	}
}

func TestSessionCloseIsIdempotentAndClosesEachBackendOnce(t *testing.T) {
	shared := newFakeBackend()
	a := rootFor(t, "a", shared)
	b := rootFor(t, "b", shared)
	direct := newFakeBackend()

	session, err := NewSession([]*ChannelInstance{a, b}, direct)
	if err != nil {
		t.Fatal(err)
	}
	if err := session.Close(); err != nil {
		t.Fatal(err)
	}
	if err := session.Close(); err != nil {
		t.Fatal(err)
	}
	if !shared.closed {
		t.Error("expected the shared backend to be closed")
	}
	if !direct.closed {
		t.Error("expected the direct backend to be closed")
	}
}
