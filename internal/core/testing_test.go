package core

import (
	"context"
	"fmt"
	"testing"
)

// fakeBackend is a minimal in-memory ArtifactBackend used across this
// package's tests. It never touches disk or the network.
type fakeBackend struct {
	versions map[[2]string][]string
	latest   map[[2]string]string
	release  map[[2]string]string
	closed   bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		versions: make(map[[2]string][]string),
		latest:   make(map[[2]string]string),
		release:  make(map[[2]string]string),
	}
}

func (f *fakeBackend) withVersions(groupID, artifactID string, versions ...string) *fakeBackend {
	f.versions[[2]string{groupID, artifactID}] = versions
	return f
}

func (f *fakeBackend) withLatest(groupID, artifactID, version string) *fakeBackend {
	f.latest[[2]string{groupID, artifactID}] = version
	return f
}

func (f *fakeBackend) withRelease(groupID, artifactID, version string) *fakeBackend {
	f.release[[2]string{groupID, artifactID}] = version
	return f
}

func (f *fakeBackend) ResolveArtifact(_ context.Context, coord ArtifactCoordinate) (string, error) {
	return fmt.Sprintf("/cache/%s/%s/%s/%s-%s.%s", coord.GroupID, coord.ArtifactID, coord.Version, coord.ArtifactID, coord.Version, orDefault(coord.Extension, "jar")), nil
}

func (f *fakeBackend) ResolveArtifacts(ctx context.Context, coords []ArtifactCoordinate) ([]string, error) {
	out := make([]string, len(coords))
	for i, c := range coords {
		file, err := f.ResolveArtifact(ctx, c)
		if err != nil {
			return nil, err
		}
		out[i] = file
	}
	return out, nil
}

func (f *fakeBackend) GetAllVersions(_ context.Context, groupID, artifactID, _, _ string) ([]string, error) {
	return f.versions[[2]string{groupID, artifactID}], nil
}

func (f *fakeBackend) GetMetadataLatestVersion(_ context.Context, groupID, artifactID string) (string, bool, error) {
	v, ok := f.latest[[2]string{groupID, artifactID}]
	return v, ok, nil
}

func (f *fakeBackend) GetMetadataReleaseVersion(_ context.Context, groupID, artifactID string) (string, bool, error) {
	v, ok := f.release[[2]string{groupID, artifactID}]
	return v, ok, nil
}

func (f *fakeBackend) ResolveChannelMetadata(_ context.Context, _ ManifestSource) (string, error) {
	return "", fmt.Errorf("not implemented in fakeBackend")
}

func (f *fakeBackend) Close() error {
	f.closed = true
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func mustStream(t *testing.T, groupID, artifactID string, selector VersionSelector) Stream {
	t.Helper()
	s, err := NewStream(groupID, artifactID, selector)
	if err != nil {
		t.Fatalf("NewStream(%s, %s): %v", groupID, artifactID, err)
	}
	return s
}
