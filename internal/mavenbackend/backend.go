package mavenbackend

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cenk/backoff"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/dnscache"
	circuit "github.com/rubyist/circuitbreaker"
	"golang.org/x/xerrors"

	"github.com/git-pkgs/mavenchannels/internal/core"
)

// Backend is the module's HTTP-backed core.ArtifactBackend. It resolves
// artifacts against an ordered list of repositories, trying each in turn,
// with a circuit breaker per repository (keyed by repository id) so a downed mirror doesn't
// stall every lookup behind it.
type Backend struct {
	repositories []core.Repository
	client       *retryablehttp.Client
	resolver     *dnscache.Resolver
	cacheDir     string

	mu       sync.Mutex
	breakers map[string]*circuit.Breaker
}

// New builds a Backend over repositories, in preference order.
func New(repositories []core.Repository) (*Backend, error) {
	cacheDir, err := os.MkdirTemp("", "mavenchannels-cache-*")
	if err != nil {
		return nil, xerrors.Errorf("creating artifact cache dir: %w", err)
	}

	resolver := &dnscache.Resolver{}
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			resolver.Refresh(true)
		}
	}()

	dialer := &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}
	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			host, port, err := net.SplitHostPort(addr)
			if err != nil {
				return nil, err
			}
			ips, err := resolver.LookupHost(ctx, host)
			if err != nil {
				return nil, err
			}
			var lastErr error
			for _, ip := range ips {
				conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
				if err == nil {
					return conn, nil
				}
				lastErr = err
			}
			return nil, xerrors.Errorf("dialing %s: %w", addr, lastErr)
		},
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	client := retryablehttp.NewClient()
	client.HTTPClient = &http.Client{Timeout: 2 * time.Minute, Transport: transport}
	client.RetryMax = 3
	client.Logger = nil

	return &Backend{
		repositories: repositories,
		client:       client,
		resolver:     resolver,
		cacheDir:     cacheDir,
		breakers:     make(map[string]*circuit.Breaker),
	}, nil
}

func (b *Backend) breakerFor(repoID string) *circuit.Breaker {
	b.mu.Lock()
	defer b.mu.Unlock()
	if br, ok := b.breakers[repoID]; ok {
		return br
	}
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 30 * time.Second
	expBackoff.MaxInterval = 5 * time.Minute
	expBackoff.Multiplier = 2.0
	br := circuit.NewBreakerWithOptions(&circuit.Options{
		BackOff:    expBackoff,
		ShouldTrip: circuit.ThresholdTripFunc(5),
	})
	b.breakers[repoID] = br
	return br
}

// fetch tries every repository in order, skipping any with an open circuit
// breaker, and returns the bytes of the first repository-relative path
// that resolves with a 200.
func (b *Backend) fetch(ctx context.Context, path string) ([]byte, error) {
	var lastErr error
	for _, repo := range b.repositories {
		br := b.breakerFor(repo.ID)
		if !br.Ready() {
			lastErr = fmt.Errorf("circuit breaker open for repository %s", repo.ID)
			continue
		}

		var body []byte
		err := br.Call(func() error {
			data, err := b.get(ctx, joinURL(repo.URL, path))
			if err != nil {
				return err
			}
			body = data
			return nil
		}, 0)
		if err == nil {
			return body, nil
		}
		slog.Debug("maven backend fetch failed", "repository", repo.ID, "path", path, "error", err)
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no repositories configured")
	}
	return nil, lastErr
}

func (b *Backend) get(ctx context.Context, url string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, xerrors.Errorf("building request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", "mavenchannels/1.0")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, xerrors.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", url, core.ErrArtifactNotResolved)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, xerrors.Errorf("reading body of %s: %w", url, err)
	}
	return data, nil
}

// ResolveArtifact implements core.ArtifactBackend.
func (b *Backend) ResolveArtifact(ctx context.Context, coord core.ArtifactCoordinate) (string, error) {
	var relPath string
	if coord.Extension == core.ManifestExtension && coord.Classifier == core.ManifestClassifier {
		relPath = manifestPath(coord.GroupID, coord.ArtifactID, coord.Version)
	} else {
		relPath = artifactPath(coord.GroupID, coord.ArtifactID, coord.Extension, coord.Classifier, coord.Version)
	}
	data, err := b.fetch(ctx, relPath)
	if err != nil {
		return "", err
	}

	dest := filepath.Join(b.cacheDir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", xerrors.Errorf("preparing cache dir for %s: %w", relPath, err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", xerrors.Errorf("caching %s: %w", relPath, err)
	}
	return dest, nil
}

// ResolveArtifacts implements core.ArtifactBackend. It resolves
// sequentially: concurrency across a batch is the session's concern (see
// internal/core.Session.ResolveMavenArtifacts), not the backend's.
func (b *Backend) ResolveArtifacts(ctx context.Context, coords []core.ArtifactCoordinate) ([]string, error) {
	files := make([]string, len(coords))
	for i, c := range coords {
		file, err := b.ResolveArtifact(ctx, c)
		if err != nil {
			return nil, err
		}
		files[i] = file
	}
	return files, nil
}

// GetAllVersions implements core.ArtifactBackend by reading
// maven-metadata.xml. Extension and classifier are accepted for interface
// symmetry but unused: Maven metadata enumerates versions per (groupId,
// artifactId), not per artifact file.
func (b *Backend) GetAllVersions(ctx context.Context, groupID, artifactID, _, _ string) ([]string, error) {
	data, err := b.fetch(ctx, metadataPath(groupID, artifactID))
	if err != nil {
		return nil, err
	}
	meta, err := parseMetadata(data)
	if err != nil {
		return nil, xerrors.Errorf("parsing maven-metadata.xml for %s:%s: %w", groupID, artifactID, err)
	}
	return meta.Versioning.Versions, nil
}

// GetMetadataLatestVersion implements core.ArtifactBackend.
func (b *Backend) GetMetadataLatestVersion(ctx context.Context, groupID, artifactID string) (string, bool, error) {
	data, err := b.fetch(ctx, metadataPath(groupID, artifactID))
	if err != nil {
		return "", false, err
	}
	meta, err := parseMetadata(data)
	if err != nil {
		return "", false, xerrors.Errorf("parsing maven-metadata.xml for %s:%s: %w", groupID, artifactID, err)
	}
	return meta.Versioning.Latest, meta.Versioning.Latest != "", nil
}

// GetMetadataReleaseVersion implements core.ArtifactBackend.
func (b *Backend) GetMetadataReleaseVersion(ctx context.Context, groupID, artifactID string) (string, bool, error) {
	data, err := b.fetch(ctx, metadataPath(groupID, artifactID))
	if err != nil {
		return "", false, err
	}
	meta, err := parseMetadata(data)
	if err != nil {
		return "", false, xerrors.Errorf("parsing maven-metadata.xml for %s:%s: %w", groupID, artifactID, err)
	}
	return meta.Versioning.Release, meta.Versioning.Release != "", nil
}

// ResolveChannelMetadata implements core.ArtifactBackend. Both a plain URL
// source and a Maven-coordinate source are downloaded and cached the same
// way an ordinary artifact is, so callers can always os.ReadFile the
// returned path regardless of which kind of source a channel declared.
func (b *Backend) ResolveChannelMetadata(ctx context.Context, source core.ManifestSource) (string, error) {
	switch source.Kind {
	case core.ManifestSourceURL:
		data, err := b.get(ctx, source.URL)
		if err != nil {
			return "", err
		}
		return b.cacheBytes(source.URL, data)
	case core.ManifestSourceMaven, core.ManifestSourceSignedMaven:
		return b.ResolveArtifact(ctx, core.ArtifactCoordinate{
			GroupID:    source.GroupID,
			ArtifactID: source.ArtifactID,
			Extension:  core.ManifestExtension,
			Classifier: core.ManifestClassifier,
			Version:    source.Version,
		})
	default:
		return "", fmt.Errorf("unknown manifest source kind %v", source.Kind)
	}
}

// cacheBytes writes data to the local artifact cache under a path derived
// from key (a URL, in ResolveChannelMetadata's case) and returns that path.
func (b *Backend) cacheBytes(key string, data []byte) (string, error) {
	sum := sha256.Sum256([]byte(key))
	dest := filepath.Join(b.cacheDir, "url", hex.EncodeToString(sum[:]))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", xerrors.Errorf("preparing cache dir for %s: %w", key, err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", xerrors.Errorf("caching %s: %w", key, err)
	}
	return dest, nil
}

// Close removes the local artifact cache. Safe to call more than once.
func (b *Backend) Close() error {
	b.client.HTTPClient.CloseIdleConnections()
	if b.cacheDir == "" {
		return nil
	}
	err := os.RemoveAll(b.cacheDir)
	b.cacheDir = ""
	return err
}

// Factory adapts New to core.BackendFactory.
var Factory = core.BackendFactoryFunc(func(repositories []core.Repository) (core.ArtifactBackend, error) {
	return New(repositories)
})
