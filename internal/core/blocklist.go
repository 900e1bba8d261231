package core

import (
	"regexp"

	"github.com/samber/lo"

	"github.com/git-pkgs/mavenchannels/internal/mavenversion"
)

// BlocklistDecoder turns a raw blocklist document into a Blocklist. Kept as
// an injected function for the same reason as ManifestDecoder: core never
// imports internal/manifestyaml.
type BlocklistDecoder func([]byte) (*Blocklist, error)

// Blocklist is a per-channel set of disallowed (groupId, artifactId,
// version-or-pattern) triples. Applied inside a ChannelInstance at two
// points: filtering candidate versions before selector evaluation, and
// filtering fallback latest enumeration.
type Blocklist struct {
	exact    map[[3]string]struct{}
	patterns []blockedPattern
}

type blockedPattern struct {
	groupID    string
	artifactID string
	rx         *regexp.Regexp
}

// NewBlocklist returns an empty Blocklist. A nil *Blocklist blocks nothing:
// Blocks and Filter have a nil receiver guard. AddExact and AddPattern
// need a non-nil receiver.
func NewBlocklist() *Blocklist {
	return &Blocklist{exact: make(map[[3]string]struct{})}
}

// AddExact blocks one exact (groupId, artifactId, version) triple.
func (b *Blocklist) AddExact(groupID, artifactID, version string) {
	if b.exact == nil {
		b.exact = make(map[[3]string]struct{})
	}
	b.exact[[3]string{groupID, artifactID, version}] = struct{}{}
}

// AddPattern blocks any version of (groupId, artifactId) matching the
// anchored regular expression pattern.
func (b *Blocklist) AddPattern(groupID, artifactID, pattern string) error {
	rx, err := mavenversion.CompileAnchored(pattern)
	if err != nil {
		return &InvalidChannelError{Reason: "invalid blocklist pattern: " + err.Error()}
	}
	b.patterns = append(b.patterns, blockedPattern{groupID: groupID, artifactID: artifactID, rx: rx})
	return nil
}

// Blocks reports whether (groupId, artifactId, version) is blocklisted.
func (b *Blocklist) Blocks(groupID, artifactID, version string) bool {
	if b == nil {
		return false
	}
	if _, blocked := b.exact[[3]string{groupID, artifactID, version}]; blocked {
		return true
	}
	for _, p := range b.patterns {
		if p.groupID == groupID && p.artifactID == artifactID && mavenversion.Matches(version, p.rx) {
			return true
		}
	}
	return false
}

// Filter returns the subset of versions not blocked for (groupId,
// artifactId).
func (b *Blocklist) Filter(groupID, artifactID string, versions []string) []string {
	if b == nil {
		return versions
	}
	return lo.Filter(versions, func(v string, _ int) bool {
		return !b.Blocks(groupID, artifactID, v)
	})
}
