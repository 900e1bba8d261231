package core

import (
	"regexp"

	"github.com/git-pkgs/mavenchannels/internal/mavenversion"
)

// Stream is a rule mapping a Maven coordinate (with optional wildcard
// artifactId) to a version selector.
type Stream struct {
	GroupID    string
	ArtifactID string
	Selector   VersionSelector

	pattern *regexp.Regexp // compiled once, only set for SelectorPattern
}

// NewStream validates and builds a Stream, compiling its pattern (if any)
// up front so Select never fails on a malformed regex it should have
// rejected at load time.
func NewStream(groupID, artifactID string, selector VersionSelector) (Stream, error) {
	if groupID == "" || artifactID == "" {
		return Stream{}, &InvalidChannelError{Reason: "stream is missing groupId or artifactId"}
	}
	if groupID == "*" {
		return Stream{}, &InvalidChannelError{Reason: `stream groupId cannot be "*"`}
	}

	s := Stream{GroupID: groupID, ArtifactID: artifactID, Selector: selector}
	switch selector.Kind {
	case SelectorFixed:
		if selector.Fixed == "" {
			return Stream{}, &InvalidChannelError{Reason: "fixed selector requires a version"}
		}
	case SelectorPattern:
		rx, err := mavenversion.CompileAnchored(selector.PatternSource)
		if err != nil {
			return Stream{}, &InvalidChannelError{Reason: "invalid versionPattern: " + err.Error()}
		}
		s.pattern = rx
	case SelectorVersionsSet:
		if len(selector.VersionsSet) == 0 {
			return Stream{}, &InvalidChannelError{Reason: "versionsSet selector requires at least one version"}
		}
	default:
		return Stream{}, &InvalidChannelError{Reason: "stream selector has no populated variant"}
	}
	return s, nil
}

// Matches reports whether this stream governs (groupID, artifactID): exact
// (g,a) wins; otherwise (g, "*") matches; never ("*", _).
func (s Stream) Matches(groupID, artifactID string) bool {
	if s.GroupID != groupID {
		return false
	}
	return s.ArtifactID == artifactID || s.ArtifactID == "*"
}

// Select applies the stream's selector against the versions known to the
// backend (already blocklist-filtered by the caller).
//
//   - Fixed returns its literal, even if absent from allVersions.
//   - Pattern returns the greatest of allVersions matching the pattern.
//   - VersionsSet returns the greatest of allVersions also present in the
//     configured set.
func (s Stream) Select(allVersions []string) (string, bool) {
	switch s.Selector.Kind {
	case SelectorFixed:
		return s.Selector.Fixed, true
	case SelectorPattern:
		return mavenversion.LatestOf(allVersions, func(v string) bool {
			return mavenversion.Matches(v, s.pattern)
		})
	case SelectorVersionsSet:
		wanted := make(map[string]struct{}, len(s.Selector.VersionsSet))
		for _, v := range s.Selector.VersionsSet {
			wanted[v] = struct{}{}
		}
		return mavenversion.LatestOf(allVersions, func(v string) bool {
			_, ok := wanted[v]
			return ok
		})
	default:
		return "", false
	}
}
