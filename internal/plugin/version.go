// Package plugin provides plugin metadata, discovery, and the in-process
// launcher.
package plugin

import (
	"fmt"
	"strconv"
	"strings"
)

// Snapshot marks a pre-release stage. SnapshotNone is a final release and
// outranks every snapshot stage at an equal version triple.
type Snapshot int

const (
	SnapshotNone Snapshot = iota
	SnapshotAlpha
	SnapshotBeta
	SnapshotRC
)

// rank orders snapshot stages for comparison: alpha < beta < rc < release.
func (s Snapshot) rank() int {
	if s == SnapshotNone {
		return 3
	}
	return int(s) - 1
}

func (s Snapshot) String() string {
	switch s {
	case SnapshotAlpha:
		return "alpha"
	case SnapshotBeta:
		return "beta"
	case SnapshotRC:
		return "rc"
	default:
		return ""
	}
}

// parseSnapshot maps a suffix to its stage. Unknown suffixes are rejected.
func parseSnapshot(s string) (Snapshot, error) {
	switch strings.ToLower(s) {
	case "alpha":
		return SnapshotAlpha, nil
	case "beta":
		return SnapshotBeta, nil
	case "rc":
		return SnapshotRC, nil
	case "":
		return SnapshotNone, nil
	default:
		return SnapshotNone, fmt.Errorf("unknown snapshot stage %q", s)
	}
}

// Version is a semantic plugin version with an optional snapshot stage.
type Version struct {
	Major    int
	Minor    int
	Patch    int
	Snapshot Snapshot
}

// NewVersion creates a release version.
func NewVersion(major, minor, patch int) Version {
	return Version{Major: major, Minor: minor, Patch: patch, Snapshot: SnapshotNone}
}

// String formats the version as "1.2.3" or "1.2.3-beta".
func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Snapshot != SnapshotNone {
		s += "-" + v.Snapshot.String()
	}
	return s
}

// Compare orders versions lexicographically on (major, minor, patch), then
// by snapshot stage where a release outranks any snapshot
// (alpha < beta < rc < release). Returns -1, 0 or 1.
func (v Version) Compare(other Version) int {
	if v.Major != other.Major {
		return sign(v.Major - other.Major)
	}
	if v.Minor != other.Minor {
		return sign(v.Minor - other.Minor)
	}
	if v.Patch != other.Patch {
		return sign(v.Patch - other.Patch)
	}
	return sign(v.Snapshot.rank() - other.Snapshot.rank())
}

// IsGreater reports whether v is strictly newer than other.
func (v Version) IsGreater(other Version) bool {
	return v.Compare(other) > 0
}

// IsLower reports whether v is strictly older than other.
func (v Version) IsLower(other Version) bool {
	return v.Compare(other) < 0
}

// Equal reports whether both versions are identical.
func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}

// IsZero reports whether the version is the unset zero value "0.0.0".
func (v Version) IsZero() bool {
	return v.Major == 0 && v.Minor == 0 && v.Patch == 0 && v.Snapshot == SnapshotNone
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

// ParseVersion parses "1.2.3" or "1.2.3-beta". A missing patch or minor
// component defaults to zero.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Version{Snapshot: SnapshotNone}, nil
	}
	core := s
	stage := ""
	if idx := strings.IndexByte(s, '-'); idx >= 0 {
		core = s[:idx]
		stage = s[idx+1:]
	}
	snapshot, err := parseSnapshot(stage)
	if err != nil {
		return Version{}, fmt.Errorf("invalid version %q: %w", s, err)
	}

	parts := strings.Split(core, ".")
	if len(parts) > 3 {
		return Version{}, fmt.Errorf("invalid version %q: too many components", s)
	}
	nums := [3]int{}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid version %q: bad component %q", s, p)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2], Snapshot: snapshot}, nil
}
