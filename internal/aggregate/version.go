package aggregate

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// VersionKey parses the leading numeric components of a dotted version.
// Parsing stops at the first component that is not purely numeric, after
// keeping that component's numeric prefix: "3.14.0t" yields [3 14 0] and
// "3.14rc1.2" yields [3 14].
func VersionKey(version string) []int {
	var parts []int
	for _, part := range strings.Split(version, ".") {
		end := 0
		for end < len(part) && part[end] >= '0' && part[end] <= '9' {
			end++
		}
		if end == 0 {
			break
		}
		n, err := strconv.Atoi(part[:end])
		if err != nil {
			break
		}
		parts = append(parts, n)
		if end != len(part) {
			break
		}
	}
	return parts
}

// IsThreadFree reports whether version names a free-threaded build ("3.14.0t").
func IsThreadFree(version string) bool {
	return strings.HasSuffix(strings.ToLower(version), "t")
}

// CompareVersions orders versions by numeric key, then standard builds
// before thread-free builds, then by raw string. It is a total order even
// for malformed versions.
func CompareVersions(a, b string) int {
	if c := slices.Compare(VersionKey(a), VersionKey(b)); c != 0 {
		return c
	}
	if c := cmp.Compare(variantRank(a), variantRank(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

func variantRank(version string) int {
	if IsThreadFree(version) {
		return 1
	}
	return 0
}

func gilRank(gilDisabled *bool) int {
	if gilDisabled != nil && *gilDisabled {
		return 1
	}
	return 0
}
