package utils

import (
	// Go Internal Packages
	"os"
	"slices"
	"strconv"
	"strings"
)

// JoinInt32Slice renders partition numbers in ascending order, e.g. "0,1,4".
func JoinInt32Slice(ints []int32) string {
	sorted := slices.Clone(ints)
	slices.Sort(sorted)

	strs := make([]string, len(sorted))
	for i, v := range sorted {
		strs[i] = strconv.FormatInt(int64(v), 10)
	}
	return strings.Join(strs, ",")
}

// DefaultUser picks a display name when none is configured: $USER, then the
// host name, then "anonymous".
func DefaultUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	if h, err := os.Hostname(); err == nil && h != "" {
		return h
	}
	return "anonymous"
}
