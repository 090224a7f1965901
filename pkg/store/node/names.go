package node

import (
	"fmt"
	"strconv"
	"strings"
)

// Name and path conventions
// =========================
//
// Two naming conventions from the docs plugin surface here because the
// ordering engine must honor them:
//
//  1. Ordinal prefix: a name may start with a zero-padded number and an
//     underscore ("0003_notes.md"). External name-sorted stores rely on it;
//     the Ordinal field remains authoritative for the engine.
//
//  2. Pullup folders: a folder whose name ends in "_" renders transparently,
//     with its children listed inline in place of the folder itself.

// ordinalPrefixWidth is the zero-pad width of name-encoded ordinals.
const ordinalPrefixWidth = 4

// FormatOrdinalPrefix prepends a zero-padded ordinal to name, replacing any
// existing prefix. Negative ordinals are never name-encoded; the name is
// returned stripped.
func FormatOrdinalPrefix(ordinal int64, name string) string {
	_, base := SplitOrdinalPrefix(name)
	if ordinal < 0 {
		return base
	}
	return fmt.Sprintf("%0*d_%s", ordinalPrefixWidth, ordinal, base)
}

// SplitOrdinalPrefix splits a name into its encoded ordinal and base name.
// Names without a numeric prefix return (-1, name).
func SplitOrdinalPrefix(name string) (int64, string) {
	idx := strings.Index(name, "_")
	if idx <= 0 {
		return -1, name
	}
	ord, err := strconv.ParseInt(name[:idx], 10, 64)
	if err != nil || ord < 0 {
		return -1, name
	}
	return ord, name[idx+1:]
}

// IsPullup reports whether name marks a pullup folder (trailing underscore).
func IsPullup(name string) bool {
	return strings.HasSuffix(name, "_")
}

// JoinPath joins a folder path and a child name.
func JoinPath(folder, name string) string {
	if folder == "/" {
		return "/" + name
	}
	return folder + "/" + name
}

// SplitPath splits a node path into its containing folder and name.
// The root path returns ("/", "").
func SplitPath(path string) (folder, name string) {
	if path == "/" || path == "" {
		return "/", ""
	}
	idx := strings.LastIndex(path, "/")
	if idx <= 0 {
		return "/", strings.TrimPrefix(path, "/")
	}
	return path[:idx], path[idx+1:]
}

// IsPathUnder reports whether path is inside (or equal to) ancestor.
func IsPathUnder(path, ancestor string) bool {
	if ancestor == "/" {
		return true
	}
	return path == ancestor || strings.HasPrefix(path, ancestor+"/")
}
