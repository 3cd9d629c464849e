// Copyright (c) 2024 Neomantra Corp
//
// Directory-layout contract for the Binary Codec (C7), see spec §4.7.
// Adapted from the historical-data-utils path checker (see DESIGN.md).
//

package mbp

import (
	"path/filepath"
	"strings"
)

// kind distinguishes the two record streams for path construction/validation.
type Kind string

const (
	Kind_Trades    Kind = "trades"
	Kind_Snapshots Kind = "snapshots"
)

// DayFilePath returns "<root>/<kind>/<feedcode>/MM_DD_YYYY.bin".
func DayFilePath(root string, kind Kind, feedcode string, ymdFileName string) string {
	return filepath.Join(root, string(kind), feedcode, ymdFileName)
}

// FeedcodeDir returns "<root>/<kind>/<feedcode>".
func FeedcodeDir(root string, kind Kind, feedcode string) string {
	return filepath.Join(root, string(kind), feedcode)
}

// ValidateDataPath checks that path looks like a well-formed
// "<root>/<kind>/<feedcode>/*.bin" entry, with feedcode recognized by the
// symbol table. It does not touch the filesystem.
func ValidateDataPath(root string, kind Kind, path string) error {
	if !strings.HasSuffix(path, ".bin") {
		return ErrMissingFile
	}
	rel, err := filepath.Rel(filepath.Join(root, string(kind)), filepath.Dir(path))
	if err != nil {
		return ErrMissingFile
	}
	feedcode := filepath.ToSlash(rel)
	if feedcode == "." || strings.Contains(feedcode, "/") {
		return ErrMissingFile
	}
	if !IsKnownFeedcode(feedcode) {
		return ErrInvalidSymbol
	}
	return nil
}
