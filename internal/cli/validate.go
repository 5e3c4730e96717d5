package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// SourceKind is the kind of library a CLI argument points at.
type SourceKind int

const (
	SourceDirectory SourceKind = iota
	SourceSnapshotFile
	SourceS3
)

// ResolveSource classifies a library argument and returns it with local
// paths made absolute. Exits fatally if a local path does not exist.
func ResolveSource(source string) (string, SourceKind) {
	if strings.HasPrefix(source, "s3://") {
		return source, SourceS3
	}

	info, err := os.Stat(source)
	if err != nil {
		if os.IsNotExist(err) {
			log.Fatal().Str("path", source).Msg("Library not found")
		}
		log.Fatal().Err(err).Str("path", source).Msg("Failed to access library")
	}

	if absPath, err := filepath.Abs(source); err == nil {
		source = absPath
	}
	if info.IsDir() {
		return source, SourceDirectory
	}
	return source, SourceSnapshotFile
}

// ValidateAndResolveDirectory checks that the path exists and is a directory,
// then returns the absolute path. Exits fatally on failure.
func ValidateAndResolveDirectory(dirPath string) string {
	resolved, kind := ResolveSource(dirPath)
	if kind != SourceDirectory {
		log.Fatal().Str("path", dirPath).Msg("Path is not a directory")
	}
	return resolved
}
