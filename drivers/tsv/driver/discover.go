package driver

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/datazip-inc/tsvingest/constants"
	"github.com/datazip-inc/tsvingest/utils"
	"github.com/datazip-inc/tsvingest/utils/logger"
)

// DiscoverFiles lists the TSV files under root in lexicographic order. Without recursive only
// direct children are considered. Directory symlinks are not followed. Finding nothing is not
// an error.
func DiscoverFiles(root string, recursive bool) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to access source directory %s: %s", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidConfig, root)
	}

	pattern := utils.Ternary(recursive, "**/*", "*").(string)
	files := []string{}
	err = doublestar.GlobWalk(os.DirFS(root), pattern, func(path string, d fs.DirEntry) error {
		if !IsRecognizedFile(d.Name()) {
			logger.Debugf("Skipping file %s (unrecognized extension)", path)
			return nil
		}
		files = append(files, filepath.Join(root, filepath.FromSlash(path)))
		return nil
	}, doublestar.WithFilesOnly(), doublestar.WithNoFollow())
	if err != nil {
		return nil, fmt.Errorf("failed to walk source directory %s: %s", root, err)
	}

	sort.Strings(files)
	return files, nil
}

// IsRecognizedFile reports whether name carries one of the ingestible extensions, ignoring case
func IsRecognizedFile(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range constants.RecognizedExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
