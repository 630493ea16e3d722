package driver

import (
	"fmt"
	"slices"

	"github.com/datazip-inc/tsvingest/utils/logger"
)

// HeaderGuard remembers the header of the first file of a run and, in strict mode, rejects
// any later file whose header differs in content or order.
type HeaderGuard struct {
	strict        bool
	seen          bool
	reference     []string
	referenceFile string
}

func NewHeaderGuard(strict bool) *HeaderGuard {
	return &HeaderGuard{strict: strict}
}

// Check validates header of file against the reference header
func (g *HeaderGuard) Check(file string, header []string) error {
	if !g.seen {
		g.seen = true
		g.reference = slices.Clone(header)
		g.referenceFile = file
		return nil
	}

	if slices.Equal(g.reference, header) {
		return nil
	}

	if g.strict {
		return fmt.Errorf("%w in %s: expected %q (from %s), found %q", ErrHeaderMismatch, file, g.reference, g.referenceFile, header)
	}

	logger.Warnf("Header of %s differs from %s; its rows keep their own fields", file, g.referenceFile)
	return nil
}

// Reference returns the header of the first checked file, nil before any check
func (g *HeaderGuard) Reference() []string {
	return g.reference
}
