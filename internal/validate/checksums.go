// Package validate answers whether a pipeline stage's output is stale
// relative to its upstream dependency and whether a stage's prerequisites
// hold before it runs.
package validate

import (
	"fmt"

	"github.com/docimp/docimp/internal/core"
)

// ChecksumDiff reports the outcome of comparing two checksum maps.
type ChecksumDiff struct {
	HasChanges   bool
	ChangedCount int
}

// CompareFileChecksums diffs two stage summaries by per-file fingerprint.
// A file modified, removed, or added between older and newer each counts as
// one change; files with identical fingerprints on both sides count as
// none.
//
// A side whose file_checksums map is absent entirely signals legacy data
// that predates checksum tracking. That is a hard error rather than "no
// files": treating missing as empty would mask genuine staleness.
func CompareFileChecksums(newer, older *core.CommandState, newerStage, olderStage core.Stage) (ChecksumDiff, error) {
	if newer == nil || newer.FileChecksums == nil {
		return ChecksumDiff{}, missingChecksumData(newerStage)
	}
	if older == nil || older.FileChecksums == nil {
		return ChecksumDiff{}, missingChecksumData(olderStage)
	}

	changed := 0
	for path, sum := range newer.FileChecksums {
		oldSum, ok := older.FileChecksums[path]
		switch {
		case !ok:
			changed++ // added
		case oldSum != sum:
			changed++ // modified
		}
	}
	for path := range older.FileChecksums {
		if _, ok := newer.FileChecksums[path]; !ok {
			changed++ // removed
		}
	}

	return ChecksumDiff{HasChanges: changed > 0, ChangedCount: changed}, nil
}

func missingChecksumData(stage core.Stage) error {
	return core.ErrChecksum(core.CodeMissingChecksumData,
		fmt.Sprintf("workflow state for %s has no file checksums (recorded before checksum tracking existed)", stage)).
		WithSuggestion(fmt.Sprintf("re-run `docimp %s` to update workflow state with checksums", stage)).
		WithDetail("stage", string(stage))
}
