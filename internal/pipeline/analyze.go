package pipeline

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/docimp/docimp/internal/checksum"
	"github.com/docimp/docimp/internal/core"
	"github.com/docimp/docimp/internal/fsutil"
)

// AnalyzeResult summarizes an analyze run for the CLI.
type AnalyzeResult struct {
	ItemCount    int
	ArtifactPath string
}

// Analyze fingerprints the project's documentation-relevant files, writes
// the analysis artifact, and records the run in workflow state.
func (p *Pipeline) Analyze(ctx context.Context) (*AnalyzeResult, error) {
	log := p.log.WithStage(string(core.StageAnalyze))

	scanner := checksum.NewScanner(p.root,
		checksum.WithExtensions(p.cfg.Analyze.Extensions),
		checksum.WithExcludeDirs(p.cfg.Analyze.ExcludeDirs),
		checksum.WithConcurrency(p.cfg.Analyze.Concurrency),
	)
	sums, err := scanner.Scan(ctx)
	if err != nil {
		return nil, err
	}
	log.Debug("fingerprinted project files", "count", len(sums))

	paths := make([]string, 0, len(sums))
	for path := range sums {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	files := make([]FileStat, 0, len(paths))
	for _, path := range paths {
		stat, err := statFile(filepath.Join(p.root, filepath.FromSlash(path)))
		if err != nil {
			return nil, err
		}
		stat.Path = path
		stat.Checksum = sums[path]
		files = append(files, stat)
	}

	artifact := AnalysisArtifact{
		GeneratedAt: time.Now().UTC(),
		ItemCount:   len(files),
		Files:       files,
	}
	artifactPath := p.ArtifactPath(core.StageAnalyze)
	if err := fsutil.WriteJSONAtomic(artifactPath, artifact); err != nil {
		return nil, err
	}

	cs := core.NewCommandState(len(files), sums)
	if err := p.recordRun(core.StageAnalyze, cs); err != nil {
		return nil, err
	}

	log.Info("analysis complete", "items", len(files))
	return &AnalyzeResult{ItemCount: len(files), ArtifactPath: artifactPath}, nil
}

// statFile counts total and documentation lines in a file.
func statFile(absPath string) (FileStat, error) {
	f, err := os.Open(absPath)
	if err != nil {
		return FileStat{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return FileStat{}, err
	}

	var lines, docLines int
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines++
		if isDocLine(sc.Text()) {
			docLines++
		}
	}
	if err := sc.Err(); err != nil {
		return FileStat{}, err
	}

	return FileStat{
		SizeBytes: info.Size(),
		Lines:     lines,
		DocLines:  docLines,
	}, nil
}

// isDocLine applies a comment-marker heuristic shared across the supported
// languages. Markdown files are all documentation, which the caller gets
// for free here since prose lines rarely start with code markers; the
// audit ratio threshold accounts for that.
func isDocLine(line string) bool {
	t := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(t, "//"),
		strings.HasPrefix(t, "#"),
		strings.HasPrefix(t, "/*"),
		strings.HasPrefix(t, "*"),
		strings.HasPrefix(t, `"""`),
		strings.HasPrefix(t, "'''"):
		return true
	}
	return false
}
