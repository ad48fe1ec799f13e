// Package checksum fingerprints project files so pipeline stages can detect
// when their inputs changed between runs.
package checksum

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Scanner walks a project tree and hashes matching files.
type Scanner struct {
	root        string
	extensions  map[string]struct{}
	excludeDirs map[string]struct{}
	concurrency int
}

// Option configures the scanner.
type Option func(*Scanner)

// WithExtensions restricts hashing to files with the given extensions
// (including the leading dot). Empty means all files.
func WithExtensions(exts []string) Option {
	return func(s *Scanner) {
		s.extensions = make(map[string]struct{}, len(exts))
		for _, e := range exts {
			s.extensions[strings.ToLower(e)] = struct{}{}
		}
	}
}

// WithExcludeDirs skips directories by base name anywhere in the tree.
func WithExcludeDirs(dirs []string) Option {
	return func(s *Scanner) {
		s.excludeDirs = make(map[string]struct{}, len(dirs))
		for _, d := range dirs {
			s.excludeDirs[d] = struct{}{}
		}
	}
}

// WithConcurrency bounds the number of files hashed in parallel.
func WithConcurrency(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewScanner creates a scanner rooted at a project directory.
func NewScanner(root string, opts ...Option) *Scanner {
	s := &Scanner{
		root:        root,
		concurrency: runtime.NumCPU(),
		excludeDirs: map[string]struct{}{
			".git": {}, ".docimp": {}, "node_modules": {}, "vendor": {},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan hashes every matching file under the root and returns a map from
// root-relative path (forward slashes) to hex-encoded SHA-256 fingerprint.
func (s *Scanner) Scan(ctx context.Context) (map[string]string, error) {
	paths, err := s.collect()
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	sums := make(map[string]string, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, rel := range paths {
		rel := rel
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sum, err := hashFile(filepath.Join(s.root, rel))
			if err != nil {
				return fmt.Errorf("hashing %s: %w", rel, err)
			}
			mu.Lock()
			sums[filepath.ToSlash(rel)] = sum
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sums, nil
}

// collect gathers root-relative candidate paths in deterministic order.
func (s *Scanner) collect() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if _, skip := s.excludeDirs[d.Name()]; skip && path != s.root {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if len(s.extensions) > 0 {
			ext := strings.ToLower(filepath.Ext(d.Name()))
			if _, ok := s.extensions[ext]; !ok {
				return nil
			}
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", s.root, err)
	}
	sort.Strings(paths)
	return paths, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
