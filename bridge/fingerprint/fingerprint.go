// Package fingerprint computes a deterministic content digest over a
// directory tree. Two trees with identical relative paths and identical file
// contents always produce the same digest, independent of walk order,
// timestamps, or permissions.
package fingerprint

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	gitignore "github.com/sabhiram/go-gitignore"
	"github.com/sourcegraph/conc/pool"
)

// Result carries the folded digest plus warnings for entries that were
// skipped because they could not be read. Skipped files do not contribute to
// the digest.
type Result struct {
	Digest  string
	Files   int
	Skipped []string
}

// Fingerprinter hashes directory trees. Ignore patterns use gitignore
// syntax; the concurrency bound caps parallel file reads.
type Fingerprinter struct {
	ignore      *gitignore.GitIgnore
	concurrency int
}

// New builds a Fingerprinter from gitignore-style patterns. A non-positive
// concurrency falls back to a single worker.
func New(patterns []string, concurrency int) *Fingerprinter {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Fingerprinter{
		ignore:      gitignore.CompileIgnoreLines(patterns...),
		concurrency: concurrency,
	}
}

type fileDigest struct {
	rel string
	hex string
}

// Fingerprint walks dir, hashes every regular non-ignored file, and folds
// the per-file digests into a single hex-encoded sha256. An empty or fully
// ignored tree yields the digest of the empty input, a stable sentinel.
func (f *Fingerprinter) Fingerprint(ctx context.Context, dir string) (Result, error) {
	var (
		mu      sync.Mutex
		digests []fileDigest
		skipped []string
	)

	p := pool.New().WithMaxGoroutines(f.concurrency)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			mu.Lock()
			skipped = append(skipped, path)
			mu.Unlock()
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if f.ignore.MatchesPath(rel + "/") {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if f.ignore.MatchesPath(rel) {
			return nil
		}

		p.Go(func() {
			sum, hashErr := hashFile(path)
			mu.Lock()
			defer mu.Unlock()
			if hashErr != nil {
				skipped = append(skipped, path)
				return
			}
			digests = append(digests, fileDigest{rel: filepath.ToSlash(rel), hex: sum})
		})
		return nil
	})

	p.Wait()

	if err != nil {
		return Result{}, fmt.Errorf("fingerprint %s: %w", dir, err)
	}

	sort.Slice(digests, func(i, j int) bool { return digests[i].rel < digests[j].rel })

	fold := sha256.New()
	for _, fd := range digests {
		fmt.Fprintf(fold, "%s:%s|", fd.rel, fd.hex)
	}

	sort.Strings(skipped)

	return Result{
		Digest:  hex.EncodeToString(fold.Sum(nil)),
		Files:   len(digests),
		Skipped: skipped,
	}, nil
}

func hashFile(path string) (string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer fh.Close()

	h := sha256.New()
	if _, err := io.Copy(h, fh); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
