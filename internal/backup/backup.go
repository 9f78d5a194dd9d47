// Package backup exports stored runs to checksummed archives and imports
// them back into a run store.
package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/nvandessel/prefgrow/internal/constants"
	"github.com/nvandessel/prefgrow/internal/store"
)

const (
	filePrefix = "prefgrow-runs-"
	fileExt    = ".pgz"
)

// DefaultDir returns the default archive directory (~/.prefgrow/backups/).
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, constants.ConfigDirName, "backups"), nil
}

// GeneratePath creates a timestamped archive filename in dir.
func GeneratePath(dir string, now time.Time) string {
	return filepath.Join(dir, filePrefix+now.Format("20060102-150405")+fileExt)
}

// Export writes every stored run to an archive at path.
func Export(ctx context.Context, runStore store.RunStore, path string) (*Archive, error) {
	summaries, err := runStore.ListRuns(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	a := &Archive{
		Version:   FormatVersion,
		CreatedAt: time.Now().UTC(),
		Runs:      make([]store.Run, 0, len(summaries)),
	}
	for _, s := range summaries {
		run, err := runStore.GetRun(ctx, s.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load run %s: %w", s.ID, err)
		}
		a.Runs = append(a.Runs, *run)
	}

	if err := Write(path, a); err != nil {
		return nil, err
	}
	return a, nil
}

// ImportMode controls how Import handles runs that already exist.
type ImportMode string

const (
	// ImportMerge skips runs whose ID already exists (default).
	ImportMerge ImportMode = "merge"
	// ImportReplace overwrites runs whose ID already exists.
	ImportReplace ImportMode = "replace"
)

// ImportResult contains statistics about an import.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Replaced int `json:"replaced"`
}

// Import loads the archive at path into runStore.
func Import(ctx context.Context, runStore store.RunStore, path string, mode ImportMode) (*ImportResult, error) {
	a, err := Read(path)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for _, run := range a.Runs {
		if run.Series == nil {
			return nil, fmt.Errorf("run %s has no series", run.ID)
		}

		_, err := runStore.GetRun(ctx, run.ID)
		exists := err == nil
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("failed to check run %s: %w", run.ID, err)
		}

		if exists {
			if mode != ImportReplace {
				result.Skipped++
				continue
			}
			if err := runStore.DeleteRun(ctx, run.ID); err != nil {
				return nil, fmt.Errorf("failed to replace run %s: %w", run.ID, err)
			}
			result.Replaced++
		}

		if _, err := runStore.SaveRun(ctx, run); err != nil {
			return nil, fmt.Errorf("failed to import run %s: %w", run.ID, err)
		}
		if !exists {
			result.Imported++
		}
	}
	return result, nil
}

// Rotate keeps only the keepN most recent archives in dir.
func Rotate(dir string, keepN int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read backup directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), filePrefix) && filepath.Ext(e.Name()) == fileExt {
			names = append(names, e.Name())
		}
	}

	// Newest first; the timestamp in the name sorts lexically.
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	if len(names) <= keepN {
		return nil
	}
	for _, name := range names[keepN:] {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", name, err)
		}
	}
	return nil
}
