package backup

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/nvandessel/prefgrow/internal/model"
	"github.com/nvandessel/prefgrow/internal/simulation"
	"github.com/nvandessel/prefgrow/internal/store"
)

func newTestStore(t *testing.T, name string) *store.SQLiteRunStore {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), name))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// saveSimulated runs a short seeded simulation and stores it.
func saveSimulated(t *testing.T, s store.RunStore, seed uint64, title string) string {
	t.Helper()
	def, err := model.Preset("rps")
	if err != nil {
		t.Fatal(err)
	}
	eng, err := simulation.NewEngine(def, seed)
	if err != nil {
		t.Fatal(err)
	}
	series, err := simulation.Run(context.Background(), eng,
		simulation.Config{Steps: 500, RecordingInterval: 100}, simulation.WithLabels(def.Labels))
	if err != nil {
		t.Fatal(err)
	}
	id, err := s.SaveRun(context.Background(), store.Run{
		Title:      title,
		Seed:       seed,
		CreatedAt:  time.Date(2026, 1, 2, 3, 4, 5, int(seed), time.UTC),
		Definition: def,
		Series:     series,
	})
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	return id
}

func TestExportImport_RoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newTestStore(t, "src.db")
	idA := saveSimulated(t, src, 1, "first")
	idB := saveSimulated(t, src, 2, "second")

	path := filepath.Join(t.TempDir(), "archive.pgz")
	a, err := Export(ctx, src, path)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(a.Runs) != 2 {
		t.Fatalf("exported %d runs, want 2", len(a.Runs))
	}

	header, err := ReadHeader(path)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if header.RunCount != 2 || !header.Compressed || header.Version != FormatVersion {
		t.Errorf("header = %+v", header)
	}

	dst := newTestStore(t, "dst.db")
	result, err := Import(ctx, dst, path, ImportMerge)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if *result != (ImportResult{Imported: 2}) {
		t.Errorf("result = %+v", result)
	}

	for _, id := range []string{idA, idB} {
		want, err := src.GetRun(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		got, err := dst.GetRun(ctx, id)
		if err != nil {
			t.Fatalf("GetRun(%s) after import: %v", id, err)
		}
		if got.Title != want.Title || got.Seed != want.Seed || !got.CreatedAt.Equal(want.CreatedAt) {
			t.Errorf("run %s metadata = %+v, want %+v", id, got, want)
		}
		if !reflect.DeepEqual(got.Series.Points, want.Series.Points) {
			t.Errorf("run %s points differ", id)
		}
		if !reflect.DeepEqual(got.Series.FinalDegrees, want.Series.FinalDegrees) {
			t.Errorf("run %s final degrees = %v, want %v", id, got.Series.FinalDegrees, want.Series.FinalDegrees)
		}
	}
}

func TestImport_MergeSkipsAndReplaceOverwrites(t *testing.T) {
	ctx := context.Background()
	src := newTestStore(t, "src.db")
	id := saveSimulated(t, src, 7, "archived title")

	path := filepath.Join(t.TempDir(), "archive.pgz")
	if _, err := Export(ctx, src, path); err != nil {
		t.Fatalf("Export: %v", err)
	}

	dst := newTestStore(t, "dst.db")
	if _, err := Import(ctx, dst, path, ImportMerge); err != nil {
		t.Fatal(err)
	}

	result, err := Import(ctx, dst, path, ImportMerge)
	if err != nil {
		t.Fatal(err)
	}
	if *result != (ImportResult{Skipped: 1}) {
		t.Errorf("merge result = %+v", result)
	}

	result, err = Import(ctx, dst, path, ImportReplace)
	if err != nil {
		t.Fatal(err)
	}
	if *result != (ImportResult{Replaced: 1}) {
		t.Errorf("replace result = %+v", result)
	}
	runs, err := dst.ListRuns(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID != id {
		t.Errorf("runs after replace = %+v", runs)
	}
}

func TestExport_EmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "empty.pgz")
	a, err := Export(context.Background(), newTestStore(t, "runs.db"), path)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(a.Runs) != 0 {
		t.Errorf("runs = %d", len(a.Runs))
	}
	if err := Verify(path); err != nil {
		t.Errorf("Verify: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions = %o, want 600", perm)
	}
}

func TestGeneratePath(t *testing.T) {
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	got := GeneratePath("/tmp/b", now)
	want := filepath.Join("/tmp/b", "prefgrow-runs-20260304-050607.pgz")
	if got != want {
		t.Errorf("GeneratePath = %q, want %q", got, want)
	}
}

func TestRotate(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var paths []string
	for i := 0; i < 5; i++ {
		p := GeneratePath(dir, base.Add(time.Duration(i)*time.Hour))
		if err := os.WriteFile(p, []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}
	other := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(other, []byte("keep"), 0600); err != nil {
		t.Fatal(err)
	}

	if err := Rotate(dir, 2); err != nil {
		t.Fatalf("Rotate: %v", err)
	}

	for i, p := range paths {
		_, err := os.Stat(p)
		kept := err == nil
		if wantKept := i >= 3; kept != wantKept {
			t.Errorf("archive %d kept = %v, want %v", i, kept, wantKept)
		}
	}
	if _, err := os.Stat(other); err != nil {
		t.Error("unrelated file should be left alone")
	}
}

func TestRotate_MissingDir(t *testing.T) {
	if err := Rotate(filepath.Join(t.TempDir(), "missing"), 3); err != nil {
		t.Errorf("Rotate on missing dir: %v", err)
	}
}
