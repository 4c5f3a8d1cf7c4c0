package skill

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/zoro11031/copy-skill/internal/config"
	"github.com/zoro11031/copy-skill/internal/system"
	"github.com/zoro11031/copy-skill/internal/ui"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create parent for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", rel, err)
		}
	}
}

func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	files := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		files[filepath.ToSlash(rel)] = string(content)
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to read tree %s: %v", root, err)
	}
	return files
}

type fixture struct {
	source  string
	dest    string
	markers *config.Markers
	stdout  *bytes.Buffer
	copier  *Copier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tmpDir := t.TempDir()
	f := &fixture{
		source:  filepath.Join(tmpDir, "src", "ui-ux-pro-max"),
		dest:    filepath.Join(tmpDir, "work", ".skill"),
		markers: config.NewMarkers(filepath.Join(tmpDir, "markers")),
		stdout:  &bytes.Buffer{},
	}
	f.copier = NewCopier(system.NewFileSystem(), f.stdout, ui.NewWithWriter(&bytes.Buffer{}), f.markers)
	return f
}

func (f *fixture) destMarkers(t *testing.T) *config.Markers {
	t.Helper()
	m, err := f.markers.ForDestination(f.dest)
	if err != nil {
		t.Fatalf("ForDestination() error = %v", err)
	}
	return m
}

func TestRunCopiesScriptsAndData(t *testing.T) {
	f := newFixture(t)
	writeTree(t, f.source, map[string]string{
		"scripts/build.sh":  "#!/bin/sh\nmake\n",
		"data/config.json":  `{"theme":"dark"}`,
		"README.md":         "not copied",
		"other/ignored.txt": "not copied",
	})

	if err := f.copier.Run(f.source, f.dest, config.DefaultSubtrees); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := map[string]string{
		"scripts/build.sh": "#!/bin/sh\nmake\n",
		"data/config.json": `{"theme":"dark"}`,
	}
	if got := readTree(t, f.dest); !reflect.DeepEqual(got, want) {
		t.Errorf("destination = %v, want %v", got, want)
	}

	wantOut := "Copied scripts to " + filepath.Join(f.dest, "scripts") + "\n" +
		"Copied data to " + filepath.Join(f.dest, "data") + "\n"
	if f.stdout.String() != wantOut {
		t.Errorf("stdout = %q, want %q", f.stdout.String(), wantOut)
	}
}

func TestRunReplacesExistingDestination(t *testing.T) {
	f := newFixture(t)
	writeTree(t, f.source, map[string]string{
		"scripts/new.sh": "new",
		"data/new.json":  "{}",
	})
	writeTree(t, f.dest, map[string]string{
		"stale.txt":         "old",
		"scripts/old.sh":    "old",
		"scripts/new.sh":    "outdated",
		"unrelated/file.md": "old",
	})

	if err := f.copier.Run(f.source, f.dest, config.DefaultSubtrees); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := map[string]string{
		"scripts/new.sh": "new",
		"data/new.json":  "{}",
	}
	if got := readTree(t, f.dest); !reflect.DeepEqual(got, want) {
		t.Errorf("destination = %v, want %v", got, want)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	f := newFixture(t)
	writeTree(t, f.source, map[string]string{
		"scripts/a.py":       "print('a')",
		"scripts/lib/b.py":   "print('b')",
		"data/colors.csv":    "red,green",
		"data/nested/x.json": "[]",
	})

	if err := f.copier.Run(f.source, f.dest, config.DefaultSubtrees); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	first := readTree(t, f.dest)

	if err := f.copier.Run(f.source, f.dest, config.DefaultSubtrees); err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	second := readTree(t, f.dest)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("second run differs: first=%v second=%v", first, second)
	}
	if strings.Count(f.stdout.String(), "Copied ") != 4 {
		t.Errorf("expected four Copied lines over two runs, got:\n%s", f.stdout.String())
	}
}

func TestRunMissingSubtree(t *testing.T) {
	tests := []struct {
		name        string
		files       map[string]string
		failOn      string
		wantCopied  []string
		wantMarkers []string
	}{
		{
			name:       "scripts missing fails before anything is copied",
			files:      map[string]string{"data/config.json": "{}"},
			failOn:     "scripts",
			wantCopied: nil,
		},
		{
			name:        "data missing fails after scripts is copied",
			files:       map[string]string{"scripts/build.sh": "make"},
			failOn:      "data",
			wantCopied:  []string{"scripts"},
			wantMarkers: []string{MarkerName("scripts")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			writeTree(t, f.source, tt.files)
			writeTree(t, f.dest, map[string]string{"stale.txt": "old"})

			err := f.copier.Run(f.source, f.dest, config.DefaultSubtrees)
			if err == nil {
				t.Fatal("Run() error = nil, want error")
			}
			if !errors.Is(err, fs.ErrNotExist) {
				t.Errorf("Run() error = %v, want fs.ErrNotExist", err)
			}
			if !strings.Contains(err.Error(), "failed to copy "+tt.failOn) {
				t.Errorf("Run() error = %v, want failure on %s", err, tt.failOn)
			}

			// The destination was reset even though the run failed
			if _, err := os.Stat(filepath.Join(f.dest, "stale.txt")); !os.IsNotExist(err) {
				t.Error("stale content survived a failed run")
			}

			for _, name := range config.DefaultSubtrees {
				_, err := os.Stat(filepath.Join(f.dest, name))
				copied := err == nil
				want := contains(tt.wantCopied, name)
				if copied != want {
					t.Errorf("%s copied = %v, want %v", name, copied, want)
				}
			}

			lines := strings.Count(f.stdout.String(), "Copied ")
			if lines != len(tt.wantCopied) {
				t.Errorf("printed %d Copied lines, want %d", lines, len(tt.wantCopied))
			}

			markers, err := f.destMarkers(t).List()
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(markers) != len(tt.wantMarkers) || (len(markers) > 0 && !reflect.DeepEqual(markers, tt.wantMarkers)) {
				t.Errorf("markers = %v, want %v", markers, tt.wantMarkers)
			}
		})
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestRunOrderWithMock(t *testing.T) {
	mock := system.NewMockFileSystem()
	c := NewCopier(mock, &bytes.Buffer{}, ui.NewWithWriter(&bytes.Buffer{}), nil)

	if err := c.Run("/src", ".skill", config.DefaultSubtrees); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{
		"remove:.skill",
		"copy:" + filepath.Join("/src", "scripts"),
		"copy:" + filepath.Join("/src", "data"),
	}
	if !reflect.DeepEqual(mock.Calls, want) {
		t.Errorf("calls = %v, want %v", mock.Calls, want)
	}
}

func TestRunStopsOnResetFailure(t *testing.T) {
	mock := system.NewMockFileSystem()
	mock.Errors["remove:.skill"] = errors.New("permission denied")

	var out bytes.Buffer
	c := NewCopier(mock, &out, ui.NewWithWriter(&bytes.Buffer{}), nil)

	err := c.Run("/src", ".skill", config.DefaultSubtrees)
	if err == nil || !strings.Contains(err.Error(), "failed to reset destination") {
		t.Fatalf("Run() error = %v, want reset failure", err)
	}
	if len(mock.Calls) != 1 {
		t.Errorf("calls = %v, want only the removal", mock.Calls)
	}
	if out.Len() != 0 {
		t.Errorf("stdout = %q, want empty", out.String())
	}
}

func TestRunStopsOnCopyFailure(t *testing.T) {
	mock := system.NewMockFileSystem()
	mock.Errors["copy:"+filepath.Join("/src", "scripts")] = errors.New("disk full")

	var out bytes.Buffer
	c := NewCopier(mock, &out, ui.NewWithWriter(&bytes.Buffer{}), nil)

	err := c.Run("/src", ".skill", config.DefaultSubtrees)
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("Run() error = %v, want copy failure", err)
	}
	if len(mock.Calls) != 2 {
		t.Errorf("calls = %v, want removal and one copy", mock.Calls)
	}
	if out.Len() != 0 {
		t.Errorf("stdout = %q, want empty", out.String())
	}
}

func TestPlan(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		dest     string
		subtrees []string
		want     []Entry
		wantErr  bool
	}{
		{
			name:     "default subtrees",
			source:   "/skills/ui",
			dest:     ".skill",
			subtrees: config.DefaultSubtrees,
			want: []Entry{
				{Name: "scripts", Source: filepath.Join("/skills/ui", "scripts"), Dest: filepath.Join(".skill", "scripts")},
				{Name: "data", Source: filepath.Join("/skills/ui", "data"), Dest: filepath.Join(".skill", "data")},
			},
		},
		{name: "empty source", source: "", dest: ".skill", subtrees: config.DefaultSubtrees, wantErr: true},
		{name: "empty dest", source: "/s", dest: "", subtrees: config.DefaultSubtrees, wantErr: true},
		{name: "no subtrees", source: "/s", dest: ".skill", subtrees: nil, wantErr: true},
		{name: "traversal subtree", source: "/s", dest: ".skill", subtrees: []string{".."}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Plan(tt.source, tt.dest, tt.subtrees)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Plan() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Plan() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatus(t *testing.T) {
	f := newFixture(t)
	writeTree(t, f.source, map[string]string{
		"scripts/build.sh": "make",
		"data/config.json": "{}",
	})

	before, err := Status(system.NewFileSystem(), f.markers, f.source, f.dest, config.DefaultSubtrees)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	for _, st := range before {
		if !st.SourceExists || st.DestExists || st.InSync() || !st.CopiedAt.IsZero() {
			t.Errorf("before copy: %+v", st)
		}
	}

	if err := f.copier.Run(f.source, f.dest, config.DefaultSubtrees); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	after, err := Status(system.NewFileSystem(), f.markers, f.source, f.dest, config.DefaultSubtrees)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	for _, st := range after {
		if !st.InSync() {
			t.Errorf("%s not in sync after copy: %+v", st.Name, st)
		}
		if st.CopiedAt.IsZero() {
			t.Errorf("%s has no copy time after Run()", st.Name)
		}
		if st.SourceStats.Files != 1 {
			t.Errorf("%s source files = %d, want 1", st.Name, st.SourceStats.Files)
		}
	}
}

func TestMarkersTrackEachDestination(t *testing.T) {
	f := newFixture(t)
	writeTree(t, f.source, map[string]string{
		"scripts/build.sh": "make",
		"data/config.json": "{}",
	})
	fsys := system.NewFileSystem()
	destA := f.dest
	destB := filepath.Join(filepath.Dir(f.dest), "other", ".skill")

	if err := f.copier.Run(f.source, destA, config.DefaultSubtrees); err != nil {
		t.Fatalf("Run(A) error = %v", err)
	}
	statusA, err := Status(fsys, f.markers, f.source, destA, config.DefaultSubtrees)
	if err != nil {
		t.Fatalf("Status(A) error = %v", err)
	}

	if err := f.copier.Run(f.source, destB, []string{"scripts"}); err != nil {
		t.Fatalf("Run(B) error = %v", err)
	}

	after, err := Status(fsys, f.markers, f.source, destA, config.DefaultSubtrees)
	if err != nil {
		t.Fatalf("Status(A) error = %v", err)
	}
	for i, st := range after {
		if st.CopiedAt.IsZero() {
			t.Errorf("A %s lost its copy time after copying into B", st.Name)
		}
		if !st.CopiedAt.Equal(statusA[i].CopiedAt) {
			t.Errorf("A %s copy time = %v, want %v", st.Name, st.CopiedAt, statusA[i].CopiedAt)
		}
	}

	statusB, err := Status(fsys, f.markers, f.source, destB, config.DefaultSubtrees)
	if err != nil {
		t.Fatalf("Status(B) error = %v", err)
	}
	if statusB[0].CopiedAt.IsZero() {
		t.Error("B scripts has no copy time")
	}
	if !statusB[1].CopiedAt.IsZero() {
		t.Error("B data reports a copy time but was never copied into B")
	}
}

func TestResetRefusedKeepsMarkers(t *testing.T) {
	f := newFixture(t)
	if err := f.destMarkers(t).Create(MarkerName("scripts")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	mock := system.NewMockFileSystem()
	mock.Errors["remove:"+f.dest] = errors.New("refusing to remove")
	c := NewCopier(mock, &bytes.Buffer{}, ui.NewWithWriter(&bytes.Buffer{}), f.markers)

	if err := c.Reset(f.dest); err == nil {
		t.Fatal("Reset() error = nil, want refusal")
	}
	if _, ok, _ := f.destMarkers(t).Time(MarkerName("scripts")); !ok {
		t.Error("markers were cleared although the destination was not removed")
	}
}

func TestStrays(t *testing.T) {
	f := newFixture(t)
	writeTree(t, f.source, map[string]string{
		"scripts/build.sh": "make",
		"data/config.json": "{}",
	})
	fsys := system.NewFileSystem()

	if err := f.copier.Run(f.source, f.dest, config.DefaultSubtrees); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	writeTree(t, f.dest, map[string]string{"notes.txt": "hand-added"})

	entries, markers, err := Strays(fsys, f.markers, f.dest, []string{"scripts"})
	if err != nil {
		t.Fatalf("Strays() error = %v", err)
	}
	sort.Strings(entries)
	if want := []string{"data", "notes.txt"}; !reflect.DeepEqual(entries, want) {
		t.Errorf("stray entries = %v, want %v", entries, want)
	}
	if want := []string{MarkerName("data")}; !reflect.DeepEqual(markers, want) {
		t.Errorf("stray markers = %v, want %v", markers, want)
	}

	entries, markers, err = Strays(fsys, f.markers, filepath.Join(f.dest, "missing"), config.DefaultSubtrees)
	if err != nil || len(entries) != 0 || len(markers) != 0 {
		t.Errorf("Strays() on missing dest = %v, %v, %v; want empty", entries, markers, err)
	}
}
