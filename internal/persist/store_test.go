package persist

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/nao1215/wikigraph/internal/model"
)

// TestStoreRoundTrip tests that Load returns what Save wrote.
func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	t.Run("nested maps", func(t *testing.T) {
		t.Parallel()

		store := NewStore(t.TempDir())
		in := map[string]map[string][]string{
			"Graph theory": {"links": {"Vertex", "Edge"}, "categories": {"Mathematics"}},
			"Edge":         {"links": {}, "categories": {"Graph theory"}},
		}

		if err := store.Save("x", in); err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		var out map[string]map[string][]string
		if err := store.Load("x", &out); err != nil {
			t.Fatalf("failed to load: %v", err)
		}
		if !reflect.DeepEqual(in, out) {
			t.Errorf("round trip mismatch:\n in: %v\nout: %v", in, out)
		}
	})

	t.Run("network keeps insertion order", func(t *testing.T) {
		t.Parallel()

		store := NewStore(t.TempDir())
		in := model.NewNetwork()
		in.Add("Zeta", &model.Node{Links: []string{"Alpha"}, Categories: []string{"Letters"}, URL: "https://example.org/Zeta"})
		in.Add("Alpha", &model.Node{Links: []string{}, Categories: []string{}})

		if err := store.Save("network", in); err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		out := model.NewNetwork()
		if err := store.Load("network", out); err != nil {
			t.Fatalf("failed to load: %v", err)
		}
		if !reflect.DeepEqual(out.Titles(), []string{"Zeta", "Alpha"}) {
			t.Errorf("expected order [Zeta Alpha], got %v", out.Titles())
		}
		node, _ := out.Get("Zeta")
		if node == nil || node.URL != "https://example.org/Zeta" {
			t.Errorf("unexpected node %+v", node)
		}
	})

	t.Run("save overwrites", func(t *testing.T) {
		t.Parallel()

		store := NewStore(t.TempDir())
		if err := store.Save("x", []int{1, 2}); err != nil {
			t.Fatalf("failed to save: %v", err)
		}
		if err := store.Save("x", []int{3}); err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		var out []int
		if err := store.Load("x", &out); err != nil {
			t.Fatalf("failed to load: %v", err)
		}
		if !reflect.DeepEqual(out, []int{3}) {
			t.Errorf("expected [3], got %v", out)
		}

		entries, err := os.ReadDir(store.Dir())
		if err != nil {
			t.Fatalf("failed to read dir: %v", err)
		}
		if len(entries) != 1 {
			t.Errorf("expected no temporary files left, got %d entries", len(entries))
		}
	})
}

// TestStoreErrors tests failure modes of Load and name validation.
func TestStoreErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing object", func(t *testing.T) {
		t.Parallel()

		var out any
		err := NewStore(t.TempDir()).Load("absent", &out)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("expected error to wrap fs.ErrNotExist, got %v", err)
		}
	})

	t.Run("corrupt files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		store := NewStore(dir)
		if err := store.Save("good", map[string]int{"a": 1}); err != nil {
			t.Fatalf("failed to save: %v", err)
		}
		good, err := os.ReadFile(filepath.Join(dir, "good"+Extension))
		if err != nil {
			t.Fatalf("failed to read: %v", err)
		}

		flipped := append([]byte(nil), good...)
		flipped[len(flipped)-1] ^= 0xff

		notJSON := encode([]byte("{not json"))

		tests := []struct {
			name string
			data []byte
		}{
			{name: "empty", data: nil},
			{name: "bad-magic", data: append([]byte("NOPE"), good[4:]...)},
			{name: "truncated", data: good[:10]},
			{name: "checksum", data: flipped},
			{name: "json", data: notJSON},
		}

		for _, tt := range tests {
			if err := os.WriteFile(filepath.Join(dir, tt.name+Extension), tt.data, 0o600); err != nil {
				t.Fatalf("failed to write: %v", err)
			}
			var out map[string]int
			if err := store.Load(tt.name, &out); !errors.Is(err, ErrCorrupt) {
				t.Errorf("%s: expected ErrCorrupt, got %v", tt.name, err)
			}
		}
	})

	t.Run("invalid names", func(t *testing.T) {
		t.Parallel()

		store := NewStore(t.TempDir())
		for _, name := range []string{"", ".", "..", "../escape", "a/b", `a\b`, ".hidden"} {
			if err := store.Save(name, 1); !errors.Is(err, ErrInvalidName) {
				t.Errorf("Save(%q): expected ErrInvalidName, got %v", name, err)
			}
			if _, err := store.Path(name); !errors.Is(err, ErrInvalidName) {
				t.Errorf("Path(%q): expected ErrInvalidName, got %v", name, err)
			}
		}
	})
}

// TestStoreList tests listing saved objects.
func TestStoreList(t *testing.T) {
	t.Parallel()

	t.Run("missing directory is empty", func(t *testing.T) {
		t.Parallel()

		names, err := NewStore(filepath.Join(t.TempDir(), "nope")).List()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(names) != 0 {
			t.Errorf("expected no names, got %v", names)
		}
	})

	t.Run("sorted names without extension", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		store := NewStore(dir)
		for _, name := range []string{"network-inner", "network", "alpha"} {
			if err := store.Save(name, name); err != nil {
				t.Fatalf("failed to save %s: %v", name, err)
			}
		}
		if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600); err != nil {
			t.Fatalf("failed to write: %v", err)
		}

		names, err := store.List()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"alpha", "network", "network-inner"}
		if !reflect.DeepEqual(names, want) {
			t.Errorf("expected %v, got %v", want, names)
		}
		if !store.Exists("network") || store.Exists("missing") {
			t.Error("Exists disagrees with List")
		}
	})
}
