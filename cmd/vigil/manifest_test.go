package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindVigilTomlWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	manifest := filepath.Join(root, "vigil.toml")
	if err := os.WriteFile(manifest, []byte("[generate]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	path, ok, err := findVigilToml(nested)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || path != manifest {
		t.Fatalf("found = %v %q, want %q", ok, path, manifest)
	}
}

func TestFindVigilTomlMissing(t *testing.T) {
	_, ok, err := findVigilToml(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("no manifest exists, must report not found")
	}
}

func TestLoadProjectManifest(t *testing.T) {
	root := t.TempDir()
	content := `[generate]
patterns = ["./internal/...", "./game"]
jobs = 4
cache = true
`
	if err := os.WriteFile(filepath.Join(root, "vigil.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	m, ok, err := loadProjectManifest(root)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if m.Root != root {
		t.Fatalf("root = %q, want %q", m.Root, root)
	}
	g := m.Config.Generate
	if len(g.Patterns) != 2 || g.Patterns[0] != "./internal/..." {
		t.Fatalf("patterns = %v", g.Patterns)
	}
	if g.Jobs != 4 || !g.Cache {
		t.Fatalf("jobs = %d cache = %v", g.Jobs, g.Cache)
	}
}

func TestLoadProjectManifestBadToml(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "vigil.toml"), []byte("[generate\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := loadProjectManifest(root); !ok || err == nil {
		t.Fatalf("want found with parse error, got ok=%v err=%v", ok, err)
	}
}
