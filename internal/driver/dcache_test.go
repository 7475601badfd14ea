package driver

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"vigil/internal/diag"
	"vigil/internal/source"
)

func TestDiskCacheRoundTrip(t *testing.T) {
	c, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	key := Digest{1, 2, 3}
	in := &DiskPayload{
		Schema:  diskCacheSchemaVersion,
		PkgPath: "demo/game",
		Output:  "// Code generated by vigil. DO NOT EDIT.\n",
		Diags: []diag.Diagnostic{
			diag.NewWarning(diag.SourceUnreferenced,
				source.Span{Path: "player.go", Line: 4, Col: 2},
				"source \"Mana\" is not referenced by any binding"),
		},
	}
	if err := c.Put(key, in); err != nil {
		t.Fatal(err)
	}

	var out DiskPayload
	ok, err := c.Get(key, &out)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("stored payload must be found")
	}
	if out.PkgPath != in.PkgPath || out.Output != in.Output {
		t.Fatalf("payload = %+v", out)
	}
	if len(out.Diags) != 1 || out.Diags[0].Code != diag.SourceUnreferenced {
		t.Fatalf("diags = %+v", out.Diags)
	}
	if out.Diags[0].Primary.Line != 4 {
		t.Fatalf("span = %+v", out.Diags[0].Primary)
	}
}

func TestDiskCacheMiss(t *testing.T) {
	c, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	var out DiskPayload
	ok, err := c.Get(Digest{9}, &out)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("empty cache must miss")
	}
}

func TestDiskCacheSchemaMismatch(t *testing.T) {
	c, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := Digest{7}
	if err := c.Put(key, &DiskPayload{Schema: diskCacheSchemaVersion + 1}); err != nil {
		t.Fatal(err)
	}
	var out DiskPayload
	ok, err := c.Get(key, &out)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("mismatched schema must read as a miss")
	}
}

func TestDiskCacheDropAll(t *testing.T) {
	c, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := Digest{5}
	if err := c.Put(key, &DiskPayload{Schema: diskCacheSchemaVersion}); err != nil {
		t.Fatal(err)
	}
	if err := c.DropAll(); err != nil {
		t.Fatal(err)
	}
	var out DiskPayload
	if ok, _ := c.Get(key, &out); ok {
		t.Fatal("dropped cache must miss")
	}
}

func TestDiskCacheNilIsNoop(t *testing.T) {
	var c *DiskCache
	if err := c.Put(Digest{}, &DiskPayload{}); err != nil {
		t.Fatal(err)
	}
	if ok, err := c.Get(Digest{}, &DiskPayload{}); ok || err != nil {
		t.Fatalf("nil cache: ok=%v err=%v", ok, err)
	}
	if err := c.DropAll(); err != nil {
		t.Fatal(err)
	}
}

func writeFiles(t *testing.T, dir string, files map[string]string) []string {
	t.Helper()
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	paths := make([]string, 0, len(names))
	for _, name := range names {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(files[name]), 0o644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}
	return paths
}

func TestPackageDigestStable(t *testing.T) {
	dir := t.TempDir()
	paths := writeFiles(t, dir, map[string]string{
		"a.go": "package demo\n",
		"b.go": "package demo\nvar X = 1\n",
	})

	d1, err := packageDigest("demo", paths, OutputFileName)
	if err != nil {
		t.Fatal(err)
	}
	// Order of the file list must not matter.
	d2, err := packageDigest("demo", []string{paths[1], paths[0]}, OutputFileName)
	if err != nil {
		t.Fatal(err)
	}
	if d1 != d2 {
		t.Fatal("digest must be order-independent")
	}
}

func TestPackageDigestChangesWithContent(t *testing.T) {
	dir := t.TempDir()
	paths := writeFiles(t, dir, map[string]string{"a.go": "package demo\n"})

	d1, err := packageDigest("demo", paths, OutputFileName)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(paths[0], []byte("package demo\nvar Y = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	d2, err := packageDigest("demo", paths, OutputFileName)
	if err != nil {
		t.Fatal(err)
	}
	if d1 == d2 {
		t.Fatal("digest must change with file content")
	}
}

func TestPackageDigestIgnoresGeneratedFile(t *testing.T) {
	dir := t.TempDir()
	base := writeFiles(t, dir, map[string]string{"a.go": "package demo\n"})
	gen := writeFiles(t, dir, map[string]string{OutputFileName: "// old output\n"})

	d1, err := packageDigest("demo", base, OutputFileName)
	if err != nil {
		t.Fatal(err)
	}
	d2, err := packageDigest("demo", append(base, gen...), OutputFileName)
	if err != nil {
		t.Fatal(err)
	}
	if d1 != d2 {
		t.Fatal("generated file must not feed its own digest")
	}
}
