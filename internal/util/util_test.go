package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStem(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"KCB09", "KCB09"},
		{"/data/prokka/KCB09", "KCB09"},
		{"strain.v2", "strain"},
		{"a.b.c", "a.b"},
		{".hidden", ".hidden"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Stem(tt.in); got != tt.want {
				t.Errorf("Stem(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEnsureDirsIsIdempotent(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "out", "processed_reads")

	if err := EnsureDirs(dir); err != nil {
		t.Fatalf("first EnsureDirs: %v", err)
	}
	if err := EnsureDirs(dir); err != nil {
		t.Fatalf("second EnsureDirs: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("expected %s to be a directory", dir)
	}
}

func TestCopyFile(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "a.faa")
	dst := filepath.Join(root, "a.pep.fa")

	if err := os.WriteFile(src, []byte(">p1\nMKV\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile: %v", err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != ">p1\nMKV\n" {
		t.Errorf("copied content = %q", got)
	}
	if !FileExists(dst) || FileExists(root) {
		t.Errorf("FileExists reports wrong kinds")
	}
}
