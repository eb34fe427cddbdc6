package asset_test

import (
	"os"
	"path/filepath"
	"testing"

	"craftpress/internal/asset"
)

func TestFromPath(t *testing.T) {
	item := asset.FromPath("/backlog/Pokemon_Pikachu.zip")
	if item.Identity != "Pokemon_Pikachu" {
		t.Fatalf("unexpected identity %q", item.Identity)
	}
	if item.DisplayName != "Pokemon Pikachu" {
		t.Fatalf("unexpected display name %q", item.DisplayName)
	}
	if item.Path != "/backlog/Pokemon_Pikachu.zip" {
		t.Fatalf("unexpected path %q", item.Path)
	}
}

func TestDeriveDisplayName(t *testing.T) {
	cases := []struct {
		stem string
		want string
	}{
		{"Pokemon_Pikachu", "Pokemon Pikachu"},
		{"gundam-rx78.v2", "Gundam Rx78 V2"},
		{"already named", "Already Named"},
		{"___", ""},
		{"!!!1", "!!!1"},
		{"R2-D2", "R2 D2"},
	}
	for _, tc := range cases {
		if got := asset.DeriveDisplayName(tc.stem); got != tc.want {
			t.Errorf("DeriveDisplayName(%q) = %q, want %q", tc.stem, got, tc.want)
		}
	}
}

func TestScanFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"zeta.zip", "Alpha.ZIP", "guide.pdf", "notes.txt", "image.png"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.zip"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	assets, err := asset.Scan(dir, []string{".zip", ".pdf"})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	got := make([]string, 0, len(assets))
	for _, item := range assets {
		got = append(got, item.Identity)
	}
	want := []string{"Alpha", "guide", "zeta"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
