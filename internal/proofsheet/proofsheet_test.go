package proofsheet

import (
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"cardpress/internal/imagepool"
)

func writePNG(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatal(err)
	}
	return path
}

func namedPairs(names ...string) []imagepool.Pair {
	pairs := make([]imagepool.Pair, len(names))
	for i, n := range names {
		pairs[i] = imagepool.Pair{Front: n + "-front", Back: n + "-back"}
	}
	return pairs
}

func TestPaginateMirrorsBackRows(t *testing.T) {
	sheets := paginate(namedPairs("A", "B", "C", "D", "E", "F"))
	if len(sheets) != 1 {
		t.Fatalf("sheets = %d, want 1", len(sheets))
	}

	want := []string{"C-back", "B-back", "A-back", "F-back", "E-back", "D-back"}
	for slot, src := range backOrder {
		if got := sheets[0].backs[src]; got != want[slot] {
			t.Errorf("back slot %d = %q, want %q", slot, got, want[slot])
		}
	}
}

func TestPaginatePadsFinalSheet(t *testing.T) {
	sheets := paginate(namedPairs("A", "B", "C", "D", "E", "F", "G"))
	if len(sheets) != 2 {
		t.Fatalf("sheets = %d, want 2", len(sheets))
	}
	last := sheets[1]
	if last.fronts[0] != "G-front" {
		t.Errorf("first slot of final sheet = %q", last.fronts[0])
	}
	for slot := 1; slot < slotsPerPage; slot++ {
		if last.fronts[slot] != "" || last.backs[slot] != "" {
			t.Errorf("slot %d of padded sheet not empty", slot)
		}
	}
}

func TestAssembleKeepsBucketsOnSeparateSheets(t *testing.T) {
	player := namedPairs("A", "B", "C", "D")
	encounter := namedPairs("E", "F", "G", "H")

	sheets := assemble([][]imagepool.Pair{player, encounter, nil})
	if len(sheets) != 2 {
		t.Fatalf("sheets = %d, want 2", len(sheets))
	}
	for slot := len(player); slot < slotsPerPage; slot++ {
		if got := sheets[0].fronts[slot]; got != "" {
			t.Errorf("player sheet slot %d = %q, want empty padding", slot, got)
		}
	}
	if got := sheets[1].fronts[0]; got != "E-front" {
		t.Errorf("encounter sheet starts with %q, want E-front", got)
	}
}

func TestGenerateWritesDocument(t *testing.T) {
	dir := t.TempDir()
	front := writePNG(t, dir, "front.png")
	back := writePNG(t, dir, "back.png")

	for _, format := range []string{"a4", "letter"} {
		out := filepath.Join(dir, format+".pdf")
		err := Generate([][]imagepool.Pair{{{Front: front, Back: back}}}, format, out)
		if err != nil {
			t.Fatalf("generate %s: %v", format, err)
		}
		info, err := os.Stat(out)
		if err != nil || info.Size() == 0 {
			t.Errorf("no document written for %s", format)
		}
	}
}

func TestGenerateEmptyPool(t *testing.T) {
	err := Generate([][]imagepool.Pair{nil, nil, nil}, "a4", filepath.Join(t.TempDir(), "out.pdf"))
	if !errors.Is(err, imagepool.ErrNoCardsFound) {
		t.Errorf("expected ErrNoCardsFound, got %v", err)
	}
}

func TestGenerateUnknownFormat(t *testing.T) {
	err := Generate([][]imagepool.Pair{namedPairs("A")}, "tabloid", filepath.Join(t.TempDir(), "out.pdf"))
	if err == nil {
		t.Error("unknown page format accepted")
	}
}
