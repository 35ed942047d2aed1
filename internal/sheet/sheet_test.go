package sheet

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"cardpress/internal/snapshot"
)

const (
	cardA = "51223bd0-ffd1-11df-a976-0800200c9a66"
	cardB = "51223bd0-ffd1-11df-a976-0800200c9a67"
)

func writeWorkbook(t *testing.T, translations bool) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(SetsSheet); err != nil {
		t.Fatal(err)
	}
	setRows := [][]any{
		{"ID", "Name", "Version", "Languages"},
		{"core", "Core Set", "1.0", "English, German"},
		{"", "abandoned row", "", ""},
	}
	for i, row := range setRows {
		if err := f.SetSheetRow(SetsSheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := f.NewSheet(CardsSheet); err != nil {
		t.Fatal(err)
	}
	cardRows := [][]any{
		{"Set ID", "Card ID", "Side", "Name", "Quantity", "Type", "Traits"},
		{"core", cardA, "", "Aragorn", "1", "Hero", "Dúnedain. Ranger."},
		{"core", cardA, "B", "Aragorn", "", "Hero", ""},
		{"core", cardB, "", "Gimli", "2", "Ally", "Dwarf."},
		{"other", "ignored", "", "Ignored", "1", "Hero", ""},
	}
	for i, row := range cardRows {
		if err := f.SetSheetRow(CardsSheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			t.Fatal(err)
		}
	}

	if translations {
		if _, err := f.NewSheet("German"); err != nil {
			t.Fatal(err)
		}
		deRows := [][]any{
			{"Card ID", "Side", "Name", "Traits"},
			{cardB, "", "Gimli", "Zwerg."},
		}
		for i, row := range deRows {
			if err := f.SetSheetRow("German", fmt.Sprintf("A%d", i+1), &row); err != nil {
				t.Fatal(err)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "cards.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSets(t *testing.T) {
	wb, err := Open(writeWorkbook(t, false))
	if err != nil {
		t.Fatal(err)
	}
	defer wb.Close()

	sets, err := wb.Sets()
	if err != nil {
		t.Fatalf("sets: %v", err)
	}
	if len(sets) != 1 {
		t.Fatalf("set rows = %d, want 1", len(sets))
	}
	set := sets[0]
	if set.ID != "core" || set.Name != "Core Set" || set.Version != "1.0" {
		t.Errorf("set = %+v", set)
	}
	if len(set.Languages) != 2 || set.Languages[1] != "German" {
		t.Errorf("languages = %v", set.Languages)
	}
}

func TestCardsBaseLanguage(t *testing.T) {
	wb, err := Open(writeWorkbook(t, false))
	if err != nil {
		t.Fatal(err)
	}
	defer wb.Close()

	cards, err := wb.Cards("core", "")
	if err != nil {
		t.Fatalf("cards: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("cards = %d, want 2", len(cards))
	}

	aragorn := cards[0]
	if aragorn.ID != cardA || aragorn.Quantity != 1 {
		t.Errorf("card = %+v", aragorn)
	}
	if aragorn.Back == nil || aragorn.Back.Name != "Aragorn" {
		t.Error("side B row not folded into the card")
	}
	if got := propValue(aragorn.Properties, "Traits"); got != "Dúnedain. Ranger." {
		t.Errorf("Traits = %q", got)
	}
	if cards[1].Back != nil {
		t.Error("single-sided card got a back face")
	}
}

func TestCardsTranslated(t *testing.T) {
	wb, err := Open(writeWorkbook(t, true))
	if err != nil {
		t.Fatal(err)
	}
	defer wb.Close()

	cards, err := wb.Cards("core", "German")
	if err != nil {
		t.Fatalf("cards: %v", err)
	}
	if got := propValue(cards[1].Properties, "Traits"); got != "Zwerg." {
		t.Errorf("translated Traits = %q", got)
	}
	// Untranslated card keeps base values.
	if got := propValue(cards[0].Properties, "Traits"); got != "Dúnedain. Ranger." {
		t.Errorf("base Traits = %q", got)
	}
}

func TestCardsMissingTranslationSheetFallsBack(t *testing.T) {
	wb, err := Open(writeWorkbook(t, false))
	if err != nil {
		t.Fatal(err)
	}
	defer wb.Close()

	cards, err := wb.Cards("core", "French")
	if err != nil {
		t.Fatalf("cards: %v", err)
	}
	if len(cards) != 2 {
		t.Errorf("cards = %d", len(cards))
	}
}

func TestFindSetUnknown(t *testing.T) {
	wb, err := Open(writeWorkbook(t, false))
	if err != nil {
		t.Fatal(err)
	}
	defer wb.Close()

	if _, err := wb.FindSet("shadows"); err == nil {
		t.Error("unknown set id accepted")
	}
}

func TestDownload(t *testing.T) {
	payload := []byte("workbook-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "sub", "cards.xlsx")
	if err := Download(context.Background(), srv.URL, dest, 5*time.Second); err != nil {
		t.Fatalf("download: %v", err)
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(payload) {
		t.Error("downloaded bytes mismatch")
	}
}

func TestDownloadHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "cards.xlsx")
	if err := Download(context.Background(), srv.URL, dest, time.Second); err == nil {
		t.Error("404 accepted")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("partial file left behind")
	}
}

func propValue(props []snapshot.CardProperty, name string) string {
	for _, p := range props {
		if p.Name == name {
			return p.Value
		}
	}
	return ""
}
