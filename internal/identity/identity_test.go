package identity

import (
	"errors"
	"strings"
	"testing"
)

const testID = "51223bd0-ffd1-11df-a976-0800200c9a66"

func renderedName(number, copies, role, slug, id, side string) string {
	padded := slug + strings.Repeat("-", 42-len(slug))
	return number + "-" + copies + "-" + role + "-" + padded + id + "-" + side + ".png"
}

func TestParseRoundTrip(t *testing.T) {
	name := renderedName("001", "p", "e", "Shadow-Patrol", testID, "1")

	ident, err := Parse(name)
	if err != nil {
		t.Fatalf("Parse(%q) returned error: %v", name, err)
	}
	if ident.CardID != testID {
		t.Fatalf("unexpected card id: %q", ident.CardID)
	}
	if ident.Number != "001" || ident.Slug != "Shadow-Patrol" {
		t.Fatalf("unexpected number/slug: %q %q", ident.Number, ident.Slug)
	}
	if ident.Side != SideA || ident.BackRole != RoleEncounter || !ident.PlayerDeck {
		t.Fatalf("unexpected classification: %+v", ident)
	}

	if got := ident.Render(SchemeRendered, "png"); got != name {
		t.Fatalf("render mismatch:\n got %q\nwant %q", got, name)
	}
}

func TestParseSideB(t *testing.T) {
	name := renderedName("042", "-", "p", "Hill-Troll", testID, "2")
	ident, err := Parse(name)
	if err != nil {
		t.Fatal(err)
	}
	if ident.Side != SideB {
		t.Fatalf("expected side B, got %q", ident.Side)
	}
	if ident.PlayerDeck {
		t.Fatal("expected non player-deck card")
	}
}

func TestParseRejectsMalformedNames(t *testing.T) {
	cases := []struct {
		name     string
		filename string
	}{
		{"no extension", "001-p-e-whatever"},
		{"wrong extension", renderedName("001", "p", "e", "X", testID, "1")[:88] + ".bmp"},
		{"too short", "001-p-e-short-" + testID + "-1.png"},
		{"bad number", renderedName("0a1", "p", "e", "X", testID, "1")},
		{"bad id slot", renderedName("001", "p", "e", "X", "not!a!valid!id!slot!!!!!!!!!!!!!!!!!", "1")},
		{"bad side", renderedName("001", "p", "e", "X", testID, "3")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse(tc.filename); !errors.Is(err, ErrMalformedIdentifier) {
				t.Fatalf("expected ErrMalformedIdentifier, got %v", err)
			}
		})
	}
}

func TestCardIDAt(t *testing.T) {
	name := renderedName("001", "-", "e", "Anduin-Passage", testID, "1")
	id, ok := CardIDAt(name)
	if !ok || id != testID {
		t.Fatalf("CardIDAt = %q, %v", id, ok)
	}
	if _, ok := CardIDAt("random-file.png"); ok {
		t.Fatal("expected failure for short name")
	}
}

func TestRenderDatabaseScheme(t *testing.T) {
	ident := Identity{CardID: testID, Number: "007", Slug: "Gandalf", Side: SideA}
	if got := ident.Render(SchemeDatabase, "png"); got != "007-Gandalf.png" {
		t.Fatalf("unexpected database name: %q", got)
	}
	ident.Side = SideB
	if got := ident.Render(SchemeDatabase, "png"); got != "007-Gandalf-2.png" {
		t.Fatalf("unexpected database name for side B: %q", got)
	}
}

func TestRenderTabletopScheme(t *testing.T) {
	ident := Identity{CardID: testID, Side: SideA}
	if got := ident.Render(SchemeTabletop, "png"); got != testID+".png" {
		t.Fatalf("unexpected tabletop name: %q", got)
	}
	ident.Side = SideB
	if got := ident.Render(SchemeTabletop, "png"); got != testID+".B.png" {
		t.Fatalf("unexpected tabletop name for side B: %q", got)
	}
}

func TestRenderVendorSchemeStripsIDAndRole(t *testing.T) {
	ident := Identity{CardID: testID, Number: "012", Slug: "Legolas", Side: SideA, PlayerDeck: true, Copy: 2}
	got := ident.Render(SchemeVendor, "png")
	if got != "012-2-Legolas-1.png" {
		t.Fatalf("unexpected vendor name: %q", got)
	}
	if strings.Contains(got, testID) {
		t.Fatal("vendor name must not contain the stable id")
	}
}

// Stripping the id is lossy, but names from distinct ids must never collide
// within one set because the card number prefix stays unique.
func TestVendorNamesDistinctAcrossIDs(t *testing.T) {
	a := Identity{CardID: testID, Number: "001", Slug: "Twin", Side: SideA}
	otherID := "61223bd0-ffd1-11df-a976-0800200c9a66"
	b := Identity{CardID: otherID, Number: "002", Slug: "Twin", Side: SideA}
	if a.Render(SchemeVendor, "png") == b.Render(SchemeVendor, "png") {
		t.Fatal("vendor names collided across distinct card ids")
	}
}

func TestParseArtwork(t *testing.T) {
	art, ok := ParseArtwork(testID + "_A_Misty-Mountains_Artist_John_Howe.png")
	if !ok {
		t.Fatal("expected artwork to parse")
	}
	if art.CardID != testID || art.Side != SideA {
		t.Fatalf("unexpected artwork identity: %+v", art)
	}
	if art.Artist != "John Howe" {
		t.Fatalf("unexpected artist: %q", art.Artist)
	}
	if art.ArtworkKey() != testID+"_A" {
		t.Fatalf("unexpected key: %q", art.ArtworkKey())
	}
}

func TestParseArtworkSkipsNonCardFiles(t *testing.T) {
	for _, filename := range []string{
		"notes.txt",
		"cover.png",
		"id_only.png",
		testID + "_B_back.tif",
	} {
		if _, ok := ParseArtwork(filename); ok {
			t.Fatalf("expected %q to be skipped", filename)
		}
	}
}
