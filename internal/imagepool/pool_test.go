package imagepool

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cardpress/internal/identity"
	"cardpress/internal/logging"
)

func poolName(number int, copies, role byte, slug, cardID string, side int) string {
	padded := slug + strings.Repeat("-", 42-len(slug))
	return fmt.Sprintf("%03d-%c-%c-%s%s-%d.png", number, copies, role, padded, cardID, side)
}

func cardID(n int) string {
	return fmt.Sprintf("51223bd0-ffd1-11df-a976-0800200c9%03d", n)
}

func writePool(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("img"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func writeBacks(t *testing.T, backs BackSet) string {
	t.Helper()
	dir := t.TempDir()
	writePool(t, dir, backs.Player, backs.Encounter)
	return dir
}

func TestClassifyBuckets(t *testing.T) {
	dir := t.TempDir()
	backs := writeBacks(t, ProofBacks)
	writePool(t, dir,
		poolName(1, 'p', 'p', "Aragorn", cardID(1), 1),
		poolName(2, '-', 'e', "Orc-Scout", cardID(2), 1),
		poolName(3, '-', '-', "Gandalf", cardID(3), 1),
		poolName(3, '-', '-', "Gandalf", cardID(3), 2),
	)

	report, err := Classify(dir, backs, ProofBacks, NewCache(), logging.NewNop())
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if len(report.Player) != 1 || len(report.Encounter) != 1 || len(report.Custom) != 1 {
		t.Fatalf("bucket sizes = %d/%d/%d, want 1/1/1",
			len(report.Player), len(report.Encounter), len(report.Custom))
	}

	player := report.Player[0]
	if !player.OfficialBack || filepath.Base(player.Back) != ProofBacks.Player {
		t.Errorf("player back = %q official=%v", player.Back, player.OfficialBack)
	}
	custom := report.Custom[0]
	if custom.OfficialBack {
		t.Error("card with side B image must use its own back")
	}
	if got := filepath.Base(custom.Back); got != poolName(3, '-', '-', "Gandalf", cardID(3), 2) {
		t.Errorf("custom back = %q", got)
	}
}

func TestClassifyVendorBackVariants(t *testing.T) {
	cases := []struct {
		name  string
		backs BackSet
	}{
		{"mpc", MPCBacks},
		{"dtc", DTCBacks},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			backsDir := writeBacks(t, tc.backs)
			writePool(t, dir,
				poolName(1, 'p', 'p', "Aragorn", cardID(1), 1),
				poolName(2, '-', 'e', "Orc-Scout", cardID(2), 1),
			)

			report, err := Classify(dir, backsDir, tc.backs, NewCache(), logging.NewNop())
			if err != nil {
				t.Fatalf("classify: %v", err)
			}
			if got := filepath.Base(report.Player[0].Back); got != tc.backs.Player {
				t.Errorf("player back = %q, want %q", got, tc.backs.Player)
			}
			if got := filepath.Base(report.Encounter[0].Back); got != tc.backs.Encounter {
				t.Errorf("encounter back = %q, want %q", got, tc.backs.Encounter)
			}
		})
	}
}

func TestClassifyUnknownBackRoleExcluded(t *testing.T) {
	dir := t.TempDir()
	writePool(t, dir, poolName(1, '-', '-', "Mystery", cardID(9), 1))

	report, err := Classify(dir, t.TempDir(), ProofBacks, NewCache(), logging.NewNop())
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if !report.Empty() {
		t.Error("pair produced despite missing back")
	}
	if len(report.Excluded) != 1 || !errors.Is(report.Excluded[0].Reason, ErrUnknownBackRole) {
		t.Fatalf("exclusions = %+v", report.Excluded)
	}
}

func TestClassifyMalformedImageExcluded(t *testing.T) {
	dir := t.TempDir()
	writePool(t, dir, "stray.png", "notes.txt")

	report, err := Classify(dir, t.TempDir(), ProofBacks, NewCache(), logging.NewNop())
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if len(report.Excluded) != 1 || report.Excluded[0].Name != "stray.png" {
		t.Fatalf("exclusions = %+v", report.Excluded)
	}
	if !errors.Is(report.Excluded[0].Reason, identity.ErrMalformedIdentifier) {
		t.Errorf("reason = %v", report.Excluded[0].Reason)
	}
}

func TestClassifyMissingOfficialBack(t *testing.T) {
	dir := t.TempDir()
	writePool(t, dir, poolName(1, 'p', 'p', "Aragorn", cardID(1), 1))

	_, err := Classify(dir, t.TempDir(), ProofBacks, NewCache(), logging.NewNop())
	if err == nil {
		t.Error("missing official back file not reported")
	}
}

func TestClassifyDuplicateIDKeepsLater(t *testing.T) {
	dir := t.TempDir()
	backs := writeBacks(t, ProofBacks)
	first := poolName(1, 'p', 'p', "Aragorn", cardID(1), 1)
	second := poolName(2, 'p', 'p', "Aragorn-Revised", cardID(1), 1)
	writePool(t, dir, first, second)

	report, err := Classify(dir, backs, ProofBacks, NewCache(), logging.NewNop())
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if len(report.Player) != 1 {
		t.Fatalf("player pairs = %d, want 1", len(report.Player))
	}
	if got := filepath.Base(report.Player[0].Front); got != second {
		t.Errorf("kept %q, want later file %q", got, second)
	}
}

func TestReplicate(t *testing.T) {
	pairs := []Pair{
		{Identity: identity.Identity{CardID: cardID(1), PlayerDeck: true}},
		{Identity: identity.Identity{CardID: cardID(2)}},
	}

	out := Replicate(pairs, 3)
	if len(out) != 4 {
		t.Fatalf("replicated count = %d, want 4", len(out))
	}
	for n := 0; n < 3; n++ {
		if out[n].Identity.Copy != n+1 {
			t.Errorf("copy %d numbered %d", n, out[n].Identity.Copy)
		}
	}
	if out[3].Identity.Copy != 0 {
		t.Error("non-player-deck pair must not be numbered")
	}
}

func TestCacheServesRepeatListings(t *testing.T) {
	dir := t.TempDir()
	writePool(t, dir, "a.png")

	cache := NewCache()
	if _, err := cache.List(dir); err != nil {
		t.Fatal(err)
	}
	writePool(t, dir, "b.png")

	names, err := cache.List(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 {
		t.Errorf("cached listing grew: %v", names)
	}

	cache.Invalidate()
	names, err = cache.List(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 {
		t.Errorf("invalidated listing = %v", names)
	}
}
