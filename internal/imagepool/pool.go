package imagepool

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cardpress/internal/identity"
	"cardpress/internal/logging"
)

// ErrUnknownBackRole indicates a front image with no side B sibling and no
// role marker to select an official back.
var ErrUnknownBackRole = errors.New("unknown back role")

// ErrNoCardsFound indicates an image pool with no usable pairs.
var ErrNoCardsFound = errors.New("no cards found")

// BackSet names the official back images substituted for fronts with no
// side B scan in the pool. Each output class carries its own variants:
// vendor pools differ in bleed, resolution, and color space, so a proof
// back must never stand in for a print back.
type BackSet struct {
	Player    string
	Encounter string
}

// Official back variants looked up in the backs directory by role.
var (
	ProofBacks = BackSet{Player: "playerBackOfficial.png", Encounter: "encounterBackOfficial.png"}
	MPCBacks   = BackSet{Player: "playerBackUnofficialMPC.png", Encounter: "encounterBackUnofficialMPC.png"}
	DTCBacks   = BackSet{Player: "playerBackOfficialDTC.jpg", Encounter: "encounterBackOfficialDTC.jpg"}
)

// Pair is one printable card: a front image and its resolved back. Paths are
// absolute. OfficialBack is true when Back points into the backs directory
// rather than the pool.
type Pair struct {
	Identity     identity.Identity
	Front        string
	Back         string
	OfficialBack bool
}

// Exclusion records a pool file that produced no pair, with the reason.
type Exclusion struct {
	Name   string
	Reason error
}

// Report is the classification of one image pool. Buckets keep the pool's
// sorted filename order, which is the card-number order the layout and
// packaging engines rely on.
type Report struct {
	Player    []Pair
	Encounter []Pair
	Custom    []Pair
	Excluded  []Exclusion
}

// Pairs returns all buckets concatenated in the fixed player, encounter,
// custom order.
func (r Report) Pairs() []Pair {
	out := make([]Pair, 0, len(r.Player)+len(r.Encounter)+len(r.Custom))
	out = append(out, r.Player...)
	out = append(out, r.Encounter...)
	out = append(out, r.Custom...)
	return out
}

// Buckets returns the role buckets in the same fixed order, for consumers
// that must not mix roles, such as the proof-sheet layout.
func (r Report) Buckets() [][]Pair {
	return [][]Pair{r.Player, r.Encounter, r.Custom}
}

// Empty reports whether classification produced no pairs at all.
func (r Report) Empty() bool {
	return len(r.Player)+len(r.Encounter)+len(r.Custom) == 0
}

// Classify indexes the rendered images of dir into front/back pairs,
// resolving missing side B scans against the given official back variants.
// Files that do not parse as rendered card images are excluded, not fatal; a
// duplicate card id keeps the later file and logs the collision.
func Classify(dir, backsDir string, backs BackSet, cache *Cache, logger *slog.Logger) (Report, error) {
	names, err := cache.List(dir)
	if err != nil {
		return Report{}, fmt.Errorf("list image pool: %w", err)
	}

	var report Report
	scanned := make(map[string]string)
	fronts := make([]Pair, 0, len(names))
	seen := make(map[string]int)

	for _, name := range names {
		ident, err := identity.Parse(name)
		if err != nil {
			if !isImageName(name) {
				continue
			}
			report.Excluded = append(report.Excluded, Exclusion{Name: name, Reason: err})
			continue
		}
		path := filepath.Join(dir, name)
		if ident.Side == identity.SideB {
			scanned[ident.CardID] = path
			continue
		}
		if at, dup := seen[ident.CardID]; dup {
			logger.Warn("duplicate card id in pool, keeping later file",
				logging.String(logging.FieldCardID, ident.CardID),
				logging.String("previous", filepath.Base(fronts[at].Front)),
				logging.String("replacement", name))
			fronts[at] = Pair{Identity: ident, Front: path}
			continue
		}
		seen[ident.CardID] = len(fronts)
		fronts = append(fronts, Pair{Identity: ident, Front: path})
	}

	for _, pair := range fronts {
		if back, ok := scanned[pair.Identity.CardID]; ok {
			pair.Back = back
			report.Custom = append(report.Custom, pair)
			continue
		}
		switch pair.Identity.BackRole {
		case identity.RolePlayer:
			pair.Back = filepath.Join(backsDir, backs.Player)
			pair.OfficialBack = true
			report.Player = append(report.Player, pair)
		case identity.RoleEncounter:
			pair.Back = filepath.Join(backsDir, backs.Encounter)
			pair.OfficialBack = true
			report.Encounter = append(report.Encounter, pair)
		default:
			report.Excluded = append(report.Excluded, Exclusion{
				Name:   filepath.Base(pair.Front),
				Reason: fmt.Errorf("%w: %s", ErrUnknownBackRole, pair.Identity.CardID),
			})
		}
	}

	for _, bucket := range [][]Pair{report.Player, report.Encounter, report.Custom} {
		sort.Slice(bucket, func(i, j int) bool {
			return filepath.Base(bucket[i].Front) < filepath.Base(bucket[j].Front)
		})
	}

	if err := checkOfficialBacks(report, backsDir, backs); err != nil {
		return Report{}, err
	}
	return report, nil
}

// checkOfficialBacks verifies the official back files exist before any stage
// copies them around.
func checkOfficialBacks(report Report, backsDir string, backs BackSet) error {
	need := make(map[string]struct{})
	if len(report.Player) > 0 {
		need[backs.Player] = struct{}{}
	}
	if len(report.Encounter) > 0 {
		need[backs.Encounter] = struct{}{}
	}
	for name := range need {
		if _, err := os.Stat(filepath.Join(backsDir, name)); err != nil {
			return fmt.Errorf("official back %s: %w", name, err)
		}
	}
	return nil
}

// Replicate expands player-deck pairs into numbered physical copies; other
// pairs pass through with a single unnumbered copy.
func Replicate(pairs []Pair, copies int) []Pair {
	out := make([]Pair, 0, len(pairs))
	for _, pair := range pairs {
		if !pair.Identity.PlayerDeck {
			out = append(out, pair)
			continue
		}
		for n := 1; n <= copies; n++ {
			copyPair := pair
			copyPair.Identity.Copy = n
			out = append(out, copyPair)
		}
	}
	return out
}

func isImageName(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".tif":
		return true
	}
	return false
}
