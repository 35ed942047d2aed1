package packaging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cardpress/internal/identity"
	"cardpress/internal/imagepool"
)

// Player-deck cards ship as this many physical copies.
const PlayerCopies = 3

// VendorOptions controls how a vendor archive is assembled.
type VendorOptions struct {
	// Format selects the container: FormatZip or FormatTzst.
	Format string
	// SplitDecks enables deck splitting for large pools.
	SplitDecks bool
	// Stamp marks every png entry unique via a tEXt chunk.
	Stamp bool
	// Instructions is an optional PDF appended at the archive root.
	Instructions string
}

// BuildVendorArchive packs pairs into a print vendor archive at outPath.
// Player-deck cards are replicated into numbered copies first; fronts and
// backs keep independent ordinals for deck assignment.
func BuildVendorArchive(pairs []imagepool.Pair, opts VendorOptions, outPath string) error {
	if len(pairs) == 0 {
		return fmt.Errorf("%w: nothing to package", imagepool.ErrNoCardsFound)
	}
	replicated := imagepool.Replicate(pairs, PlayerCopies)
	total := len(replicated)

	w, err := NewWriter(opts.Format, outPath)
	if err != nil {
		return err
	}
	if err := writeVendorEntries(w, replicated, total, opts); err != nil {
		w.Close()
		os.Remove(outPath)
		return err
	}
	return w.Close()
}

func writeVendorEntries(w Writer, replicated []imagepool.Pair, total int, opts VendorOptions) error {
	frontN, backN := 0, 0
	for _, pair := range replicated {
		frontN++
		front := pair.Identity
		front.Side = identity.SideA
		name := entryPath("front", front, pair.Front, DeckFor(frontN, total), opts.SplitDecks)
		if err := addVendorEntry(w, name, pair.Front, opts.Stamp); err != nil {
			return err
		}

		backN++
		back := pair.Identity
		back.Side = identity.SideB
		name = entryPath("back", back, pair.Back, DeckFor(backN, total), opts.SplitDecks)
		if err := addVendorEntry(w, name, pair.Back, opts.Stamp); err != nil {
			return err
		}
	}

	if opts.Instructions != "" {
		if err := w.Add(filepath.Base(opts.Instructions), opts.Instructions); err != nil {
			return fmt.Errorf("append instructions: %w", err)
		}
	}
	return nil
}

// entryPath builds the container path for one image: front/ or back/ under an
// optional deckN/ prefix, with the vendor-scheme filename.
func entryPath(side string, ident identity.Identity, srcPath string, deck int, split bool) string {
	name := ident.Render(identity.SchemeVendor, extOf(srcPath))
	dir := side
	if split && deck > 0 {
		dir = fmt.Sprintf("deck%d/%s", deck, side)
	}
	return dir + "/" + name
}

func addVendorEntry(w Writer, name, srcPath string, stamp bool) error {
	if stamp && extOf(srcPath) == "png" {
		data, err := os.ReadFile(srcPath)
		if err != nil {
			return fmt.Errorf("read %s: %w", srcPath, err)
		}
		stamped, err := StampPNG(data, "Title", filepath.Base(name))
		if err != nil {
			return fmt.Errorf("stamp %s: %w", srcPath, err)
		}
		return w.AddBytes(name, stamped)
	}
	return w.Add(name, srcPath)
}

func extOf(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}
