package packaging

import (
	"fmt"
	"path"

	"cardpress/internal/identity"
	"cardpress/internal/imagepool"
)

// BuildClientArchive packs a pool into a tabletop client image pack at
// outPath. The container is always zip: the client format is a zip file with
// a different extension. Entries are keyed by stable card id; side B images
// are included only for cards with their own back, since the client renders
// the shared role back itself.
func BuildClientArchive(pairs []imagepool.Pair, gameID, setID, outPath string) error {
	if len(pairs) == 0 {
		return fmt.Errorf("%w: nothing to package", imagepool.ErrNoCardsFound)
	}

	w, err := NewWriter(FormatZip, outPath)
	if err != nil {
		return err
	}

	base := path.Join(gameID, "Sets", setID, "Cards")
	add := func(ident identity.Identity, srcPath string) error {
		name := path.Join(base, ident.Render(identity.SchemeTabletop, extOf(srcPath)))
		return w.Add(name, srcPath)
	}

	for _, pair := range pairs {
		front := pair.Identity
		front.Side = identity.SideA
		if err := add(front, pair.Front); err != nil {
			w.Close()
			return err
		}
		if pair.OfficialBack {
			continue
		}
		back := pair.Identity
		back.Side = identity.SideB
		if err := add(back, pair.Back); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}
