package snapshot

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/beevik/etree"

	"cardpress/internal/fileutil"
	"cardpress/internal/identity"
	"cardpress/internal/logging"
)

// Card property names materialized onto the set document. Artwork properties
// are folded in before fingerprinting so an artwork swap invalidates the
// card's skip flag even when the card data is untouched.
const (
	PropArtwork         = "Artwork"
	PropArtworkSize     = "Artwork Size"
	PropArtworkModified = "Artwork Modified"
	PropArtist          = "Artist"
	PropEncounterSet    = "Encounter Set"
	PropEncounterNumber = "Encounter Set Number"
	PropEncounterTotal  = "Encounter Set Total"
	PropType            = "Type"
)

// SetInfo describes one set row of the source workbook.
type SetInfo struct {
	ID          string
	Name        string
	Version     string
	Copyright   string
	GameID      string
	GameVersion string
}

// CardProperty is one ordered name/value pair on a card face.
type CardProperty struct {
	Name  string
	Value string
}

// FaceInfo is the alternate (side B) face of a double-sided card.
type FaceInfo struct {
	Name       string
	Properties []CardProperty
}

// CardInfo describes one card row of the source workbook.
type CardInfo struct {
	ID         string
	Name       string
	Quantity   int
	Properties []CardProperty
	Back       *FaceInfo
}

// Build materializes set and card rows into a set document. Property order
// follows row order so fingerprints are stable across runs of the same data.
func Build(set SetInfo, cards []CardInfo) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("set")
	root.CreateAttr(attrID, set.ID)
	root.CreateAttr(attrName, set.Name)
	if set.GameID != "" {
		root.CreateAttr("gameId", set.GameID)
	}
	if set.GameVersion != "" {
		root.CreateAttr("gameVersion", set.GameVersion)
	}
	if set.Version != "" {
		root.CreateAttr("version", set.Version)
	}
	if set.Copyright != "" {
		root.CreateAttr("copyright", set.Copyright)
	}

	cardsEl := root.CreateElement(tagCards)
	for _, c := range cards {
		card := cardsEl.CreateElement(tagCard)
		card.CreateAttr(attrID, c.ID)
		card.CreateAttr(attrName, c.Name)
		if c.Quantity > 0 {
			card.CreateAttr(attrQuantity, strconv.Itoa(c.Quantity))
		}
		for _, p := range c.Properties {
			if p.Value == "" {
				continue
			}
			SetProperty(card, p.Name, p.Value)
		}
		if c.Back != nil {
			alt := card.CreateElement(tagAlternate)
			alt.CreateAttr(attrType, "B")
			alt.CreateAttr(attrName, c.Back.Name)
			for _, p := range c.Back.Properties {
				if p.Value == "" {
					continue
				}
				SetProperty(alt, p.Name, p.Value)
			}
		}
	}
	return doc
}

// NumberEncounterSets assigns sequential numbers and a shared total to the
// non-quest cards of each encounter set, in document order.
func NumberEncounterSets(doc *etree.Document) {
	counts := make(map[string]int)
	for _, card := range Cards(doc) {
		name := Property(card, PropEncounterSet)
		if name == "" || Property(card, PropType) == "Quest" {
			continue
		}
		qty := 1
		if q, err := strconv.Atoi(card.SelectAttrValue(attrQuantity, "1")); err == nil && q > 0 {
			qty = q
		}
		counts[name] += qty
	}

	next := make(map[string]int)
	for _, card := range Cards(doc) {
		name := Property(card, PropEncounterSet)
		if name == "" || Property(card, PropType) == "Quest" {
			continue
		}
		qty := 1
		if q, err := strconv.Atoi(card.SelectAttrValue(attrQuantity, "1")); err == nil && q > 0 {
			qty = q
		}
		SetProperty(card, PropEncounterNumber, strconv.Itoa(next[name]+1))
		SetProperty(card, PropEncounterTotal, strconv.Itoa(counts[name]))
		next[name] += qty
	}
}

// ArtworkEntry is one scanned artwork file keyed by card id and side.
type ArtworkEntry struct {
	Name     string
	Path     string
	Size     int64
	Modified int64
	Artist   string
}

// ScanArtwork indexes the card image files of the given directories. Later
// directories win on duplicate (id, side) keys, with a warning, so a
// processed-artwork directory can shadow the raw one.
func ScanArtwork(dirs []string, logger *slog.Logger) (map[string]ArtworkEntry, error) {
	index := make(map[string]ArtworkEntry)
	for _, dir := range dirs {
		names, err := fileutil.ListFiles(dir)
		if err != nil {
			return nil, fmt.Errorf("scan artwork %s: %w", dir, err)
		}
		for _, name := range names {
			art, ok := identity.ParseArtwork(name)
			if !ok {
				continue
			}
			info, err := os.Stat(filepath.Join(dir, name))
			if err != nil {
				return nil, fmt.Errorf("stat artwork %s: %w", name, err)
			}
			key := identity.ArtworkKey(art.CardID, art.Side)
			if prev, dup := index[key]; dup {
				logger.Warn("duplicate artwork for card, keeping later file",
					logging.String(logging.FieldCardID, art.CardID),
					logging.String("previous", prev.Name),
					logging.String("replacement", name))
			}
			index[key] = ArtworkEntry{
				Name:     name,
				Path:     filepath.Join(dir, name),
				Size:     info.Size(),
				Modified: info.ModTime().Unix(),
				Artist:   art.Artist,
			}
		}
	}
	return index, nil
}

// AnnotateArtwork folds artwork file metadata into card properties so the
// fingerprints react to artwork replacements.
func AnnotateArtwork(doc *etree.Document, index map[string]ArtworkEntry) {
	for _, card := range Cards(doc) {
		id := card.SelectAttrValue(attrID, "")
		if id == "" {
			continue
		}
		annotateFace(card, index, id, identity.SideA)
		if alt := Alternate(card); alt != nil {
			annotateFace(alt, index, id, identity.SideB)
		}
	}
}

func annotateFace(el *etree.Element, index map[string]ArtworkEntry, id string, side identity.Side) {
	entry, ok := index[identity.ArtworkKey(id, side)]
	if !ok {
		return
	}
	SetProperty(el, PropArtwork, entry.Name)
	SetProperty(el, PropArtworkSize, strconv.FormatInt(entry.Size, 10))
	SetProperty(el, PropArtworkModified, strconv.FormatInt(entry.Modified, 10))
	if entry.Artist != "" {
		SetProperty(el, PropArtist, entry.Artist)
	}
}
