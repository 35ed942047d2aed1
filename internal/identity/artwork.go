package identity

import (
	"strings"
)

// Artwork describes a source artwork file named by the authoring convention
// `<cardID>_<side>_<slug...>.<ext>`, optionally carrying an
// `_Artist_<name>` token before the extension.
type Artwork struct {
	CardID string
	Side   Side
	Artist string
}

// ParseArtwork decodes an artwork filename. The second return value is false
// for files that are not card artwork (wrong extension, fewer than three
// underscore segments); such files are skipped, never treated as errors.
func ParseArtwork(filename string) (Artwork, bool) {
	dot := strings.LastIndexByte(filename, '.')
	if dot < 0 {
		return Artwork{}, false
	}
	switch strings.ToLower(filename[dot+1:]) {
	case "jpg", "png":
	default:
		return Artwork{}, false
	}

	base := filename[:dot]
	segments := strings.Split(base, "_")
	if len(segments) < 3 {
		return Artwork{}, false
	}

	art := Artwork{CardID: segments[0]}
	switch segments[1] {
	case "B":
		art.Side = SideB
	default:
		art.Side = SideA
	}

	if _, after, found := strings.Cut(base, "_Artist_"); found {
		art.Artist = strings.ReplaceAll(after, "_", " ")
	}

	return art, true
}

// ArtworkKey builds the lookup key a card uses to find its artwork for one
// side.
func ArtworkKey(cardID string, side Side) string {
	return cardID + "_" + string(side)
}

// ArtworkKeyOf returns the pool key for a parsed artwork file.
func (a Artwork) ArtworkKey() string {
	return ArtworkKey(a.CardID, a.Side)
}
