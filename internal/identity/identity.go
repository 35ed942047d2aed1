package identity

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedIdentifier indicates a filename that does not follow the
// renderer's fixed-width naming convention. Callers decide whether that means
// "skip this file" or "abort": pool scans skip, explicit lookups abort.
var ErrMalformedIdentifier = errors.New("malformed identifier")

// Side distinguishes the two faces of a card.
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// Role is the card category that selects a back face and replication count.
type Role string

const (
	RolePlayer    Role = "player"
	RoleEncounter Role = "encounter"
	RoleNone      Role = ""
)

// Rendered filenames use a fixed-width layout so the stable card id can be
// sliced out at a constant byte offset by every downstream stage:
//
//	[0:3]   card number, zero padded
//	[4]     copies marker: 'p' for player-deck cards, '-' otherwise;
//	        replaced by the copy digit after vendor replication
//	[6]     back role: 'p' player, 'e' encounter, '-' other
//	[8:50]  name slug, padded with '-'
//	[50:86] stable card id (36 characters)
//	[86:88] side suffix: "-1" front, "-2" back
//
// Positions 3, 5 and 7 are literal '-' separators. The base name is always
// exactly 88 bytes. Changing any of these offsets breaks skip detection and
// archive splitting for previously rendered pools.
const (
	numberLen    = 3
	copiesOffset = 4
	roleOffset   = 6
	slugOffset   = 8
	slugLen      = 42
	idOffset     = 50
	idLen        = 36
	sideOffset   = 86
	baseLen      = 88
)

// IDOffset is the byte offset of the stable card id inside rendered filenames.
const IDOffset = idOffset

// IDLen is the width of the stable card id slot.
const IDLen = idLen

// Identity is the decoded form of a rendered image filename.
type Identity struct {
	CardID     string
	Number     string
	Slug       string
	Side       Side
	BackRole   Role
	PlayerDeck bool
	// Copy numbers a replicated physical copy (1-based). Zero before
	// replication.
	Copy int
}

// Scheme selects a target naming convention for Render.
type Scheme int

const (
	// SchemeRendered reproduces the renderer's fixed-width layout.
	SchemeRendered Scheme = iota
	// SchemeDatabase produces the compact thumbnail name: number, trimmed
	// slug, and a ".B" style side marker folded into the side suffix.
	SchemeDatabase
	// SchemeTabletop produces the client archive member name keyed by the
	// stable id alone.
	SchemeTabletop
	// SchemeVendor strips the stable id and role markers for print vendor
	// submission; the card number prefix keeps stripped names
	// collision-free within a set.
	SchemeVendor
)

var extensions = map[string]struct{}{
	"png": {},
	"jpg": {},
	"tif": {},
}

// Parse decodes a rendered image filename. The id slot is validated against
// the expected charset rather than accepted blindly; a renamed or truncated
// file surfaces here instead of corrupting skip detection later.
func Parse(filename string) (Identity, error) {
	base, _, err := splitExt(filename)
	if err != nil {
		return Identity{}, err
	}
	if len(base) != baseLen {
		return Identity{}, fmt.Errorf("%w: %q: base name must be %d bytes, got %d", ErrMalformedIdentifier, filename, baseLen, len(base))
	}
	for _, pos := range []int{numberLen, copiesOffset + 1, roleOffset + 1} {
		if base[pos] != '-' {
			return Identity{}, fmt.Errorf("%w: %q: missing separator at offset %d", ErrMalformedIdentifier, filename, pos)
		}
	}

	number := base[:numberLen]
	for _, r := range number {
		if r < '0' || r > '9' {
			return Identity{}, fmt.Errorf("%w: %q: card number %q is not numeric", ErrMalformedIdentifier, filename, number)
		}
	}

	id := base[idOffset : idOffset+idLen]
	if !validID(id) {
		return Identity{}, fmt.Errorf("%w: %q: invalid id slot %q", ErrMalformedIdentifier, filename, id)
	}

	var side Side
	switch base[sideOffset:] {
	case "-1":
		side = SideA
	case "-2":
		side = SideB
	default:
		return Identity{}, fmt.Errorf("%w: %q: unknown side suffix %q", ErrMalformedIdentifier, filename, base[sideOffset:])
	}

	ident := Identity{
		CardID: id,
		Number: number,
		Slug:   strings.TrimRight(base[slugOffset:slugOffset+slugLen], "-"),
		Side:   side,
	}

	switch base[roleOffset] {
	case 'p':
		ident.BackRole = RolePlayer
	case 'e':
		ident.BackRole = RoleEncounter
	}

	switch marker := base[copiesOffset]; {
	case marker == 'p':
		ident.PlayerDeck = true
	case marker >= '1' && marker <= '9':
		ident.Copy = int(marker - '0')
	}

	return ident, nil
}

// CardIDAt slices the stable card id out of a rendered filename without a
// full parse. Returns false when the filename is too short or the slot does
// not look like an id.
func CardIDAt(filename string) (string, bool) {
	base, _, err := splitExt(filename)
	if err != nil || len(base) != baseLen {
		return "", false
	}
	id := base[idOffset : idOffset+idLen]
	if !validID(id) {
		return "", false
	}
	return id, true
}

// Render produces the filename for ident under the given scheme and
// extension. It is pure and deterministic: the same identity always renders
// to the same name.
func (ident Identity) Render(scheme Scheme, ext string) string {
	switch scheme {
	case SchemeDatabase:
		suffix := ""
		if ident.Side == SideB {
			suffix = "-2"
		}
		return ident.Number + "-" + ident.Slug + suffix + "." + ext
	case SchemeTabletop:
		if ident.Side == SideB {
			return ident.CardID + ".B." + ext
		}
		return ident.CardID + "." + ext
	case SchemeVendor:
		parts := []string{ident.Number}
		if ident.Copy > 0 {
			parts = append(parts, strconv.Itoa(ident.Copy))
		}
		parts = append(parts, ident.Slug, sideToken(ident.Side))
		return strings.Join(parts, "-") + "." + ext
	default:
		return ident.renderFixed(ext)
	}
}

func (ident Identity) renderFixed(ext string) string {
	var b strings.Builder
	b.Grow(baseLen + 4)
	b.WriteString(ident.Number)
	b.WriteByte('-')
	switch {
	case ident.Copy > 0:
		b.WriteByte(byte('0' + ident.Copy))
	case ident.PlayerDeck:
		b.WriteByte('p')
	default:
		b.WriteByte('-')
	}
	b.WriteByte('-')
	switch ident.BackRole {
	case RolePlayer:
		b.WriteByte('p')
	case RoleEncounter:
		b.WriteByte('e')
	default:
		b.WriteByte('-')
	}
	b.WriteByte('-')
	slug := ident.Slug
	if len(slug) > slugLen {
		slug = slug[:slugLen]
	}
	b.WriteString(slug)
	b.WriteString(strings.Repeat("-", slugLen-len(slug)))
	b.WriteString(ident.CardID)
	b.WriteByte('-')
	b.WriteString(sideToken(ident.Side))
	b.WriteByte('.')
	b.WriteString(ext)
	return b.String()
}

func sideToken(side Side) string {
	if side == SideB {
		return "2"
	}
	return "1"
}

func splitExt(filename string) (base, ext string, err error) {
	dot := strings.LastIndexByte(filename, '.')
	if dot < 0 {
		return "", "", fmt.Errorf("%w: %q: no extension", ErrMalformedIdentifier, filename)
	}
	ext = strings.ToLower(filename[dot+1:])
	if _, ok := extensions[ext]; !ok {
		return "", "", fmt.Errorf("%w: %q: unsupported extension %q", ErrMalformedIdentifier, filename, ext)
	}
	return filename[:dot], ext, nil
}

func validID(id string) bool {
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c == '-':
		default:
			return false
		}
	}
	return strings.Trim(id, "-") != ""
}
