package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/beevik/etree"
)

// ErrSnapshotParse indicates a prior snapshot file that exists but cannot be
// read. This is fatal for the pair: silently regenerating would hide a
// corrupted snapshot store and guessing partial skip state is worse than
// doing the work again.
var ErrSnapshotParse = errors.New("snapshot parse failure")

// Element and attribute names of the set document.
const (
	tagCards     = "cards"
	tagCard      = "card"
	tagProperty  = "property"
	tagAlternate = "alternate"

	attrID       = "id"
	attrHash     = "hash"
	attrSkip     = "skip"
	attrName     = "name"
	attrValue    = "value"
	attrType     = "type"
	attrQuantity = "quantity"
)

// Path returns the snapshot file location for a set and language.
func Path(dir, setID, language string) string {
	return filepath.Join(dir, setID+"."+language+".xml")
}

// OldPath returns the prior-run snapshot location for a set and language.
func OldPath(dir, setID, language string) string {
	return Path(dir, setID, language) + ".old"
}

// Rotate moves the current snapshot aside as the prior snapshot for the next
// comparison. With fromScratch set, the prior snapshot is removed instead so
// nothing gets skipped.
func Rotate(dir, setID, language string, fromScratch bool) error {
	current := Path(dir, setID, language)
	old := OldPath(dir, setID, language)

	if _, err := os.Stat(current); err == nil {
		if err := os.Rename(current, old); err != nil {
			return fmt.Errorf("rotate snapshot: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat snapshot: %w", err)
	}

	if fromScratch {
		if err := os.Remove(old); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove prior snapshot: %w", err)
		}
	}
	return nil
}

// Load reads a snapshot document from disk. A missing file is reported with
// os.ErrNotExist so callers can distinguish cold start from corruption; any
// other failure wraps ErrSnapshotParse.
func Load(path string) (*etree.Document, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrSnapshotParse, path, err)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSnapshotParse, path, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("%w: %s: empty document", ErrSnapshotParse, path)
	}
	return doc, nil
}

// Save writes a snapshot document, creating the directory when needed.
func Save(doc *etree.Document, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}
	doc.Indent(2)
	if err := doc.WriteToFile(path); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Cards returns the card elements of a set document in document order.
func Cards(doc *etree.Document) []*etree.Element {
	root := doc.Root()
	if root == nil {
		return nil
	}
	cards := root.SelectElement(tagCards)
	if cards == nil {
		return nil
	}
	return cards.SelectElements(tagCard)
}

// Property returns the value of a named card property, or "" when absent.
func Property(card *etree.Element, name string) string {
	for _, prop := range card.SelectElements(tagProperty) {
		if prop.SelectAttrValue(attrName, "") == name {
			return prop.SelectAttrValue(attrValue, "")
		}
	}
	return ""
}

// SetProperty updates or appends a named property on a card element.
func SetProperty(card *etree.Element, name, value string) {
	for _, prop := range card.SelectElements(tagProperty) {
		if prop.SelectAttrValue(attrName, "") == name {
			prop.CreateAttr(attrValue, value)
			return
		}
	}
	prop := card.CreateElement(tagProperty)
	prop.CreateAttr(attrName, name)
	prop.CreateAttr(attrValue, value)
}

// Alternate returns the side B element of a card, or nil.
func Alternate(card *etree.Element) *etree.Element {
	for _, alt := range card.SelectElements(tagAlternate) {
		if alt.SelectAttrValue(attrType, "") == "B" {
			return alt
		}
	}
	return nil
}
