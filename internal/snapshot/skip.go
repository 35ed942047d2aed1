package snapshot

import (
	"github.com/beevik/etree"
)

// SkipInfo records what a prior snapshot proved unchanged. Skip flags are
// advisory: they are derived only from content fingerprints, never from file
// timestamps.
type SkipInfo struct {
	// Set is true when the set as a whole is unchanged, which lets whole
	// stages short-circuit.
	Set bool
	// CardIDs holds the ids of individually unchanged cards.
	CardIDs map[string]struct{}
}

// Skipped reports whether a specific card is flagged unchanged.
func (s SkipInfo) Skipped(cardID string) bool {
	if s.Set {
		return true
	}
	_, ok := s.CardIDs[cardID]
	return ok
}

// Annotate computes and stores content fingerprints on a set document. Each
// card gets a hash attribute over its own canonical form; the set element then
// gets a hash over the whole tree including the per-card hashes but excluding
// the set hash itself. Card order is part of the set fingerprint, so quantity
// or ordering changes invalidate the set even when every card matches.
func Annotate(doc *etree.Document) {
	root := doc.Root()
	if root == nil {
		return
	}
	for _, card := range Cards(doc) {
		card.RemoveAttr(attrHash)
		card.RemoveAttr(attrSkip)
		card.CreateAttr(attrHash, Fingerprint(card))
	}
	root.RemoveAttr(attrHash)
	root.RemoveAttr(attrSkip)
	setHash := Fingerprint(root)
	root.CreateAttr(attrHash, setHash)
}

// MarkSkips compares an annotated document against the prior snapshot and
// flags unchanged elements with skip="1". With a nil prior document nothing
// is flagged and all work runs. The returned SkipInfo mirrors the flags.
func MarkSkips(doc, prior *etree.Document) SkipInfo {
	info := SkipInfo{CardIDs: make(map[string]struct{})}
	if prior == nil {
		return info
	}
	root := doc.Root()
	priorRoot := prior.Root()
	if root == nil || priorRoot == nil {
		return info
	}

	if h := root.SelectAttrValue(attrHash, ""); h != "" && h == priorRoot.SelectAttrValue(attrHash, "") {
		root.CreateAttr(attrSkip, "1")
		info.Set = true
	}

	priorHashes := make(map[string]string)
	for _, card := range Cards(prior) {
		id := card.SelectAttrValue(attrID, "")
		if id == "" {
			continue
		}
		priorHashes[id] = card.SelectAttrValue(attrHash, "")
	}

	for _, card := range Cards(doc) {
		id := card.SelectAttrValue(attrID, "")
		if id == "" {
			continue
		}
		h := card.SelectAttrValue(attrHash, "")
		if info.Set || (h != "" && h == priorHashes[id]) {
			card.CreateAttr(attrSkip, "1")
			info.CardIDs[id] = struct{}{}
		}
	}
	return info
}

// SkipInfoOf reads the skip flags already present on a document, for stages
// that run after fingerprinting and only consume the stored snapshot.
func SkipInfoOf(doc *etree.Document) SkipInfo {
	info := SkipInfo{CardIDs: make(map[string]struct{})}
	root := doc.Root()
	if root == nil {
		return info
	}
	info.Set = root.SelectAttrValue(attrSkip, "") == "1"
	for _, card := range Cards(doc) {
		if card.SelectAttrValue(attrSkip, "") != "1" {
			continue
		}
		if id := card.SelectAttrValue(attrID, ""); id != "" {
			info.CardIDs[id] = struct{}{}
		}
	}
	return info
}
