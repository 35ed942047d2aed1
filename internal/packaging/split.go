package packaging

// Deck split thresholds. Pools up to splitThreshold images per side ship as a
// single deck; larger pools split into decks of at most deckSize, with the
// clamp keeping the final deck at no fewer than minLastDeck images.
const (
	splitThreshold = 130
	deckSize       = 120
	minLastDeck    = 10
)

// DeckCount returns how many decks a side of the given total splits into.
// A count of 1 means no split directories are used.
func DeckCount(total int) int {
	if total <= splitThreshold {
		return 1
	}
	return (total - minLastDeck + deckSize - 1) / deckSize
}

// DeckFor maps a 1-based image ordinal to its deck number for the given side
// total. Returns 0 when the side is not split at all.
func DeckFor(n, total int) int {
	if total <= splitThreshold {
		return 0
	}
	deck := (n-1)/deckSize + 1
	if max := DeckCount(total); deck > max {
		deck = max
	}
	return deck
}
