// Package imagepool indexes a directory of rendered card images into ordered
// front/back pairs per back role. Back resolution prefers a card's own side B
// image; cards without one fall back to the official back for their role, and
// cards with no resolvable back are excluded with a reason rather than
// failing the pool.
package imagepool
