package runlog

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a ledger item.
type Status string

const (
	StatusPending        Status = "pending"
	StatusFingerprinting Status = "fingerprinting"
	StatusFingerprinted  Status = "fingerprinted"
	StatusRendering      Status = "rendering"
	StatusRendered       Status = "rendered"
	StatusPackaging      Status = "packaging"
	StatusCompleted      Status = "completed"
	StatusFailed         Status = "failed"
	StatusReview         Status = "review"
)

var allStatuses = []Status{
	StatusPending,
	StatusFingerprinting,
	StatusFingerprinted,
	StatusRendering,
	StatusRendered,
	StatusPackaging,
	StatusCompleted,
	StatusFailed,
	StatusReview,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusFingerprinting: {},
	StatusRendering:      {},
	StatusPackaging:      {},
}

type statusTransition struct {
	from Status
	to   Status
}

// Interrupted in-flight statuses roll back to the last stable status when the
// ledger is reopened, so a crashed run repeats the interrupted stage instead
// of wedging.
var stageRollbackTransitions = []statusTransition{
	{from: StatusFingerprinting, to: StatusPending},
	{from: StatusRendering, to: StatusFingerprinted},
	{from: StatusPackaging, to: StatusRendered},
}

// Item represents one (set, language) pair persisted in SQLite.
type Item struct {
	ID              int64
	SetID           string
	SetName         string
	Language        string
	Status          Status
	SkippedSet      bool
	SkippedCards    int
	RenderedCards   int
	OutputsJSON     string
	ErrorMessage    string
	ReviewReason    string
	NeedsReview     bool
	ProgressStage   string
	ProgressMessage string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HealthSummary describes aggregated ledger counts per key lifecycle state.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Failed     int
	Review     int
	Completed  int
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing returns true when the status reflects an in-flight stage.
func (i Item) IsProcessing() bool {
	_, ok := processingStatuses[i.Status]
	return ok
}

// IsProcessingStatus reports whether a status reflects an in-flight stage.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// Pair formats the item's identity for logs and tables.
func (i Item) Pair() string {
	return i.SetID + "/" + i.Language
}

// SetFailed marks the item as failed with the given error message.
func (i *Item) SetFailed(message string) {
	i.Status = StatusFailed
	i.ErrorMessage = message
	i.ProgressStage = "Failed"
	i.ProgressMessage = message
}

// SetReview marks the item for manual intervention.
func (i *Item) SetReview(reason string) {
	i.Status = StatusReview
	i.NeedsReview = true
	i.ReviewReason = reason
	i.ProgressMessage = reason
}
