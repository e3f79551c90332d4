package controllers

const (
	// DefaultCompactThreshold is the fraction of the viewport height after which navigation turns compact
	DefaultCompactThreshold = 0.7
	// DefaultPrefetchMargin is how many rows before the end the next page is requested
	DefaultPrefetchMargin = 3
)

// TailKey identifies the last rendered item of a feed state
type TailKey struct {
	Generation uint64
	Count      int
	LastID     int
}

// ViewportCoordinator derives the compact-navigation flag from the scroll
// offset and turns tail visibility into at most one page request per tail
type ViewportCoordinator struct {
	threshold float64
	margin    int

	compact   bool
	lastTail  TailKey
	requested bool
}

// NewViewportCoordinator creates a coordinator. Non-positive values select the defaults.
func NewViewportCoordinator(threshold float64, margin int) *ViewportCoordinator {
	if threshold <= 0 {
		threshold = DefaultCompactThreshold
	}
	if margin < 0 {
		margin = DefaultPrefetchMargin
	}
	return &ViewportCoordinator{threshold: threshold, margin: margin}
}

// Scroll records the offset and reports whether the compact flag changed
func (v *ViewportCoordinator) Scroll(offset, viewportHeight int) bool {
	compact := float64(offset) > v.threshold*float64(viewportHeight)
	if compact == v.compact {
		return false
	}
	v.compact = compact
	return true
}

// Compact reports whether the compact navigation is shown
func (v *ViewportCoordinator) Compact() bool {
	return v.compact
}

// ObserveTail reports whether a page request should be issued for tail,
// given it is distance rows from the bottom of the viewport. Each tail is
// reported at most once.
func (v *ViewportCoordinator) ObserveTail(tail TailKey, distance int) bool {
	if distance > v.margin {
		return false
	}
	if v.requested && tail == v.lastTail {
		return false
	}
	v.lastTail = tail
	v.requested = true
	return true
}
