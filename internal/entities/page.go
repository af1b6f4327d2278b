package entities

const (
	// DefaultPageLimit is used by listings when no limit is supplied.
	DefaultPageLimit = 50
	// DefaultHistoryLimit is used by history ledger queries.
	DefaultHistoryLimit = 100
	// DefaultActivityLimit is used by the recent activity feed.
	DefaultActivityLimit = 20
	// MaxPageLimit caps every listing.
	MaxPageLimit = 500
)

// Page holds limit/offset pagination.
type Page struct {
	Limit  int
	Offset int
}

// WithDefault returns a page with Limit clamped into (0, MaxPageLimit] and a non-negative offset.
func (p Page) WithDefault(limit int) Page {
	if p.Limit <= 0 {
		p.Limit = limit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// PageFromNumber converts a 1-based page number and size into a Page.
func PageFromNumber(page, limit int) Page {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	limit = min(limit, MaxPageLimit)
	return Page{Limit: limit, Offset: (page - 1) * limit}
}
