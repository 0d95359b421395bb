package store

import "time"

// Store is a fully populated point of interest ready for display.
// Every field is always set; missing upstream data is replaced by documented
// placeholders and synthesized metadata.
type Store struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	CategoryKey  string   `json:"category_key"` // Raw upstream tag (or forced keyword)
	TypeDisplay  string   `json:"type_display"`
	Lat          float64  `json:"lat"`
	Lng          float64  `json:"lng"`
	DistanceKm   float64  `json:"distance_km"`
	Address      string   `json:"address"`
	Rating       float64  `json:"rating"`
	ReviewsCount int      `json:"reviews_count"`
	OpenHour     string   `json:"open_hour"`
	Products     []string `json:"products"`
	Description  string   `json:"description"`
	Tags         []string `json:"tags"`
	ReviewList   []string `json:"review_list"`
}

// Metadata is the display data produced by the synthesizer and replaced
// field-by-field by enrichment.
type Metadata struct {
	TypeDisplay  string
	Rating       float64
	ReviewsCount int
	OpenHour     string
	Products     []string
	Description  string
	Tags         []string
	ReviewList   []string
}

// Apply copies metadata into the store.
func (s *Store) Apply(m Metadata) {
	s.TypeDisplay = m.TypeDisplay
	s.Rating = m.Rating
	s.ReviewsCount = m.ReviewsCount
	s.OpenHour = m.OpenHour
	s.Products = m.Products
	s.Description = m.Description
	s.Tags = m.Tags
	s.ReviewList = m.ReviewList
}

// Clone returns a deep copy so callers can modify slices without touching the original.
func (s Store) Clone() Store {
	c := s
	c.Products = append([]string(nil), s.Products...)
	c.Tags = append([]string(nil), s.Tags...)
	c.ReviewList = append([]string(nil), s.ReviewList...)
	return c
}

// CloneAll deep-copies a result set.
func CloneAll(stores []Store) []Store {
	if stores == nil {
		return nil
	}
	out := make([]Store, len(stores))
	for i, s := range stores {
		out[i] = s.Clone()
	}
	return out
}

// FindByID returns the store with the given id from an in-memory list.
func FindByID(stores []Store, id string) (*Store, bool) {
	for i := range stores {
		if stores[i].ID == id {
			s := stores[i].Clone()
			return &s, true
		}
	}
	return nil, false
}

// Location is the coordinate of the last search.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// SessionContext is the per-session short-term memory shared by search and chat.
type SessionContext struct {
	Location  *Location `json:"location"`
	Stores    []Store   `json:"stores"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasLocation reports whether a search has set the user location.
func (c *SessionContext) HasLocation() bool {
	return c != nil && c.Location != nil
}
