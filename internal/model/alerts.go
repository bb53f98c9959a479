package model

// Subscription registers an email for alerts about one company. CompanyName
// is unique; a later subscription for the same company replaces the earlier one.
type Subscription struct {
	CompanyName string `json:"companyName"`
	Email       string `json:"email"`
}

// Notification is an entry in the notification feed.
type Notification struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"` // Unix milliseconds
}

// RawLead is a loosely typed lead returned by a scraper. Only Importer and
// Source are expected; everything else is whatever the page exposed.
type RawLead struct {
	Importer         string `json:"importer"`
	Consignee        string `json:"cnee,omitempty"`
	Commodity        string `json:"commodity,omitempty"`
	HSCode           string `json:"hsCode,omitempty"`
	Origin           string `json:"origin,omitempty"`
	Destination      string `json:"destination,omitempty"`
	LastShipmentDate string `json:"lastShipmentDate,omitempty"`
	Weight           string `json:"weight,omitempty"`
	ContainerCount   string `json:"containerCount,omitempty"`
	Source           string `json:"source"`
	URL              string `json:"url,omitempty"`
}
