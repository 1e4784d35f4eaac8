package domain

// Signal is one account's boolean opinion on a (story URL, tag) pair.
// The (AccountID, URL, Tag) key is unique; a repeated set overwrites the
// prior value, so no history accumulates.
type Signal struct {
	AccountID int64
	URL       string
	Tag       string
	Value     bool
}

// TagSignal is the aggregated cross-account view of one tag on one story,
// plus the caller's own vote when the caller is known.
type TagSignal struct {
	Tag            string `json:"tag"`
	Signal         *bool  `json:"signal"`
	SignalsFor     int64  `json:"signalsFor"`
	SignalsAgainst int64  `json:"signalsAgainst"`
}
