package domain

// TagStat is one entry of the global tag vocabulary: a distinct tag and
// how many signals reference it across all stories.
type TagStat struct {
	Tag   string
	Count int64
}
