package models

import "time"

// Kill-zone defaults: a post that cannot collect KillZoneMinLikes within
// KillZoneWindow is flagged as sustained low engagement. Both are
// overridable from config at startup.
var (
	KillZoneWindow   = 48 * time.Hour
	KillZoneMinLikes = uint64(BronzeLikes)
)

// Post is a post account. Rating and KillZone are derived values: the
// ledger bytes carry snapshots of both, but readers must treat the like
// counter and timestamp as the only truth.
type Post struct {
	ID        uint64     `json:"id"`
	Author    Key        `json:"author"`
	Content   string     `json:"content"`
	Timestamp uint64     `json:"ts"`
	Likes     uint64     `json:"likes"`
	Comments  uint64     `json:"comments"`
	Mirrors   uint64     `json:"mirrors"`
	Images    []string   `json:"images,omitempty"`
	Rating    PostRating `json:"rating"`
	KillZone  bool       `json:"in_kill_zone"`

	// AuthorProfile is the resolved author, nil when the point lookup
	// failed or the profile does not exist.
	AuthorProfile *Profile `json:"author_profile,omitempty"`
}

// InKillZone reports sustained low engagement at the given instant.
func (p *Post) InKillZone(now time.Time) bool {
	if p.Likes >= KillZoneMinLikes {
		return false
	}
	age := now.Sub(time.Unix(int64(p.Timestamp), 0))
	return age > KillZoneWindow
}

// Derive recomputes the rating and kill-zone flag from the counters.
func (p *Post) Derive(now time.Time) {
	p.Rating = RatingForLikes(p.Likes)
	p.KillZone = p.InKillZone(now)
}
