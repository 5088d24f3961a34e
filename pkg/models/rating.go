package models

import (
	"encoding/json"
	"fmt"
)

// PostRating is the tier a post earns from its like counter. The on-ledger
// record stores a rating byte, but the byte is only a snapshot taken at the
// last write; the tier is always recomputed from the like counter so a stale
// snapshot can never disagree with the displayed count.
type PostRating uint8

const (
	RatingNone PostRating = iota
	RatingBronze
	RatingSilver
	RatingGold
	RatingPlatinum
	RatingDiamond
	RatingAce
	RatingConqueror
)

// Like thresholds for each tier, in program units.
const (
	BronzeLikes    = 5
	SilverLikes    = 20
	GoldLikes      = 50
	PlatinumLikes  = 150
	DiamondLikes   = 500
	AceLikes       = 1000
	ConquerorLikes = 1_000_000
)

// RatingForLikes returns the tier earned by a like counter.
func RatingForLikes(likes uint64) PostRating {
	switch {
	case likes >= ConquerorLikes:
		return RatingConqueror
	case likes >= AceLikes:
		return RatingAce
	case likes >= DiamondLikes:
		return RatingDiamond
	case likes >= PlatinumLikes:
		return RatingPlatinum
	case likes >= GoldLikes:
		return RatingGold
	case likes >= SilverLikes:
		return RatingSilver
	case likes >= BronzeLikes:
		return RatingBronze
	default:
		return RatingNone
	}
}

func (r PostRating) String() string {
	switch r {
	case RatingBronze:
		return "bronze"
	case RatingSilver:
		return "silver"
	case RatingGold:
		return "gold"
	case RatingPlatinum:
		return "platinum"
	case RatingDiamond:
		return "diamond"
	case RatingAce:
		return "ace"
	case RatingConqueror:
		return "conqueror"
	default:
		return "none"
	}
}

// MarshalJSON encodes the rating as its tier name.
func (r PostRating) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.String() + `"`), nil
}

// UnmarshalJSON accepts the tier name written by MarshalJSON, plus the raw
// variant index for payloads that carry the ledger byte.
func (r *PostRating) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, ok := ratingFromName(s)
		if !ok {
			return fmt.Errorf("unknown rating tier %q", s)
		}
		*r = v
		return nil
	}
	var n uint8
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*r = PostRating(n)
	return nil
}

func ratingFromName(s string) (PostRating, bool) {
	switch s {
	case "none":
		return RatingNone, true
	case "bronze":
		return RatingBronze, true
	case "silver":
		return RatingSilver, true
	case "gold":
		return RatingGold, true
	case "platinum":
		return RatingPlatinum, true
	case "diamond":
		return RatingDiamond, true
	case "ace":
		return RatingAce, true
	case "conqueror":
		return RatingConqueror, true
	default:
		return RatingNone, false
	}
}
