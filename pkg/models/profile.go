package models

// User credit rating constants. The score is a fixed-point value multiplied
// by 100 so the program can avoid floats (420 means 4.20).
const (
	UCRTopContributor      int64 = 420
	UCRValuableContributor int64 = 69
	UCRAverageContributor  int64 = 1
	UCRLowValueContributor int64 = -3
	UCRSpamUser            int64 = -10

	UCRBaseline int64 = 100

	// Bounds applied on decode; anything outside is a corrupt or adversarial
	// record and gets clamped rather than rejected.
	UCRMin int64 = -1000
	UCRMax int64 = 100000
)

// VerificationThreshold is the like-rate percentage above which a profile
// becomes eligible for the verified flag.
const VerificationThreshold uint64 = 70

// Profile is a user profile account.
type Profile struct {
	Owner             Key    `json:"owner"`
	Username          string `json:"username"`
	Bio               string `json:"bio"`
	ProfileImage      string `json:"profile_image"`
	CoverImage        string `json:"cover_image"`
	CreatedAt         uint64 `json:"created_at"`
	Followers         uint64 `json:"followers"`
	Following         uint64 `json:"following"`
	CreditRating      int64  `json:"credit_rating"`
	PostsCount        uint64 `json:"posts_count"`
	LastPostTimestamp uint64 `json:"last_post_ts"`
	DailyPostCount    uint64 `json:"daily_post_count"`
	Verified          bool   `json:"verified"`
}

// ClampUCR bounds a raw credit rating read off the ledger.
func ClampUCR(v int64) int64 {
	if v < UCRMin {
		return UCRMin
	}
	if v > UCRMax {
		return UCRMax
	}
	return v
}

// CreditScore returns the credit rating as its human decimal value.
func (p *Profile) CreditScore() float64 {
	return float64(p.CreditRating) / 100
}
