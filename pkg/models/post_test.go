package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestRatingForLikes(t *testing.T) {
	cases := []struct {
		likes uint64
		want  PostRating
	}{
		{0, RatingNone},
		{4, RatingNone},
		{5, RatingBronze},
		{19, RatingBronze},
		{20, RatingSilver},
		{50, RatingGold},
		{150, RatingPlatinum},
		{500, RatingDiamond},
		{1000, RatingAce},
		{999_999, RatingAce},
		{1_000_000, RatingConqueror},
	}
	for _, c := range cases {
		if got := RatingForLikes(c.likes); got != c.want {
			t.Fatalf("likes=%d: got %s want %s", c.likes, got, c.want)
		}
	}
}

func TestDeriveOverridesStoredSnapshot(t *testing.T) {
	now := time.Now()
	p := &Post{
		Likes:     25,
		Timestamp: uint64(now.Add(-time.Hour).Unix()),
		Rating:    RatingConqueror, // stale on-ledger byte
		KillZone:  true,
	}
	p.Derive(now)
	if p.Rating != RatingSilver {
		t.Fatalf("got %s want silver", p.Rating)
	}
	if p.KillZone {
		t.Fatalf("fresh post with likes must not be in the kill zone")
	}
}

func TestKillZoneWindow(t *testing.T) {
	now := time.Now()
	old := &Post{Likes: KillZoneMinLikes - 1, Timestamp: uint64(now.Add(-49 * time.Hour).Unix())}
	if !old.InKillZone(now) {
		t.Fatalf("stale low-like post should be in the kill zone")
	}
	fresh := &Post{Likes: 0, Timestamp: uint64(now.Add(-time.Hour).Unix())}
	if fresh.InKillZone(now) {
		t.Fatalf("young post should not be in the kill zone")
	}
	liked := &Post{Likes: KillZoneMinLikes, Timestamp: uint64(now.Add(-100 * time.Hour).Unix())}
	if liked.InKillZone(now) {
		t.Fatalf("post at the like floor should never enter the kill zone")
	}
}

func TestRatingJSONIsTierName(t *testing.T) {
	b, err := json.Marshal(struct {
		R PostRating `json:"rating"`
	}{RatingGold})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"rating":"gold"}` {
		t.Fatalf("unexpected json %s", b)
	}
}

func TestRatingJSONRoundTrip(t *testing.T) {
	for r := RatingNone; r <= RatingConqueror; r++ {
		b, err := json.Marshal(r)
		if err != nil {
			t.Fatalf("marshal %s: %v", r, err)
		}
		var back PostRating
		if err := json.Unmarshal(b, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", b, err)
		}
		if back != r {
			t.Fatalf("round trip: got %s want %s", back, r)
		}
	}

	// numeric form also accepted
	var fromNum PostRating
	if err := json.Unmarshal([]byte("3"), &fromNum); err != nil {
		t.Fatalf("unmarshal numeric: %v", err)
	}
	if fromNum != RatingGold {
		t.Fatalf("numeric form: got %s want gold", fromNum)
	}

	var bad PostRating
	if err := json.Unmarshal([]byte(`"legendary"`), &bad); err == nil {
		t.Fatalf("expected error for unknown tier name")
	}
}

func TestPostJSONRoundTrip(t *testing.T) {
	in := &Post{ID: 7, Likes: 55, Rating: RatingGold, Content: "gm"}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Post
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Rating != RatingGold || out.Likes != 55 || out.Content != "gm" {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestClampUCR(t *testing.T) {
	if got := ClampUCR(-5000); got != UCRMin {
		t.Fatalf("got %d want %d", got, UCRMin)
	}
	if got := ClampUCR(500_000); got != UCRMax {
		t.Fatalf("got %d want %d", got, UCRMax)
	}
	if got := ClampUCR(UCRBaseline); got != UCRBaseline {
		t.Fatalf("in-range value changed: %d", got)
	}
}
