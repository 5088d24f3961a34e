package layout

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"blocksd/pkg/models"
)

func testKey(fill byte) models.Key {
	var k models.Key
	for i := range k {
		k[i] = fill
	}
	return k
}

// buildCommunityBuf assembles the raw Community wire bytes by hand so the
// test does not depend on the encoder under test.
func buildCommunityBuf(nameLen uint32, name string, creator models.Key) []byte {
	var b []byte
	b = append(b, 1)                         // initialized
	b = append(b, 7, 0, 0, 0, 0, 0, 0, 0)    // id = 7
	b = append(b, byte(nameLen), byte(nameLen>>8), byte(nameLen>>16), byte(nameLen>>24))
	b = append(b, name...)                   // name bytes
	b = append(b, 0, 0, 0, 0)                // description ""
	b = append(b, 0, 0, 0, 0)                // avatar ""
	b = append(b, creator[:]...)             // creator
	b = append(b, 1, 0, 0, 0, 0, 0, 0, 0)    // member_count = 1
	b = append(b, 0, 0, 0, 0)                // rules count = 0
	b = append(b, 0)                         // private = false
	return b
}

func TestDecodeCommunityKnownBuffer(t *testing.T) {
	creator := testKey(0xAB)
	buf := buildCommunityBuf(4, "Test", creator)

	c, err := DecodeCommunity(buf)
	if err != nil {
		t.Fatalf("DecodeCommunity: %v", err)
	}
	if c.ID != 7 {
		t.Fatalf("id: got %d want 7", c.ID)
	}
	if c.Name != "Test" {
		t.Fatalf("name: got %q want Test", c.Name)
	}
	if c.Description != "" || c.Avatar != "" {
		t.Fatalf("expected empty description/avatar, got %q/%q", c.Description, c.Avatar)
	}
	if c.Creator != creator {
		t.Fatalf("creator mismatch")
	}
	if c.MemberCount != 1 {
		t.Fatalf("member_count: got %d want 1", c.MemberCount)
	}
	if len(c.Rules) != 0 {
		t.Fatalf("rules: got %d want 0", len(c.Rules))
	}
	if c.Private {
		t.Fatalf("expected public community")
	}
}

func TestDecodeCommunityOverLengthName(t *testing.T) {
	// Declared name length 150 exceeds the 100-byte cap; decoding must fail
	// even when the buffer actually carries 150 bytes of name.
	long := bytes.Repeat([]byte{'x'}, 150)
	buf := buildCommunityBuf(150, string(long), testKey(1))

	_, err := DecodeCommunity(buf)
	if err == nil {
		t.Fatalf("expected decode error for over-length name")
	}
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DecodeError, got %T: %v", err, err)
	}
	if de.Field != "name" {
		t.Fatalf("field: got %q want name", de.Field)
	}
}

func TestDecodeShortBuffersNeverPanic(t *testing.T) {
	// Every prefix of a valid buffer up to the minimum length must produce a
	// DecodeError (or ErrUninitialized for the empty flag), never a panic.
	full := buildCommunityBuf(4, "Test", testKey(2))
	for _, kind := range []Kind{KindProfile, KindPost, KindComment, KindCommunity} {
		for n := 0; n < len(full); n++ {
			_, err := Decode(kind, full[:n])
			if err == nil && n < len(full) && kind == KindCommunity {
				t.Fatalf("kind %s: decode of %d-byte prefix unexpectedly succeeded", kind, n)
			}
		}
	}
}

func TestDecodeUninitialized(t *testing.T) {
	buf := buildCommunityBuf(4, "Test", testKey(3))
	buf[0] = 0
	_, err := DecodeCommunity(buf)
	if !errors.Is(err, ErrUninitialized) {
		t.Fatalf("expected ErrUninitialized, got %v", err)
	}
}

func TestDecodeRejectsNonBinaryBoolBytes(t *testing.T) {
	// Flag fields are borsh bools; anything outside 0/1 is another layout's
	// data, not a truthy flag.
	for _, b := range []byte{2, 0x7f, 0xff} {
		buf := buildCommunityBuf(4, "Test", testKey(5))
		buf[0] = b
		_, err := DecodeCommunity(buf)
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Fatalf("initialized=%d: expected *DecodeError, got %v", b, err)
		}
		if de.Field != "initialized" {
			t.Fatalf("field: got %q want initialized", de.Field)
		}

		buf = buildCommunityBuf(4, "Test", testKey(5))
		buf[len(buf)-1] = b // private flag
		if _, err := DecodeCommunity(buf); !errors.As(err, &de) {
			t.Fatalf("private=%d: expected *DecodeError, got %v", b, err)
		}
	}
}

func TestDecodeInvalidUTF8(t *testing.T) {
	buf := buildCommunityBuf(4, string([]byte{0xff, 0xfe, 0xfd, 0xfc}), testKey(4))
	_, err := DecodeCommunity(buf)
	if !IsDecodeError(err) {
		t.Fatalf("expected decode error for invalid utf-8, got %v", err)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	in := &models.Profile{
		Owner:             testKey(9),
		Username:          "satoshi",
		Bio:               "building blocks",
		ProfileImage:      "https://gw.example/ipfs/Qm1",
		CoverImage:        "https://gw.example/ipfs/Qm2",
		CreatedAt:         1700000000,
		Followers:         12,
		Following:         7,
		CreditRating:      models.UCRBaseline,
		PostsCount:        3,
		LastPostTimestamp: 1700000100,
		DailyPostCount:    1,
		Verified:          true,
	}
	out, err := DecodeProfile(EncodeProfile(in))
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch:\n in=%+v\nout=%+v", in, out)
	}
}

func TestPostRoundTripAndDerivedRating(t *testing.T) {
	in := &models.Post{
		ID:        42,
		Author:    testKey(5),
		Content:   "gm",
		Timestamp: 1700000000,
		Likes:     55,
		Comments:  2,
		Mirrors:   1,
		Images:    []string{"https://gw.example/ipfs/Qm3"},
		Rating:    models.RatingGold, // consistent with 55 likes
	}
	out, err := DecodePost(EncodePost(in))
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch:\n in=%+v\nout=%+v", in, out)
	}

	// A stale stored rating byte must lose to the like counter.
	in.Rating = models.RatingNone
	buf := EncodePost(in)
	out, err = DecodePost(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Rating != models.RatingGold {
		t.Fatalf("rating: got %s want gold (derived from %d likes)", out.Rating, out.Likes)
	}
}

func TestCommentRoundTrip(t *testing.T) {
	in := &models.Comment{
		ID:        11,
		ParentID:  42,
		Author:    testKey(6),
		Content:   "nice post",
		Likes:     1,
		Timestamp: 1700000200,
	}
	out, err := DecodeComment(EncodeComment(in))
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch:\n in=%+v\nout=%+v", in, out)
	}
}

func TestCommunityRoundTrip(t *testing.T) {
	in := &models.Community{
		ID:          3,
		Name:        "sb/ledgerheads",
		Description: "fixed-layout enjoyers",
		Avatar:      "https://gw.example/ipfs/Qm4",
		Creator:     testKey(7),
		MemberCount: 9,
		Rules:       []string{"no spam", "be kind"},
		Private:     true,
	}
	out, err := DecodeCommunity(EncodeCommunity(in))
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch:\n in=%+v\nout=%+v", in, out)
	}
}

func TestDecodeIgnoresTrailingSlack(t *testing.T) {
	// Accounts are allocated with slack; zero padding after the last field
	// must not break decoding.
	buf := append(buildCommunityBuf(4, "Test", testKey(8)), make([]byte, 512)...)
	c, err := DecodeCommunity(buf)
	if err != nil {
		t.Fatalf("decode with slack: %v", err)
	}
	if c.Name != "Test" {
		t.Fatalf("name: got %q", c.Name)
	}
}
