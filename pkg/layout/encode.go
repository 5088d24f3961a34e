package layout

import (
	"blocksd/pkg/models"
)

// Encoders mirror the layout tables exactly. They exist for tests, local
// tooling, and instruction construction; the program is the only writer of
// real accounts.

// EncodeProfile serializes a Profile with the initialized flag set.
func EncodeProfile(p *models.Profile) []byte {
	w := &writer{}
	w.putBool(true)
	w.putKey(p.Owner)
	w.putString(p.Username)
	w.putString(p.Bio)
	w.putString(p.ProfileImage)
	w.putString(p.CoverImage)
	w.putUint64(p.CreatedAt)
	w.putUint64(p.Followers)
	w.putUint64(p.Following)
	w.putInt64(p.CreditRating)
	w.putUint64(p.PostsCount)
	w.putUint64(p.LastPostTimestamp)
	w.putUint64(p.DailyPostCount)
	w.putBool(p.Verified)
	return w.buf
}

// EncodePost serializes a Post with the initialized flag set.
func EncodePost(p *models.Post) []byte {
	w := &writer{}
	w.putBool(true)
	w.putUint64(p.ID)
	w.putKey(p.Author)
	w.putString(p.Content)
	w.putUint64(p.Timestamp)
	w.putUint64(p.Likes)
	w.putUint64(p.Comments)
	w.putUint64(p.Mirrors)
	w.putStringList(p.Images)
	w.putByte(byte(p.Rating))
	w.putBool(p.KillZone)
	return w.buf
}

// EncodeComment serializes a Comment with the initialized flag set.
func EncodeComment(c *models.Comment) []byte {
	w := &writer{}
	w.putBool(true)
	w.putUint64(c.ID)
	w.putUint64(c.ParentID)
	w.putKey(c.Author)
	w.putString(c.Content)
	w.putUint64(c.Likes)
	w.putUint64(c.Timestamp)
	return w.buf
}

// EncodeCommunity serializes a Community with the initialized flag set.
func EncodeCommunity(c *models.Community) []byte {
	w := &writer{}
	w.putBool(true)
	w.putUint64(c.ID)
	w.putString(c.Name)
	w.putString(c.Description)
	w.putString(c.Avatar)
	w.putKey(c.Creator)
	w.putUint64(c.MemberCount)
	w.putStringList(c.Rules)
	w.putBool(c.Private)
	return w.buf
}
