// Package tx builds instruction payload bytes for the social program and
// defines the submission collaborator. Signing and fee handling live behind
// the Submitter interface; this package only produces payloads and
// interprets confirmation or rejection.
package tx

import (
	"blocksd/pkg/models"
)

// Instruction variant indices. The order is fixed by the deployed program;
// new variants are appended, never inserted.
const (
	opCreateProfile   byte = 0
	opUpdateProfile   byte = 1
	opCreatePost      byte = 2
	opLikePost        byte = 3
	opCommentOnPost   byte = 4
	opFollowProfile   byte = 5
	opUnfollowProfile byte = 6
	opCreateCommunity byte = 7
	opJoinCommunity   byte = 8
	opUnlikePost      byte = 9
)

// enc mirrors the account layout writer: little-endian ints, u32
// length-prefixed strings, u32 count-prefixed lists, raw 32-byte keys.
type enc struct {
	buf []byte
}

func (e *enc) op(b byte) *enc {
	e.buf = append(e.buf, b)
	return e
}

func (e *enc) u64(v uint64) *enc {
	e.buf = append(e.buf,
		byte(v), byte(v>>8), byte(v>>16), byte(v>>24),
		byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56))
	return e
}

func (e *enc) str(s string) *enc {
	n := uint32(len(s))
	e.buf = append(e.buf, byte(n), byte(n>>8), byte(n>>16), byte(n>>24))
	e.buf = append(e.buf, s...)
	return e
}

func (e *enc) strList(list []string) *enc {
	n := uint32(len(list))
	e.buf = append(e.buf, byte(n), byte(n>>8), byte(n>>16), byte(n>>24))
	for _, s := range list {
		e.str(s)
	}
	return e
}

func (e *enc) key(k models.Key) *enc {
	e.buf = append(e.buf, k[:]...)
	return e
}

// CreateProfile builds the profile creation payload.
func CreateProfile(username, bio, profileImage, coverImage string) []byte {
	e := &enc{}
	return e.op(opCreateProfile).str(username).str(bio).str(profileImage).str(coverImage).buf
}

// UpdateProfile builds the profile update payload.
func UpdateProfile(bio, profileImage, coverImage string) []byte {
	e := &enc{}
	return e.op(opUpdateProfile).str(bio).str(profileImage).str(coverImage).buf
}

// CreatePost builds the post creation payload.
func CreatePost(content string, images []string) []byte {
	e := &enc{}
	return e.op(opCreatePost).str(content).strList(images).buf
}

// LikePost builds the like payload.
func LikePost(postID uint64) []byte {
	e := &enc{}
	return e.op(opLikePost).u64(postID).buf
}

// UnlikePost builds the unlike payload.
func UnlikePost(postID uint64) []byte {
	e := &enc{}
	return e.op(opUnlikePost).u64(postID).buf
}

// CommentOnPost builds the comment payload.
func CommentOnPost(content string, parentID uint64) []byte {
	e := &enc{}
	return e.op(opCommentOnPost).str(content).u64(parentID).buf
}

// FollowProfile builds the follow payload.
func FollowProfile(profile models.Key) []byte {
	e := &enc{}
	return e.op(opFollowProfile).key(profile).buf
}

// UnfollowProfile builds the unfollow payload.
func UnfollowProfile(profile models.Key) []byte {
	e := &enc{}
	return e.op(opUnfollowProfile).key(profile).buf
}

// CreateCommunity builds the community creation payload.
func CreateCommunity(name, description, avatar string, rules []string) []byte {
	e := &enc{}
	return e.op(opCreateCommunity).str(name).str(description).str(avatar).strList(rules).buf
}

// JoinCommunity builds the join payload.
func JoinCommunity(communityID uint64) []byte {
	e := &enc{}
	return e.op(opJoinCommunity).u64(communityID).buf
}
