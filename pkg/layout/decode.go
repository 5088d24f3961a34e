package layout

import (
	"blocksd/pkg/models"
)

// decodeFields runs one layout table over a buffer and returns the raw field
// values by name. Accounts are allocated with slack, so trailing bytes after
// the last field are expected and ignored.
func decodeFields(buf []byte, kind Kind, fields []Field) (map[string]any, error) {
	r := newReader(buf)
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		var (
			v   any
			err error
		)
		switch f.Type {
		case TBool:
			v, err = r.readBool(kind, f.Name)
		case TByte:
			v, err = r.readByte(kind, f.Name)
		case TU64:
			v, err = r.readUint64(kind, f.Name)
		case TI64:
			v, err = r.readInt64(kind, f.Name)
		case TKey:
			v, err = r.readKey(kind, f.Name)
		case TString:
			v, err = r.readString(kind, f.Name, f.Max)
		case TStringList:
			v, err = r.readStringList(kind, f.Name, f.MaxItems, f.ItemMax)
		default:
			err = &DecodeError{Kind: kind, Field: f.Name, Reason: "unknown field type"}
		}
		if err != nil {
			return nil, err
		}
		out[f.Name] = v
	}
	return out, nil
}

// Decode parses a raw account buffer as the given kind. It returns
// ErrUninitialized for a structurally valid but never-written account and a
// *DecodeError for any structural mismatch. It never panics and performs no
// I/O, so callers may try it speculatively.
func Decode(kind Kind, buf []byte) (any, error) {
	switch kind {
	case KindProfile:
		return DecodeProfile(buf)
	case KindPost:
		return DecodePost(buf)
	case KindComment:
		return DecodeComment(buf)
	case KindCommunity:
		return DecodeCommunity(buf)
	default:
		return nil, &DecodeError{Kind: kind, Field: "", Reason: "unknown kind"}
	}
}

// DecodeProfile parses a Profile account.
func DecodeProfile(buf []byte) (*models.Profile, error) {
	vals, err := decodeFields(buf, KindProfile, ProfileLayout)
	if err != nil {
		return nil, err
	}
	if !vals["initialized"].(bool) {
		return nil, ErrUninitialized
	}
	return &models.Profile{
		Owner:             vals["owner"].(models.Key),
		Username:          vals["username"].(string),
		Bio:               vals["bio"].(string),
		ProfileImage:      vals["profile_image"].(string),
		CoverImage:        vals["cover_image"].(string),
		CreatedAt:         vals["created_at"].(uint64),
		Followers:         vals["followers"].(uint64),
		Following:         vals["following"].(uint64),
		CreditRating:      models.ClampUCR(vals["credit_rating"].(int64)),
		PostsCount:        vals["posts_count"].(uint64),
		LastPostTimestamp: vals["last_post_ts"].(uint64),
		DailyPostCount:    vals["daily_post_count"].(uint64),
		Verified:          vals["verified"].(bool),
	}, nil
}

// DecodePost parses a Post account. The rating is recomputed from the like
// counter; the stored byte is a stale snapshot the program wrote at the last
// like and must never win over the counter.
func DecodePost(buf []byte) (*models.Post, error) {
	vals, err := decodeFields(buf, KindPost, PostLayout)
	if err != nil {
		return nil, err
	}
	if !vals["initialized"].(bool) {
		return nil, ErrUninitialized
	}
	likes := vals["likes"].(uint64)
	return &models.Post{
		ID:        vals["id"].(uint64),
		Author:    vals["author"].(models.Key),
		Content:   vals["content"].(string),
		Timestamp: vals["ts"].(uint64),
		Likes:     likes,
		Comments:  vals["comments"].(uint64),
		Mirrors:   vals["mirrors"].(uint64),
		Images:    vals["images"].([]string),
		Rating:    models.RatingForLikes(likes),
		KillZone:  vals["in_kill_zone"].(bool),
	}, nil
}

// DecodeComment parses a Comment account.
func DecodeComment(buf []byte) (*models.Comment, error) {
	vals, err := decodeFields(buf, KindComment, CommentLayout)
	if err != nil {
		return nil, err
	}
	if !vals["initialized"].(bool) {
		return nil, ErrUninitialized
	}
	return &models.Comment{
		ID:        vals["id"].(uint64),
		ParentID:  vals["parent_id"].(uint64),
		Author:    vals["author"].(models.Key),
		Content:   vals["content"].(string),
		Likes:     vals["likes"].(uint64),
		Timestamp: vals["ts"].(uint64),
	}, nil
}

// DecodeCommunity parses a Community account.
func DecodeCommunity(buf []byte) (*models.Community, error) {
	vals, err := decodeFields(buf, KindCommunity, CommunityLayout)
	if err != nil {
		return nil, err
	}
	if !vals["initialized"].(bool) {
		return nil, ErrUninitialized
	}
	return &models.Community{
		ID:          vals["id"].(uint64),
		Name:        vals["name"].(string),
		Description: vals["description"].(string),
		Avatar:      vals["avatar"].(string),
		Creator:     vals["creator"].(models.Key),
		MemberCount: vals["member_count"].(uint64),
		Rules:       vals["rules"].([]string),
		Private:     vals["private"].(bool),
	}, nil
}
