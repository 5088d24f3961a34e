package layout

// Kind names an on-ledger record layout. The encoding carries no
// discriminant, so a Kind is only meaningful next to its field table.
type Kind string

const (
	KindProfile   Kind = "profile"
	KindPost      Kind = "post"
	KindComment   Kind = "comment"
	KindCommunity Kind = "community"
)

// Field caps. A declared length above the cap is rejected before slicing,
// which is the main structural signal separating one kind from another in
// the flat account namespace.
const (
	MaxUsername    = 100
	MaxBio         = 1000
	MaxContent     = 2000
	MaxURI         = 300
	MaxName        = 100
	MaxDescription = 1000
	MaxRule        = 200
	MaxRules       = 10
	MaxImages      = 10
)

// FieldType selects the wire primitive a field decodes as.
type FieldType int

const (
	TBool FieldType = iota
	TByte
	TU64
	TI64
	TKey
	TString
	TStringList
)

// Field is one entry in a layout table: name, primitive, and string caps.
type Field struct {
	Name     string
	Type     FieldType
	Max      int // max byte length for TString
	MaxItems int // max item count for TStringList
	ItemMax  int // max byte length per item for TStringList
}

// Layout tables. The field ORDER here is the single source of truth for the
// wire format of each kind; the program's history shows the order drifting
// between deployments, so a correction is a one-line reorder in these tables
// and nowhere else. Validate any reorder against a live account sample.

// ProfileLayout is the Profile account wire order.
var ProfileLayout = []Field{
	{Name: "initialized", Type: TBool},
	{Name: "owner", Type: TKey},
	{Name: "username", Type: TString, Max: MaxUsername},
	{Name: "bio", Type: TString, Max: MaxBio},
	{Name: "profile_image", Type: TString, Max: MaxURI},
	{Name: "cover_image", Type: TString, Max: MaxURI},
	{Name: "created_at", Type: TU64},
	{Name: "followers", Type: TU64},
	{Name: "following", Type: TU64},
	{Name: "credit_rating", Type: TI64},
	{Name: "posts_count", Type: TU64},
	{Name: "last_post_ts", Type: TU64},
	{Name: "daily_post_count", Type: TU64},
	{Name: "verified", Type: TBool},
}

// PostLayout is the Post account wire order.
var PostLayout = []Field{
	{Name: "initialized", Type: TBool},
	{Name: "id", Type: TU64},
	{Name: "author", Type: TKey},
	{Name: "content", Type: TString, Max: MaxContent},
	{Name: "ts", Type: TU64},
	{Name: "likes", Type: TU64},
	{Name: "comments", Type: TU64},
	{Name: "mirrors", Type: TU64},
	{Name: "images", Type: TStringList, MaxItems: MaxImages, ItemMax: MaxURI},
	{Name: "rating", Type: TByte},
	{Name: "in_kill_zone", Type: TBool},
}

// CommentLayout is the Comment account wire order.
var CommentLayout = []Field{
	{Name: "initialized", Type: TBool},
	{Name: "id", Type: TU64},
	{Name: "parent_id", Type: TU64},
	{Name: "author", Type: TKey},
	{Name: "content", Type: TString, Max: MaxContent},
	{Name: "likes", Type: TU64},
	{Name: "ts", Type: TU64},
}

// CommunityLayout is the Community account wire order.
var CommunityLayout = []Field{
	{Name: "initialized", Type: TBool},
	{Name: "id", Type: TU64},
	{Name: "name", Type: TString, Max: MaxName},
	{Name: "description", Type: TString, Max: MaxDescription},
	{Name: "avatar", Type: TString, Max: MaxURI},
	{Name: "creator", Type: TKey},
	{Name: "member_count", Type: TU64},
	{Name: "rules", Type: TStringList, MaxItems: MaxRules, ItemMax: MaxRule},
	{Name: "private", Type: TBool},
}

func layoutFor(kind Kind) []Field {
	switch kind {
	case KindProfile:
		return ProfileLayout
	case KindPost:
		return PostLayout
	case KindComment:
		return CommentLayout
	case KindCommunity:
		return CommunityLayout
	default:
		return nil
	}
}
