package models

// Comment is a comment account linked to its parent post by id.
type Comment struct {
	ID        uint64 `json:"id"`
	ParentID  uint64 `json:"parent_id"`
	Author    Key    `json:"author"`
	Content   string `json:"content"`
	Likes     uint64 `json:"likes"`
	Timestamp uint64 `json:"ts"`
}
