package models

import "strings"

// MaxCommunitiesPerCreator caps how many communities one creator key may
// hold. The program enforces it on the write path; readers only observe the
// count, so the gateway checks it before submitting a create.
var MaxCommunitiesPerCreator = 3

// PrivatePrefix marks elite ("subBlocks") communities by name convention.
const PrivatePrefix = "sb/"

// Community is a community account ("SubBlock").
type Community struct {
	ID          uint64   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Avatar      string   `json:"avatar"`
	Creator     Key      `json:"creator"`
	MemberCount uint64   `json:"member_count"`
	Rules       []string `json:"rules,omitempty"`
	Private     bool     `json:"private"`
}

// IsPrivateName reports whether a community name carries the elite prefix.
func IsPrivateName(name string) bool {
	return strings.HasPrefix(name, PrivatePrefix)
}
