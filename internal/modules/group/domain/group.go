package domain

import (
	"encoding/json"

	"github.com/gatherly/gatherly/internal/modules/core"
)

const (
	Collection = "groups"

	// MembershipIndex maps a user id + group id pair to an empty value and answers
	// "which groups does this user belong to" with a single prefix scan.
	MembershipIndex = "group_membership_index"
)

// Group holds the membership map: user id to admin flag. A group is
// created with exactly one founding admin.
type Group struct {
	Name    string          `json:"name"`
	Members map[uint64]bool `json:"members"`
}

func NewGroup(name string, founderID uint64) Group {
	return Group{
		Name:    name,
		Members: map[uint64]bool{founderID: true},
	}
}

func (g Group) IsMember(userID uint64) bool {
	_, ok := g.Members[userID]
	return ok
}

func (g Group) IsAdmin(userID uint64) bool {
	return g.Members[userID]
}

func Encode(group Group) ([]byte, error) {
	raw, err := json.Marshal(group)
	if err != nil {
		return nil, core.NewSerializationError("group", err)
	}

	return raw, nil
}

func Decode(raw []byte) (Group, error) {
	var group Group
	if err := json.Unmarshal(raw, &group); err != nil {
		return Group{}, core.NewSerializationError("group", err)
	}

	return group, nil
}
