package domain

import "github.com/gatherly/gatherly/internal/modules/core"

const (
	// Collection stores one entry per block, keyed by the user id followed
	// by the start, with the end as value, so a prefix scan on the user id
	// yields blocks in start order.
	Collection = "blocks"

	// VersionCollection holds one counter per user, bumped on every block
	// insert. Concurrent inserts for the same user write disjoint block
	// keys, so this shared entry is what forces them to conflict.
	VersionCollection = "blocks_version"
)

// Block is a half-open [Start, End) interval during which its owner is
// unavailable. The blocks stored for a user are kept pairwise disjoint.
type Block struct {
	Start uint64 `json:"start"`
	End   uint64 `json:"end"`
}

func (b Block) Validate() error {
	if b.Start >= b.End {
		return core.Malformed("block end must be after its start")
	}

	return nil
}

// Intersects reports whether two half-open intervals overlap.
func (b Block) Intersects(other Block) bool {
	return b.Start < other.End && b.End > other.Start
}
