package commands

import (
	"context"
	"net/http"

	"github.com/gatherly/gatherly/internal/modules/availability/domain"
	"github.com/gatherly/gatherly/internal/modules/core"
	"github.com/gatherly/gatherly/internal/store"

	"github.com/eskrenkovic/mediator-go"
)

type AddBlockCommand struct {
	UserID uint64 `json:"-"`
	Start  uint64 `json:"start"`
	End    uint64 `json:"end"`
}

func HandleAddBlock(w http.ResponseWriter, r *http.Request) {
	command, err := core.RequestBody[AddBlockCommand](r)
	if err != nil {
		core.WriteBadRequest(w, r, err.Error())
		return
	}

	command.UserID = core.Session(r.Context()).UserID

	_, err = mediator.Send[AddBlockCommand, core.Unit](r.Context(), command)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.WriteOK(w, r, nil)
}

type AddBlockCommandHandler struct {
	store *store.Store
}

func NewAddBlockCommandHandler(store *store.Store) *AddBlockCommandHandler {
	return &AddBlockCommandHandler{store}
}

// Handle inserts the block unless it would overlap a stored one. The
// predecessor block (greatest start below the new start) and the successor
// block (smallest start at or above it) are the only candidates that can
// overlap while the stored set stays pairwise disjoint; checking both also
// keeps the set disjoint regardless of insertion order.
func (h *AddBlockCommandHandler) Handle(ctx context.Context, request AddBlockCommand) (core.Unit, error) {
	block := domain.Block{Start: request.Start, End: request.End}
	if err := block.Validate(); err != nil {
		return core.Unit{}, err
	}

	err := h.store.Update(ctx, func(tx *store.Tx) error {
		owner := store.EncodeID(request.UserID)
		key := store.CompositeKey(request.UserID, request.Start)

		// Two inserts for the same user touch disjoint block keys, and the
		// store only notices a race through a key both sides touched.
		// Reading and bumping the user's version makes concurrent inserts
		// collide; the loser retries and its re-run checks see the
		// winner's block.
		rawVersion, ok, err := tx.Get(domain.VersionCollection, owner)
		if err != nil {
			return err
		}

		var version uint64
		if ok {
			if version, err = store.DecodeID(rawVersion); err != nil {
				return err
			}
		}

		if err := tx.Set(domain.VersionCollection, owner, store.EncodeID(version+1)); err != nil {
			return err
		}

		if _, value, ok, err := tx.Predecessor(domain.Collection, owner, key); err != nil {
			return err
		} else if ok {
			end, err := store.DecodeID(value)
			if err != nil {
				return err
			}

			if end > block.Start {
				return core.Conflict("block overlaps an existing block")
			}
		}

		if successorKey, _, ok, err := tx.Successor(domain.Collection, owner, key); err != nil {
			return err
		} else if ok {
			_, start, err := store.SplitCompositeKey(successorKey)
			if err != nil {
				return err
			}

			if block.End > start {
				return core.Conflict("block overlaps an existing block")
			}
		}

		return tx.Set(domain.Collection, key, store.EncodeID(block.End))
	})

	return core.Unit{}, err
}
