package queries

import (
	"context"
	"net/http"

	"github.com/gatherly/gatherly/internal/modules/availability/domain"
	"github.com/gatherly/gatherly/internal/modules/core"
	"github.com/gatherly/gatherly/internal/store"

	"github.com/eskrenkovic/mediator-go"
)

type ListBlocksQuery struct {
	UserID uint64
}

func HandleListBlocks(w http.ResponseWriter, r *http.Request) {
	query := ListBlocksQuery{UserID: core.Session(r.Context()).UserID}

	blocks, err := mediator.Send[ListBlocksQuery, []domain.Block](r.Context(), query)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.WriteOK(w, r, blocks)
}

type ListBlocksQueryHandler struct {
	store *store.Store
}

func NewListBlocksQueryHandler(store *store.Store) *ListBlocksQueryHandler {
	return &ListBlocksQueryHandler{store}
}

// Handle lists the caller's blocks ascending by start. The read runs in a
// single snapshot and takes no write intent.
func (h *ListBlocksQueryHandler) Handle(ctx context.Context, request ListBlocksQuery) ([]domain.Block, error) {
	blocks := make([]domain.Block, 0)

	err := h.store.View(func(tx *store.Tx) error {
		return tx.ScanPrefix(domain.Collection, store.EncodeID(request.UserID), func(key, value []byte) error {
			_, start, err := store.SplitCompositeKey(key)
			if err != nil {
				return err
			}

			end, err := store.DecodeID(value)
			if err != nil {
				return err
			}

			blocks = append(blocks, domain.Block{Start: start, End: end})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return blocks, nil
}
