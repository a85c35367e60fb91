package queries

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gatherly/gatherly/internal/modules/core"
	"github.com/gatherly/gatherly/internal/modules/group/domain"
	"github.com/gatherly/gatherly/internal/store"

	"github.com/eskrenkovic/mediator-go"
)

var membershipIndex = store.NewIndex(domain.MembershipIndex)

type ListGroupsQuery struct {
	UserID uint64
}

type GroupView struct {
	ID      uint64          `json:"id"`
	Name    string          `json:"name"`
	Members map[uint64]bool `json:"members"`
}

func HandleListGroups(w http.ResponseWriter, r *http.Request) {
	query := ListGroupsQuery{UserID: core.Session(r.Context()).UserID}

	groups, err := mediator.Send[ListGroupsQuery, []GroupView](r.Context(), query)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.WriteOK(w, r, groups)
}

type ListGroupsQueryHandler struct {
	store *store.Store
}

func NewListGroupsQueryHandler(store *store.Store) *ListGroupsQueryHandler {
	return &ListGroupsQueryHandler{store}
}

// Handle joins the caller's membership-index entries with the group
// headers, ascending by group id. Single snapshot, no write intent.
func (h *ListGroupsQueryHandler) Handle(ctx context.Context, request ListGroupsQuery) ([]GroupView, error) {
	groups := make([]GroupView, 0)

	err := h.store.View(func(tx *store.Tx) error {
		return membershipIndex.Scan(tx, request.UserID, func(groupID uint64) error {
			raw, ok, err := tx.Get(domain.Collection, store.EncodeID(groupID))
			if err != nil {
				return err
			}

			if !ok {
				return core.NewStorageError("list groups", fmt.Errorf("group %d referenced by membership index not found", groupID))
			}

			group, err := domain.Decode(raw)
			if err != nil {
				return err
			}

			groups = append(groups, GroupView{ID: groupID, Name: group.Name, Members: group.Members})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return groups, nil
}
