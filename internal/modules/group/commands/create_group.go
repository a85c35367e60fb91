package commands

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

type CreateGroupCommand struct {
	FounderID uint64 `json:"-"`
	Name      string `json:"name"`
}

func (c CreateGroupCommand) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("invalid Name - '%s'", c.Name)
	}

	return nil
}

type CreateGroupResponse struct {
	GroupID uint64 `json:"group_id"`
}

func HandleCreateGroup(w http.ResponseWriter, r *http.Request) {
	command, err := core.RequestBody[CreateGroupCommand](r)
	if err != nil {
		core.WriteBadRequest(w, r, err.Error())
		return
	}

	command.FounderID = core.Session(r.Context()).UserID

	response, err := mediator.Send[CreateGroupCommand, CreateGroupResponse](r.Context(), command)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type CreateGroupCommandHandler struct {
	store *store.Store
}

func NewCreateGroupCommandHandler(store *store.Store) *CreateGroupCommandHandler {
	return &CreateGroupCommandHandler{store}
}

func (h *CreateGroupCommandHandler) Handle(ctx context.Context, request CreateGroupCommand) (CreateGroupResponse, error) {
	if request.Name == "" {
		return CreateGroupResponse{}, core.Malformed("group name must not be empty")
	}

	groupID, err := h.store.NextID(domain.Collection)
	if err != nil {
		return CreateGroupResponse{}, err
	}

	raw, err := domain.Encode(domain.NewGroup(request.Name, request.FounderID))
	if err != nil {
		return CreateGroupResponse{}, err
	}

	err = h.store.Update(ctx, func(tx *store.Tx) error {
		if err := tx.Set(domain.Collection, store.EncodeID(groupID), raw); err != nil {
			return err
		}

		return membershipIndex.Add(tx, request.FounderID, groupID)
	})
	if err != nil {
		return CreateGroupResponse{}, err
	}

	return CreateGroupResponse{GroupID: groupID}, nil
}
