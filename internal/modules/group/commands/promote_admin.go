package commands

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gatherly/gatherly/internal/modules/core"
	"github.com/gatherly/gatherly/internal/modules/group/domain"
	"github.com/gatherly/gatherly/internal/store"

	"github.com/eskrenkovic/mediator-go"
	"github.com/go-chi/chi"
)

type PromoteAdminCommand struct {
	ActingUserID uint64 `json:"-"`
	GroupID      uint64 `json:"-"`
	UserID       uint64 `json:"user_id"`
}

func HandlePromoteAdmin(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseUint(chi.URLParam(r, "groupID"), 10, 64)
	if err != nil {
		core.WriteBadRequest(w, r, err.Error())
		return
	}

	command, err := core.RequestBody[PromoteAdminCommand](r)
	if err != nil {
		core.WriteBadRequest(w, r, err.Error())
		return
	}

	command.ActingUserID = core.Session(r.Context()).UserID
	command.GroupID = groupID

	_, err = mediator.Send[PromoteAdminCommand, core.Unit](r.Context(), command)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.WriteOK(w, r, nil)
}

type PromoteAdminCommandHandler struct {
	store *store.Store
}

func NewPromoteAdminCommandHandler(store *store.Store) *PromoteAdminCommandHandler {
	return &PromoteAdminCommandHandler{store}
}

func (h *PromoteAdminCommandHandler) Handle(ctx context.Context, request PromoteAdminCommand) (core.Unit, error) {
	err := h.store.Update(ctx, func(tx *store.Tx) error {
		raw, ok, err := tx.Get(domain.Collection, store.EncodeID(request.GroupID))
		if err != nil {
			return err
		}

		if !ok {
			return core.NotFound("group does not exist")
		}

		group, err := domain.Decode(raw)
		if err != nil {
			return err
		}

		actingIsAdmin, ok := group.Members[request.ActingUserID]
		if !ok {
			return core.NotFound("acting user is not a member of the group")
		}

		if !actingIsAdmin {
			return core.NotAllowed("only group admins may promote members")
		}

		if !group.IsMember(request.UserID) {
			return core.NotFound("user is not a member of the group")
		}

		group.Members[request.UserID] = true

		raw, err = domain.Encode(group)
		if err != nil {
			return err
		}

		return tx.Set(domain.Collection, store.EncodeID(request.GroupID), raw)
	})

	return core.Unit{}, err
}
