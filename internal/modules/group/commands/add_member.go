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

type AddMemberCommand struct {
	ActingUserID uint64 `json:"-"`
	GroupID      uint64 `json:"-"`
	UserID       uint64 `json:"user_id"`
}

func HandleAddMember(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseUint(chi.URLParam(r, "groupID"), 10, 64)
	if err != nil {
		core.WriteBadRequest(w, r, err.Error())
		return
	}

	command, err := core.RequestBody[AddMemberCommand](r)
	if err != nil {
		core.WriteBadRequest(w, r, err.Error())
		return
	}

	command.ActingUserID = core.Session(r.Context()).UserID
	command.GroupID = groupID

	_, err = mediator.Send[AddMemberCommand, core.Unit](r.Context(), command)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.WriteOK(w, r, nil)
}

type AddMemberCommandHandler struct {
	store *store.Store
}

func NewAddMemberCommandHandler(store *store.Store) *AddMemberCommandHandler {
	return &AddMemberCommandHandler{store}
}

func (h *AddMemberCommandHandler) Handle(ctx context.Context, request AddMemberCommand) (core.Unit, error) {
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

		if !group.IsAdmin(request.ActingUserID) {
			return core.NotAllowed("only group admins may add members")
		}

		group.Members[request.UserID] = false

		raw, err = domain.Encode(group)
		if err != nil {
			return err
		}

		if err := tx.Set(domain.Collection, store.EncodeID(request.GroupID), raw); err != nil {
			return err
		}

		return membershipIndex.Add(tx, request.UserID, request.GroupID)
	})

	return core.Unit{}, err
}
