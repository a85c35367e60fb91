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

type RemoveMemberCommand struct {
	ActingUserID uint64 `json:"-"`
	GroupID      uint64 `json:"-"`
	UserID       uint64 `json:"-"`
}

func HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseUint(chi.URLParam(r, "groupID"), 10, 64)
	if err != nil {
		core.WriteBadRequest(w, r, err.Error())
		return
	}

	userID, err := strconv.ParseUint(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		core.WriteBadRequest(w, r, err.Error())
		return
	}

	command := RemoveMemberCommand{
		ActingUserID: core.Session(r.Context()).UserID,
		GroupID:      groupID,
		UserID:       userID,
	}

	_, err = mediator.Send[RemoveMemberCommand, core.Unit](r.Context(), command)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.WriteOK(w, r, nil)
}

type RemoveMemberCommandHandler struct {
	store *store.Store
}

func NewRemoveMemberCommandHandler(store *store.Store) *RemoveMemberCommandHandler {
	return &RemoveMemberCommandHandler{store}
}

// Handle removes a membership. Admins may remove non-admin members; an
// admin can only be removed by themselves, and any member may leave. A
// sole admin leaving their own group is allowed even though it leaves the
// group without an admin.
func (h *RemoveMemberCommandHandler) Handle(ctx context.Context, request RemoveMemberCommand) (core.Unit, error) {
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

		targetIsAdmin, ok := group.Members[request.UserID]
		if !ok {
			return core.NotFound("user is not a member of the group")
		}

		self := request.ActingUserID == request.UserID

		if !group.IsAdmin(request.ActingUserID) && !self {
			return core.NotAllowed("only group admins may remove other members")
		}

		if targetIsAdmin && !self {
			return core.NotAllowed("admins can only remove themselves")
		}

		delete(group.Members, request.UserID)

		raw, err = domain.Encode(group)
		if err != nil {
			return err
		}

		if err := tx.Set(domain.Collection, store.EncodeID(request.GroupID), raw); err != nil {
			return err
		}

		return membershipIndex.Remove(tx, request.UserID, request.GroupID)
	})

	return core.Unit{}, err
}
