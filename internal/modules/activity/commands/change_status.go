package commands

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gatherly/gatherly/internal/modules/activity/domain"
	"github.com/gatherly/gatherly/internal/modules/core"
	"github.com/gatherly/gatherly/internal/store"

	"github.com/eskrenkovic/mediator-go"
	"github.com/go-chi/chi"
)

type ChangeStatusCommand struct {
	UserID     uint64        `json:"-"`
	ActivityID uint64        `json:"-"`
	Status     domain.Status `json:"status"`
}

func HandleChangeStatus(w http.ResponseWriter, r *http.Request) {
	activityID, err := strconv.ParseUint(chi.URLParam(r, "activityID"), 10, 64)
	if err != nil {
		core.WriteBadRequest(w, r, err.Error())
		return
	}

	command, err := core.RequestBody[ChangeStatusCommand](r)
	if err != nil {
		core.WriteBadRequest(w, r, err.Error())
		return
	}

	command.UserID = core.Session(r.Context()).UserID
	command.ActivityID = activityID

	_, err = mediator.Send[ChangeStatusCommand, core.Unit](r.Context(), command)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.WriteOK(w, r, nil)
}

type ChangeStatusCommandHandler struct {
	store *store.Store
}

func NewChangeStatusCommandHandler(store *store.Store) *ChangeStatusCommandHandler {
	return &ChangeStatusCommandHandler{store}
}

// Handle overwrites the caller's status row and keeps the header counters
// consistent with it in the same transaction. Callers without a row were
// never invited and are rejected. Re-posting the current status succeeds
// and leaves the counters untouched.
func (h *ChangeStatusCommandHandler) Handle(ctx context.Context, request ChangeStatusCommand) (core.Unit, error) {
	if !request.Status.Valid() {
		return core.Unit{}, core.Malformed("unknown participation status")
	}

	err := h.store.Update(ctx, func(tx *store.Tx) error {
		key := store.CompositeKey(request.UserID, request.ActivityID)

		rawOld, ok, err := tx.Get(domain.StatusCollection, key)
		if err != nil {
			return err
		}

		if !ok {
			return core.NotAllowed("caller was not invited to the activity")
		}

		oldStatus, err := domain.DecodeStatus(rawOld)
		if err != nil {
			return err
		}

		rawNew, err := domain.EncodeStatus(request.Status)
		if err != nil {
			return err
		}

		if err := tx.Set(domain.StatusCollection, key, rawNew); err != nil {
			return err
		}

		if oldStatus == request.Status {
			return nil
		}

		rawHeader, ok, err := tx.Get(domain.Collection, store.EncodeID(request.ActivityID))
		if err != nil {
			return err
		}

		if !ok {
			return core.NewStorageError("change status", fmt.Errorf("activity %d referenced by status row not found", request.ActivityID))
		}

		activity, err := domain.Decode(rawHeader)
		if err != nil {
			return err
		}

		activity.ApplyStatusChange(oldStatus, request.Status)

		rawHeader, err = domain.Encode(activity)
		if err != nil {
			return err
		}

		return tx.Set(domain.Collection, store.EncodeID(request.ActivityID), rawHeader)
	})

	return core.Unit{}, err
}
