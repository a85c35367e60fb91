package commands

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gatherly/gatherly/internal/modules/availability/domain"
	"github.com/gatherly/gatherly/internal/modules/core"
	"github.com/gatherly/gatherly/internal/store"

	"github.com/eskrenkovic/mediator-go"
	"github.com/go-chi/chi"
)

type RemoveBlockCommand struct {
	UserID uint64 `json:"-"`
	Start  uint64 `json:"start"`
}

func HandleRemoveBlock(w http.ResponseWriter, r *http.Request) {
	start, err := strconv.ParseUint(chi.URLParam(r, "start"), 10, 64)
	if err != nil {
		core.WriteBadRequest(w, r, err.Error())
		return
	}

	command := RemoveBlockCommand{
		UserID: core.Session(r.Context()).UserID,
		Start:  start,
	}

	_, err = mediator.Send[RemoveBlockCommand, core.Unit](r.Context(), command)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.WriteOK(w, r, nil)
}

type RemoveBlockCommandHandler struct {
	store *store.Store
}

func NewRemoveBlockCommandHandler(store *store.Store) *RemoveBlockCommandHandler {
	return &RemoveBlockCommandHandler{store}
}

func (h *RemoveBlockCommandHandler) Handle(ctx context.Context, request RemoveBlockCommand) (core.Unit, error) {
	err := h.store.Update(ctx, func(tx *store.Tx) error {
		key := store.CompositeKey(request.UserID, request.Start)

		_, ok, err := tx.Get(domain.Collection, key)
		if err != nil {
			return err
		}

		if !ok {
			return core.NotFound("no block with the given start")
		}

		return tx.Delete(domain.Collection, key)
	})

	return core.Unit{}, err
}
