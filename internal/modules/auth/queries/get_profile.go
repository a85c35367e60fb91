package queries

import (
	"context"
	"net/http"

	"github.com/gatherly/gatherly/internal/modules/auth/domain"
	"github.com/gatherly/gatherly/internal/modules/core"
	"github.com/gatherly/gatherly/internal/store"

	"github.com/eskrenkovic/mediator-go"
)

type GetProfileQuery struct {
	UserID uint64
}

type ProfileView struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

func HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	query := GetProfileQuery{UserID: core.Session(r.Context()).UserID}

	profile, err := mediator.Send[GetProfileQuery, ProfileView](r.Context(), query)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.WriteOK(w, r, profile)
}

type GetProfileQueryHandler struct {
	store *store.Store
}

func NewGetProfileQueryHandler(store *store.Store) *GetProfileQueryHandler {
	return &GetProfileQueryHandler{store}
}

func (h *GetProfileQueryHandler) Handle(ctx context.Context, request GetProfileQuery) (ProfileView, error) {
	var profile ProfileView

	err := h.store.View(func(tx *store.Tx) error {
		raw, ok, err := tx.Get(domain.Collection, store.EncodeID(request.UserID))
		if err != nil {
			return err
		}

		if !ok {
			return core.NotFound("user does not exist")
		}

		user, err := domain.Decode(raw)
		if err != nil {
			return err
		}

		profile = ProfileView{ID: request.UserID, Username: user.Username}
		return nil
	})
	if err != nil {
		return ProfileView{}, err
	}

	return profile, nil
}
