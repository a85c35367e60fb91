package commands

import (
	"context"
	"net/http"

	"github.com/gatherly/gatherly/internal/modules/auth"
	"github.com/gatherly/gatherly/internal/modules/auth/domain"
	"github.com/gatherly/gatherly/internal/modules/core"
	"github.com/gatherly/gatherly/internal/store"

	"github.com/eskrenkovic/mediator-go"
)

type LogoutCommand struct {
	Token string `json:"-"`
}

func HandleLogout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(auth.SessionCookieName)
	if err != nil {
		core.WriteOK(w, r, nil)
		return
	}

	command := LogoutCommand{Token: cookie.Value}

	if _, err := mediator.Send[LogoutCommand, core.Unit](r.Context(), command); err != nil {
		core.WriteError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	core.WriteOK(w, r, nil)
}

type LogoutCommandHandler struct {
	store *store.Store
}

func NewLogoutCommandHandler(store *store.Store) *LogoutCommandHandler {
	return &LogoutCommandHandler{store}
}

func (h *LogoutCommandHandler) Handle(ctx context.Context, request LogoutCommand) (core.Unit, error) {
	err := h.store.Update(ctx, func(tx *store.Tx) error {
		return tx.Delete(domain.SessionCollection, []byte(request.Token))
	})

	return core.Unit{}, err
}
