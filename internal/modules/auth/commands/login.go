package commands

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gatherly/gatherly/internal/modules/auth"
	"github.com/gatherly/gatherly/internal/modules/auth/domain"
	"github.com/gatherly/gatherly/internal/modules/core"
	"github.com/gatherly/gatherly/internal/store"

	"github.com/eskrenkovic/mediator-go"
	"github.com/google/uuid"
)

type LoginCommand struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c LoginCommand) Validate() error {
	if c.Username == "" {
		return fmt.Errorf("invalid Username - '%s'", c.Username)
	}

	if c.Password == "" {
		return fmt.Errorf("invalid Password")
	}

	return nil
}

type LoginResponse struct {
	Token  string `json:"token"`
	UserID uint64 `json:"user_id"`
}

func HandleLogin(w http.ResponseWriter, r *http.Request) {
	command, err := core.RequestBody[LoginCommand](r)
	if err != nil {
		core.WriteBadRequest(w, r, err.Error())
		return
	}

	response, err := mediator.Send[LoginCommand, LoginResponse](r.Context(), command)
	if err != nil {
		// Credential failures are unauthorized at the transport, not
		// forbidden.
		if abort, ok := core.AsAbort(err); ok && abort.Reason == core.ReasonNotAllowed {
			core.WriteUnauthorized(w, r, nil)
			return
		}

		core.WriteError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    response.Token,
		Path:     "/",
		HttpOnly: true,
	})

	core.WriteOK(w, r, response)
}

type LoginCommandHandler struct {
	store *store.Store
}

func NewLoginCommandHandler(store *store.Store) *LoginCommandHandler {
	return &LoginCommandHandler{store}
}

func (h *LoginCommandHandler) Handle(ctx context.Context, request LoginCommand) (LoginResponse, error) {
	token := uuid.NewString()

	var userID uint64

	err := h.store.Update(ctx, func(tx *store.Tx) error {
		rawID, ok, err := tx.Get(domain.UsernameCollection, []byte(request.Username))
		if err != nil {
			return err
		}

		if !ok {
			return core.NotAllowed("invalid credentials")
		}

		userID, err = store.DecodeID(rawID)
		if err != nil {
			return err
		}

		rawUser, ok, err := tx.Get(domain.Collection, store.EncodeID(userID))
		if err != nil {
			return err
		}

		if !ok {
			return core.NewStorageError("login", fmt.Errorf("user %d referenced by username index not found", userID))
		}

		user, err := domain.Decode(rawUser)
		if err != nil {
			return err
		}

		if err := user.Authenticate(request.Password); err != nil {
			return err
		}

		return tx.Set(domain.SessionCollection, []byte(token), store.EncodeID(userID))
	})
	if err != nil {
		return LoginResponse{}, err
	}

	return LoginResponse{Token: token, UserID: userID}, nil
}
