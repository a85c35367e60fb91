package commands

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gatherly/gatherly/internal/modules/auth/domain"
	"github.com/gatherly/gatherly/internal/modules/core"
	"github.com/gatherly/gatherly/internal/store"

	"github.com/eskrenkovic/mediator-go"
)

type RegisterCommand struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c RegisterCommand) Validate() error {
	if c.Username == "" {
		return fmt.Errorf("invalid Username - '%s'", c.Username)
	}

	if c.Password == "" {
		return fmt.Errorf("invalid Password")
	}

	return nil
}

type RegisterResponse struct {
	UserID uint64 `json:"user_id"`
}

func HandleRegister(w http.ResponseWriter, r *http.Request) {
	command, err := core.RequestBody[RegisterCommand](r)
	if err != nil {
		core.WriteBadRequest(w, r, err.Error())
		return
	}

	response, err := mediator.Send[RegisterCommand, RegisterResponse](r.Context(), command)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type RegisterCommandHandler struct {
	store *store.Store
}

func NewRegisterCommandHandler(store *store.Store) *RegisterCommandHandler {
	return &RegisterCommandHandler{store}
}

func (h *RegisterCommandHandler) Handle(ctx context.Context, request RegisterCommand) (RegisterResponse, error) {
	user, err := domain.Register(request.Username, request.Password)
	if err != nil {
		return RegisterResponse{}, err
	}

	raw, err := domain.Encode(user)
	if err != nil {
		return RegisterResponse{}, err
	}

	userID, err := h.store.NextID(domain.Collection)
	if err != nil {
		return RegisterResponse{}, err
	}

	err = h.store.Update(ctx, func(tx *store.Tx) error {
		_, taken, err := tx.Get(domain.UsernameCollection, []byte(user.Username))
		if err != nil {
			return err
		}

		if taken {
			return core.Conflict("username is already taken")
		}

		if err := tx.Set(domain.UsernameCollection, []byte(user.Username), store.EncodeID(userID)); err != nil {
			return err
		}

		return tx.Set(domain.Collection, store.EncodeID(userID), raw)
	})
	if err != nil {
		return RegisterResponse{}, err
	}

	return RegisterResponse{UserID: userID}, nil
}
