package commands

import (
	"context"
	"net/http"

	"github.com/gatherly/gatherly/internal/modules/activity/domain"
	availability "github.com/gatherly/gatherly/internal/modules/availability/domain"
	"github.com/gatherly/gatherly/internal/modules/core"
	groupdomain "github.com/gatherly/gatherly/internal/modules/group/domain"
	"github.com/gatherly/gatherly/internal/store"

	"github.com/eskrenkovic/mediator-go"
)

type CreateActivityCommand struct {
	CreatorID       uint64             `json:"-"`
	GroupID         uint64             `json:"group_id"`
	Window          availability.Block `json:"window"`
	Description     string             `json:"description"`
	MinParticipants uint32             `json:"min_participants"`
	MaxParticipants uint32             `json:"max_participants"`
}

type CreateActivityResponse struct {
	ActivityID uint64 `json:"activity_id"`
}

func HandleCreateActivity(w http.ResponseWriter, r *http.Request) {
	command, err := core.RequestBody[CreateActivityCommand](r)
	if err != nil {
		core.WriteBadRequest(w, r, err.Error())
		return
	}

	command.CreatorID = core.Session(r.Context()).UserID

	response, err := mediator.Send[CreateActivityCommand, CreateActivityResponse](r.Context(), command)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type CreateActivityCommandHandler struct {
	store *store.Store
}

func NewCreateActivityCommandHandler(store *store.Store) *CreateActivityCommandHandler {
	return &CreateActivityCommandHandler{store}
}

// Handle creates the activity header and, atomically with it, one status
// row for every member the group has at this instant. A member whose
// stored blocks intersect the window starts out Denied, everyone else
// Pending; the creator is an ordinary invitee. Later membership changes
// never add or remove rows.
func (h *CreateActivityCommandHandler) Handle(ctx context.Context, request CreateActivityCommand) (CreateActivityResponse, error) {
	if err := request.Window.Validate(); err != nil {
		return CreateActivityResponse{}, err
	}

	var activityID uint64

	err := h.store.Update(ctx, func(tx *store.Tx) error {
		raw, ok, err := tx.Get(groupdomain.Collection, store.EncodeID(request.GroupID))
		if err != nil {
			return err
		}

		if !ok {
			return core.NotFound("group does not exist")
		}

		group, err := groupdomain.Decode(raw)
		if err != nil {
			return err
		}

		if !group.IsMember(request.CreatorID) {
			return core.NotFound("creator is not a member of the group")
		}

		activityID, err = h.store.NextID(domain.Collection)
		if err != nil {
			return err
		}

		var pending uint32
		for memberID := range group.Members {
			conflicts, err := blocksIntersect(tx, memberID, request.Window)
			if err != nil {
				return err
			}

			status := domain.StatusPending
			if conflicts {
				status = domain.StatusDenied
			} else {
				pending++
			}

			rawStatus, err := domain.EncodeStatus(status)
			if err != nil {
				return err
			}

			if err := tx.Set(domain.StatusCollection, store.CompositeKey(memberID, activityID), rawStatus); err != nil {
				return err
			}
		}

		header := domain.Activity{
			GroupID:         request.GroupID,
			Window:          request.Window,
			Description:     request.Description,
			MinParticipants: request.MinParticipants,
			MaxParticipants: request.MaxParticipants,
			Accepted:        0,
			Pending:         pending,
		}

		rawHeader, err := domain.Encode(header)
		if err != nil {
			return err
		}

		return tx.Set(domain.Collection, store.EncodeID(activityID), rawHeader)
	})
	if err != nil {
		return CreateActivityResponse{}, err
	}

	return CreateActivityResponse{ActivityID: activityID}, nil
}

func blocksIntersect(tx *store.Tx, userID uint64, window availability.Block) (bool, error) {
	intersects := false

	err := tx.ScanPrefix(availability.Collection, store.EncodeID(userID), func(key, value []byte) error {
		_, start, err := store.SplitCompositeKey(key)
		if err != nil {
			return err
		}

		end, err := store.DecodeID(value)
		if err != nil {
			return err
		}

		if window.Intersects(availability.Block{Start: start, End: end}) {
			intersects = true
		}

		return nil
	})

	return intersects, err
}
