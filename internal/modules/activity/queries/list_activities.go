package queries

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gatherly/gatherly/internal/modules/activity/domain"
	"github.com/gatherly/gatherly/internal/modules/core"
	"github.com/gatherly/gatherly/internal/store"

	"github.com/eskrenkovic/mediator-go"
)

type ListActivitiesQuery struct {
	UserID uint64
}

type ActivityView struct {
	ID       uint64          `json:"id"`
	Activity domain.Activity `json:"activity"`
	Status   domain.Status   `json:"status"`
}

func HandleListActivities(w http.ResponseWriter, r *http.Request) {
	query := ListActivitiesQuery{UserID: core.Session(r.Context()).UserID}

	activities, err := mediator.Send[ListActivitiesQuery, []ActivityView](r.Context(), query)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.WriteOK(w, r, activities)
}

type ListActivitiesQueryHandler struct {
	store *store.Store
}

func NewListActivitiesQueryHandler(store *store.Store) *ListActivitiesQueryHandler {
	return &ListActivitiesQueryHandler{store}
}

// Handle joins the caller's status rows with the activity headers. The
// read runs in a single snapshot and takes no write intent, so there is
// no isolation across separate calls: counters fetched now may reflect a
// different instant than a row fetched by an earlier call. That
// relaxation is deliberate.
func (h *ListActivitiesQueryHandler) Handle(ctx context.Context, request ListActivitiesQuery) ([]ActivityView, error) {
	activities := make([]ActivityView, 0)

	err := h.store.View(func(tx *store.Tx) error {
		return tx.ScanPrefix(domain.StatusCollection, store.EncodeID(request.UserID), func(key, value []byte) error {
			_, activityID, err := store.SplitCompositeKey(key)
			if err != nil {
				return err
			}

			status, err := domain.DecodeStatus(value)
			if err != nil {
				return err
			}

			raw, ok, err := tx.Get(domain.Collection, store.EncodeID(activityID))
			if err != nil {
				return err
			}

			if !ok {
				return core.NewStorageError("list activities", fmt.Errorf("activity %d referenced by status row not found", activityID))
			}

			activity, err := domain.Decode(raw)
			if err != nil {
				return err
			}

			activities = append(activities, ActivityView{ID: activityID, Activity: activity, Status: status})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return activities, nil
}
