package domain

import (
	"encoding/json"

	availability "github.com/gatherly/gatherly/internal/modules/availability/domain"
	"github.com/gatherly/gatherly/internal/modules/core"
)

const (
	Collection = "activities"

	// StatusCollection holds one row per (member, activity), keyed by the
	// user id followed by the activity id, so a prefix scan on the user id
	// yields every activity the user was invited to.
	StatusCollection = "activity_status"
)

// Status is the per-(member, activity) participation state. Any state may
// transition to any other; there is no terminal state.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusAccepted Status = "Accepted"
	StatusDenied   Status = "Denied"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDenied:
		return true
	}

	return false
}

// Activity is the header record. Pending and Accepted are denormalized
// counters over the activity's status rows; Denied rows carry no counter
// and are implied by total members minus the two.
type Activity struct {
	GroupID         uint64             `json:"group_id"`
	Window          availability.Block `json:"window"`
	Description     string             `json:"description"`
	MinParticipants uint32             `json:"min_participants"`
	MaxParticipants uint32             `json:"max_participants"`
	Accepted        uint32             `json:"accepted"`
	Pending         uint32             `json:"pending"`
}

// ApplyStatusChange moves one participant between counter buckets. A
// same-status change leaves the counters untouched.
func (a *Activity) ApplyStatusChange(from, to Status) {
	if from == to {
		return
	}

	switch from {
	case StatusPending:
		a.Pending--
	case StatusAccepted:
		a.Accepted--
	}

	switch to {
	case StatusPending:
		a.Pending++
	case StatusAccepted:
		a.Accepted++
	}
}

func Encode(activity Activity) ([]byte, error) {
	raw, err := json.Marshal(activity)
	if err != nil {
		return nil, core.NewSerializationError("activity", err)
	}

	return raw, nil
}

func Decode(raw []byte) (Activity, error) {
	var activity Activity
	if err := json.Unmarshal(raw, &activity); err != nil {
		return Activity{}, core.NewSerializationError("activity", err)
	}

	return activity, nil
}

func EncodeStatus(status Status) ([]byte, error) {
	raw, err := json.Marshal(status)
	if err != nil {
		return nil, core.NewSerializationError("status", err)
	}

	return raw, nil
}

func DecodeStatus(raw []byte) (Status, error) {
	var status Status
	if err := json.Unmarshal(raw, &status); err != nil {
		return "", core.NewSerializationError("status", err)
	}

	if !status.Valid() {
		return "", core.NewSerializationError("status", nil)
	}

	return status, nil
}
