package commands

import (
	"context"
	"testing"

	"github.com/gatherly/gatherly/internal/modules/activity/domain"
	activityqueries "github.com/gatherly/gatherly/internal/modules/activity/queries"
	availabilitycommands "github.com/gatherly/gatherly/internal/modules/availability/commands"
	availability "github.com/gatherly/gatherly/internal/modules/availability/domain"
	"github.com/gatherly/gatherly/internal/modules/core"
	groupcommands "github.com/gatherly/gatherly/internal/modules/group/commands"
	"github.com/gatherly/gatherly/internal/store"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	userA uint64 = 1
	userB uint64 = 2
	userC uint64 = 3
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.OpenInMemory(zap.NewNop())
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})

	return s
}

// tripGroup sets up the recurring fixture: A founds a group and adds B,
// A is unavailable during [10,12), B during [20,22).
func tripGroup(t *testing.T, s *store.Store) uint64 {
	t.Helper()

	response, err := groupcommands.NewCreateGroupCommandHandler(s).Handle(context.Background(), groupcommands.CreateGroupCommand{
		FounderID: userA,
		Name:      "Trip",
	})
	require.NoError(t, err)

	_, err = groupcommands.NewAddMemberCommandHandler(s).Handle(context.Background(), groupcommands.AddMemberCommand{
		ActingUserID: userA,
		GroupID:      response.GroupID,
		UserID:       userB,
	})
	require.NoError(t, err)

	addBlock := availabilitycommands.NewAddBlockCommandHandler(s)

	_, err = addBlock.Handle(context.Background(), availabilitycommands.AddBlockCommand{UserID: userA, Start: 10, End: 12})
	require.NoError(t, err)

	_, err = addBlock.Handle(context.Background(), availabilitycommands.AddBlockCommand{UserID: userB, Start: 20, End: 22})
	require.NoError(t, err)

	return response.GroupID
}

func createActivity(t *testing.T, s *store.Store, creatorID, groupID uint64, window availability.Block) uint64 {
	t.Helper()

	response, err := NewCreateActivityCommandHandler(s).Handle(context.Background(), CreateActivityCommand{
		CreatorID:       creatorID,
		GroupID:         groupID,
		Window:          window,
		Description:     "day hike",
		MinParticipants: 2,
		MaxParticipants: 8,
	})
	require.NoError(t, err)

	return response.ActivityID
}

func getActivity(t *testing.T, s *store.Store, activityID uint64) domain.Activity {
	t.Helper()

	var activity domain.Activity
	err := s.View(func(tx *store.Tx) error {
		raw, ok, err := tx.Get(domain.Collection, store.EncodeID(activityID))
		require.NoError(t, err)
		require.True(t, ok)

		activity, err = domain.Decode(raw)
		return err
	})
	require.NoError(t, err)

	return activity
}

func getStatus(t *testing.T, s *store.Store, userID, activityID uint64) (domain.Status, bool) {
	t.Helper()

	var (
		status domain.Status
		found  bool
	)
	err := s.View(func(tx *store.Tx) error {
		raw, ok, err := tx.Get(domain.StatusCollection, store.CompositeKey(userID, activityID))
		require.NoError(t, err)

		if !ok {
			return nil
		}

		found = true
		status, err = domain.DecodeStatus(raw)
		return err
	})
	require.NoError(t, err)

	return status, found
}

func changeStatus(t *testing.T, s *store.Store, userID, activityID uint64, status domain.Status) error {
	t.Helper()

	_, err := NewChangeStatusCommandHandler(s).Handle(context.Background(), ChangeStatusCommand{
		UserID:     userID,
		ActivityID: activityID,
		Status:     status,
	})

	return err
}

func Test_CreateActivity_Denies_Members_With_Conflicting_Blocks(t *testing.T) {
	// Arrange
	s := newTestStore(t)
	groupID := tripGroup(t, s)

	// Act: [11,15) intersects A's block [10,12) but not B's [20,22)
	activityID := createActivity(t, s, userA, groupID, availability.Block{Start: 11, End: 15})

	// Assert
	statusA, ok := getStatus(t, s, userA, activityID)
	require.True(t, ok)
	require.Equal(t, domain.StatusDenied, statusA)

	statusB, ok := getStatus(t, s, userB, activityID)
	require.True(t, ok)
	require.Equal(t, domain.StatusPending, statusB)

	activity := getActivity(t, s, activityID)
	require.Equal(t, uint32(1), activity.Pending)
	require.Equal(t, uint32(0), activity.Accepted)
}

func Test_CreateActivity_Creates_One_Status_Row_Per_Member(t *testing.T) {
	// Arrange
	s := newTestStore(t)
	groupID := tripGroup(t, s)

	_, err := groupcommands.NewAddMemberCommandHandler(s).Handle(context.Background(), groupcommands.AddMemberCommand{
		ActingUserID: userA,
		GroupID:      groupID,
		UserID:       userC,
	})
	require.NoError(t, err)

	// Act
	activityID := createActivity(t, s, userA, groupID, availability.Block{Start: 30, End: 35})

	// Assert
	var counted uint32
	for _, userID := range []uint64{userA, userB, userC} {
		status, ok := getStatus(t, s, userID, activityID)
		require.True(t, ok)

		if status != domain.StatusDenied {
			counted++
		}
	}

	activity := getActivity(t, s, activityID)
	require.Equal(t, counted, activity.Pending+activity.Accepted)
	require.Equal(t, uint32(0), activity.Accepted)
}

func Test_CreateActivity_Does_Not_Auto_Accept_The_Creator(t *testing.T) {
	// Arrange
	s := newTestStore(t)
	groupID := tripGroup(t, s)

	// Act: window conflicts with nobody
	activityID := createActivity(t, s, userA, groupID, availability.Block{Start: 30, End: 35})

	// Assert
	status, ok := getStatus(t, s, userA, activityID)
	require.True(t, ok)
	require.Equal(t, domain.StatusPending, status)
}

func Test_CreateActivity_For_Absent_Group_Fails_NotFound(t *testing.T) {
	// Arrange
	s := newTestStore(t)

	// Act
	_, err := NewCreateActivityCommandHandler(s).Handle(context.Background(), CreateActivityCommand{
		CreatorID: userA,
		GroupID:   42,
		Window:    availability.Block{Start: 11, End: 15},
	})

	// Assert
	abort, ok := core.AsAbort(err)
	require.True(t, ok)
	require.Equal(t, core.ReasonNotFound, abort.Reason)
}

func Test_CreateActivity_By_Non_Member_Fails_NotFound(t *testing.T) {
	// Arrange
	s := newTestStore(t)
	groupID := tripGroup(t, s)

	// Act
	_, err := NewCreateActivityCommandHandler(s).Handle(context.Background(), CreateActivityCommand{
		CreatorID: userC,
		GroupID:   groupID,
		Window:    availability.Block{Start: 11, End: 15},
	})

	// Assert
	abort, ok := core.AsAbort(err)
	require.True(t, ok)
	require.Equal(t, core.ReasonNotFound, abort.Reason)
}

func Test_CreateActivity_With_Inverted_Window_Fails_Malformed(t *testing.T) {
	// Arrange
	s := newTestStore(t)
	groupID := tripGroup(t, s)

	// Act
	_, err := NewCreateActivityCommandHandler(s).Handle(context.Background(), CreateActivityCommand{
		CreatorID: userA,
		GroupID:   groupID,
		Window:    availability.Block{Start: 15, End: 11},
	})

	// Assert
	abort, ok := core.AsAbort(err)
	require.True(t, ok)
	require.Equal(t, core.ReasonMalformed, abort.Reason)
}

func Test_ChangeStatus_Accept_Moves_The_Counter(t *testing.T) {
	// Arrange
	s := newTestStore(t)
	groupID := tripGroup(t, s)
	activityID := createActivity(t, s, userA, groupID, availability.Block{Start: 11, End: 15})

	// Act
	require.NoError(t, changeStatus(t, s, userB, activityID, domain.StatusAccepted))

	// Assert
	activity := getActivity(t, s, activityID)
	require.Equal(t, uint32(0), activity.Pending)
	require.Equal(t, uint32(1), activity.Accepted)

	status, ok := getStatus(t, s, userB, activityID)
	require.True(t, ok)
	require.Equal(t, domain.StatusAccepted, status)
}

func Test_ChangeStatus_Is_Idempotent_On_Counters(t *testing.T) {
	// Arrange
	s := newTestStore(t)
	groupID := tripGroup(t, s)
	activityID := createActivity(t, s, userA, groupID, availability.Block{Start: 11, End: 15})

	// Act
	require.NoError(t, changeStatus(t, s, userB, activityID, domain.StatusAccepted))
	require.NoError(t, changeStatus(t, s, userB, activityID, domain.StatusAccepted))

	// Assert
	activity := getActivity(t, s, activityID)
	require.Equal(t, uint32(0), activity.Pending)
	require.Equal(t, uint32(1), activity.Accepted)
}

func Test_ChangeStatus_Round_Trip_Restores_Counters(t *testing.T) {
	// Arrange
	s := newTestStore(t)
	groupID := tripGroup(t, s)
	activityID := createActivity(t, s, userA, groupID, availability.Block{Start: 11, End: 15})

	before := getActivity(t, s, activityID)

	// Act
	require.NoError(t, changeStatus(t, s, userB, activityID, domain.StatusAccepted))
	require.NoError(t, changeStatus(t, s, userB, activityID, domain.StatusPending))

	// Assert
	after := getActivity(t, s, activityID)
	require.Equal(t, before.Pending, after.Pending)
	require.Equal(t, before.Accepted, after.Accepted)
}

func Test_ChangeStatus_From_Denied_Does_Not_Underflow_Counters(t *testing.T) {
	// Arrange
	s := newTestStore(t)
	groupID := tripGroup(t, s)
	activityID := createActivity(t, s, userA, groupID, availability.Block{Start: 11, End: 15})

	// Act: A was Denied at creation; a Denied row carries no counter
	require.NoError(t, changeStatus(t, s, userA, activityID, domain.StatusAccepted))

	// Assert
	activity := getActivity(t, s, activityID)
	require.Equal(t, uint32(1), activity.Pending)
	require.Equal(t, uint32(1), activity.Accepted)

	require.NoError(t, changeStatus(t, s, userA, activityID, domain.StatusDenied))

	activity = getActivity(t, s, activityID)
	require.Equal(t, uint32(1), activity.Pending)
	require.Equal(t, uint32(0), activity.Accepted)
}

func Test_ChangeStatus_Without_Invitation_Fails_NotAllowed(t *testing.T) {
	// Arrange
	s := newTestStore(t)
	groupID := tripGroup(t, s)
	activityID := createActivity(t, s, userA, groupID, availability.Block{Start: 11, End: 15})

	// Act
	err := changeStatus(t, s, userC, activityID, domain.StatusAccepted)

	// Assert
	abort, ok := core.AsAbort(err)
	require.True(t, ok)
	require.Equal(t, core.ReasonNotAllowed, abort.Reason)
}

func Test_ChangeStatus_With_Unknown_Status_Fails_Malformed(t *testing.T) {
	// Arrange
	s := newTestStore(t)
	groupID := tripGroup(t, s)
	activityID := createActivity(t, s, userA, groupID, availability.Block{Start: 11, End: 15})

	// Act
	err := changeStatus(t, s, userB, activityID, domain.Status("Maybe"))

	// Assert
	abort, ok := core.AsAbort(err)
	require.True(t, ok)
	require.Equal(t, core.ReasonMalformed, abort.Reason)
}

func Test_Membership_Changes_After_Creation_Do_Not_Touch_Status_Rows(t *testing.T) {
	// Arrange
	s := newTestStore(t)
	groupID := tripGroup(t, s)
	activityID := createActivity(t, s, userA, groupID, availability.Block{Start: 11, End: 15})

	// Act: C joins and B leaves after the activity exists
	_, err := groupcommands.NewAddMemberCommandHandler(s).Handle(context.Background(), groupcommands.AddMemberCommand{
		ActingUserID: userA,
		GroupID:      groupID,
		UserID:       userC,
	})
	require.NoError(t, err)

	_, err = groupcommands.NewRemoveMemberCommandHandler(s).Handle(context.Background(), groupcommands.RemoveMemberCommand{
		ActingUserID: userB,
		GroupID:      groupID,
		UserID:       userB,
	})
	require.NoError(t, err)

	// Assert
	_, found := getStatus(t, s, userC, activityID)
	require.False(t, found)

	status, found := getStatus(t, s, userB, activityID)
	require.True(t, found)
	require.Equal(t, domain.StatusPending, status)

	activity := getActivity(t, s, activityID)
	require.Equal(t, uint32(1), activity.Pending)
}

func Test_ListActivities_Joins_Status_Rows_With_Headers(t *testing.T) {
	// Arrange
	s := newTestStore(t)
	groupID := tripGroup(t, s)
	activityID := createActivity(t, s, userA, groupID, availability.Block{Start: 11, End: 15})

	listActivities := activityqueries.NewListActivitiesQueryHandler(s)

	// Act
	views, err := listActivities.Handle(context.Background(), activityqueries.ListActivitiesQuery{UserID: userB})
	require.NoError(t, err)

	// Assert
	require.Len(t, views, 1)
	require.Equal(t, activityID, views[0].ID)
	require.Equal(t, domain.StatusPending, views[0].Status)
	require.Equal(t, uint32(1), views[0].Activity.Pending)

	// A separate listing after a concurrent status change observes the
	// new counters; listings are snapshots with no cross-call isolation.
	require.NoError(t, changeStatus(t, s, userB, activityID, domain.StatusAccepted))

	views, err = listActivities.Handle(context.Background(), activityqueries.ListActivitiesQuery{UserID: userB})
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, domain.StatusAccepted, views[0].Status)
	require.Equal(t, uint32(0), views[0].Activity.Pending)
	require.Equal(t, uint32(1), views[0].Activity.Accepted)

	// a user with no invitations sees an empty list
	views, err = listActivities.Handle(context.Background(), activityqueries.ListActivitiesQuery{UserID: userC})
	require.NoError(t, err)
	require.Empty(t, views)
}
