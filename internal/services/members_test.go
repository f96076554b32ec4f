package services

import (
	"context"
	"testing"

	"github.com/habithome/habithome-api/internal/apperr"
	"github.com/habithome/habithome-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMembers(t *testing.T) {
	e := newEnv(t)
	alice, bob, eve := e.user(t, "alice"), e.user(t, "bob"), e.user(t, "eve")
	f := e.family(t, alice, bob)
	ctx := context.Background()

	members, err := e.families.Members(ctx, bob.ID, f.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, alice.ID, members[0].UserID)
	require.NotNil(t, members[0].User)
	assert.Equal(t, "alice", members[0].User.Name)

	_, err = e.families.Members(ctx, eve.ID, f.ID)
	requireKind(t, err, apperr.KindForbidden)
}

func TestRemoveMember_UnassignsOpenTasks(t *testing.T) {
	e := newEnv(t)
	alice, bob := e.user(t, "alice"), e.user(t, "bob")
	f := e.family(t, alice, bob)
	ctx := context.Background()

	open := e.task(t, alice, f.ID, "Vacuum", 3, bob)
	done := e.task(t, alice, f.ID, "Dishes", 5, bob)
	_, err := e.tasks.Complete(ctx, bob.ID, done.ID)
	require.NoError(t, err)

	err = e.families.RemoveMember(ctx, bob.ID, f.ID, alice.ID)
	requireKind(t, err, apperr.KindForbidden)

	err = e.families.RemoveMember(ctx, alice.ID, f.ID, alice.ID)
	requireKind(t, err, apperr.KindBadRequest)

	require.NoError(t, e.families.RemoveMember(ctx, alice.ID, f.ID, bob.ID))

	member, err := e.families.IsMember(ctx, bob.ID, f.ID)
	require.NoError(t, err)
	assert.False(t, member)

	var unassigned models.Task
	require.NoError(t, e.db.First(&unassigned, "id = ?", open.ID).Error)
	assert.Nil(t, unassigned.AssignedToID)

	var completed models.Task
	require.NoError(t, e.db.First(&completed, "id = ?", done.ID).Error)
	require.NotNil(t, completed.AssignedToID, "completed tasks keep their assignee")
	assert.Equal(t, bob.ID, *completed.AssignedToID)

	err = e.families.RemoveMember(ctx, alice.ID, f.ID, bob.ID)
	requireKind(t, err, apperr.KindNotFound)

	_, err = e.families.JoinFamily(ctx, bob.ID, f.InviteCode)
	assert.NoError(t, err, "a removed member can rejoin")
}

func TestLeaveFamily(t *testing.T) {
	e := newEnv(t)
	alice, bob, eve := e.user(t, "alice"), e.user(t, "bob"), e.user(t, "eve")
	f := e.family(t, alice, bob)
	ctx := context.Background()

	err := e.families.LeaveFamily(ctx, alice.ID, f.ID)
	requireKind(t, err, apperr.KindBadRequest)

	err = e.families.LeaveFamily(ctx, eve.ID, f.ID)
	requireKind(t, err, apperr.KindForbidden)

	require.NoError(t, e.families.LeaveFamily(ctx, bob.ID, f.ID))
	ids, err := e.families.MemberIDs(ctx, f.ID)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, alice.ID, ids[0])
}

func TestRegenerateInviteCode(t *testing.T) {
	e := newEnv(t)
	alice, bob, carol := e.user(t, "alice"), e.user(t, "bob"), e.user(t, "carol")
	f := e.family(t, alice, bob)
	ctx := context.Background()

	_, err := e.families.RegenerateInviteCode(ctx, bob.ID, f.ID)
	requireKind(t, err, apperr.KindForbidden)

	updated, err := e.families.RegenerateInviteCode(ctx, alice.ID, f.ID)
	require.NoError(t, err)
	assert.NotEqual(t, f.InviteCode, updated.InviteCode)
	assert.Regexp(t, inviteCodePattern, updated.InviteCode)

	_, err = e.families.JoinFamily(ctx, carol.ID, f.InviteCode)
	requireKind(t, err, apperr.KindNotFound)
	_, err = e.families.JoinFamily(ctx, carol.ID, updated.InviteCode)
	assert.NoError(t, err)
}
