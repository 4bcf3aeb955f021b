package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"gymcrew-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInviteService_CreateInvite(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	gid := e.group(t, "UTC", "admin", "bob")

	_, err := e.invites.CreateInvite(ctx, gid, "bob", nil, 5)
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	hours := 24
	inv, err := e.invites.CreateInvite(ctx, gid, "admin", &hours, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultInviteMaxUses, inv.MaxUses)
	assert.Equal(t, 0, inv.Uses)
	assert.True(t, inv.Active)
	require.NotNil(t, inv.ExpiresAt)
	assert.Equal(t, fixedNow.Add(24*time.Hour), *inv.ExpiresAt)
	assert.Len(t, inv.Token, 43, "32 bytes of base64url without padding")

	other, err := e.invites.CreateInvite(ctx, gid, "admin", nil, 3)
	require.NoError(t, err)
	assert.NotEqual(t, inv.Token, other.Token)
	assert.Nil(t, other.ExpiresAt)
}

func TestInviteService_ConcurrentSingleUse(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	gid := e.group(t, "UTC", "admin")
	inv, err := e.invites.CreateInvite(ctx, gid, "admin", nil, 1)
	require.NoError(t, err)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, user := range []string{"u1", "u2"} {
		wg.Add(1)
		go func(i int, user string) {
			defer wg.Done()
			_, errs[i] = e.invites.RedeemInvite(ctx, inv.Token, user)
		}(i, user)
	}
	wg.Wait()

	var ok, exhausted int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case domain.IsKind(err, domain.KindMaxUsesReached):
			exhausted++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, exhausted)

	invites, err := e.invites.ListInvites(ctx, gid, "admin")
	require.NoError(t, err)
	require.Len(t, invites, 1)
	assert.Equal(t, 1, invites[0].Uses)
}

func TestInviteService_Redeem(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	gid := e.group(t, "UTC", "admin")
	hours := 1
	inv, err := e.invites.CreateInvite(ctx, gid, "admin", &hours, 2)
	require.NoError(t, err)

	_, err = e.invites.RedeemInvite(ctx, "bogus", "u1")
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredToken)

	_, err = e.invites.RedeemInvite(ctx, inv.Token, "admin")
	assert.ErrorIs(t, err, domain.ErrAlreadyMember)

	joined, err := e.invites.RedeemInvite(ctx, inv.Token, "u1")
	require.NoError(t, err)
	assert.Equal(t, gid, joined)
	m, err := e.store.MembershipRepository.Get(ctx, gid, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.MemberRoleMember, m.Role)

	e.now = e.now.Add(time.Hour)
	_, err = e.invites.RedeemInvite(ctx, inv.Token, "u2")
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredToken, "expiry is exclusive")
}

func TestInviteService_Deactivate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	gid := e.group(t, "UTC", "admin")
	inv, err := e.invites.CreateInvite(ctx, gid, "admin", nil, 5)
	require.NoError(t, err)

	require.NoError(t, e.invites.DeactivateInvite(ctx, gid, "admin", inv.Token))
	_, err = e.invites.RedeemInvite(ctx, inv.Token, "u1")
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredToken)
}
