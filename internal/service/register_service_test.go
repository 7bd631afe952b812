package service_test

import (
	"context"
	"testing"

	"github.com/BrightonDube/BizPilot2-sub004/internal/dto"
	"github.com/BrightonDube/BizPilot2-sub004/internal/model"
	"github.com/BrightonDube/BizPilot2-sub004/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLifecycle(t *testing.T) {
	repo := newFakeRegisterRepo()
	svc := service.NewRegisterService(repo)
	businessID := uuid.New()
	ctx := context.Background()

	loc := uuid.NewString()
	created, err := svc.Create(ctx, businessID, dto.CreateRegisterRequest{
		Name:       "  Front Till  ",
		LocationID: &loc,
	})
	require.NoError(t, err)
	assert.Equal(t, "Front Till", created.Name)
	assert.True(t, created.Active)
	require.NotNil(t, created.LocationID)
	assert.Equal(t, loc, *created.LocationID)

	id := uuid.MustParse(created.ID)

	renamed, err := svc.Rename(ctx, businessID, id, dto.RenameRegisterRequest{Name: "Back Till"})
	require.NoError(t, err)
	assert.Equal(t, "Back Till", renamed.Name)

	deactivated, err := svc.Deactivate(ctx, businessID, id)
	require.NoError(t, err)
	assert.False(t, deactivated.Active)

	reactivated, err := svc.Reactivate(ctx, businessID, id)
	require.NoError(t, err)
	assert.True(t, reactivated.Active)

	list, err := svc.List(ctx, businessID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)
}

func TestRegister_CrossTenantHidden(t *testing.T) {
	repo := newFakeRegisterRepo()
	svc := service.NewRegisterService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, uuid.New(), dto.CreateRegisterRequest{Name: "Till 9"})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	_, err = svc.Get(ctx, uuid.New(), id)
	assert.ErrorIs(t, err, model.ErrRegisterNotFound)

	_, err = svc.Deactivate(ctx, uuid.New(), id)
	assert.ErrorIs(t, err, model.ErrRegisterNotFound)
}

func TestDeactivateLeavesOpenSessionAlone(t *testing.T) {
	// Retiring a register never force-closes its running session; the drawer
	// still has to be counted out by an operator.
	e := newEnv()
	ctx := context.Background()
	regSvc := service.NewRegisterService(e.registers)

	id, err := e.openSession(ctx, dec("100"))
	require.NoError(t, err)

	_, err = regSvc.Deactivate(ctx, e.businessID, e.register.ID)
	require.NoError(t, err)

	sess, err := e.sessions.FindByID(ctx, e.businessID, id)
	require.NoError(t, err)
	assert.Equal(t, model.SessionOpen, sess.Status)

	// The open session can still be closed normally.
	_, err = e.sessionSvc.Close(ctx, e.businessID, e.operatorID, dto.CloseSessionRequest{
		SessionID: id.String(), ActualCash: dec("100"),
	})
	require.NoError(t, err)

	// But no new session may open on the retired register.
	_, err = e.openSession(ctx, dec("50"))
	assert.ErrorIs(t, err, model.ErrRegisterInactive)
}
