package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cablesur/claims-service/internal/domain"
	"github.com/cablesur/claims-service/internal/events"
	"github.com/cablesur/claims-service/internal/lock"
	"github.com/cablesur/claims-service/internal/notify"
	"github.com/cablesur/claims-service/internal/repository"
	apperrors "github.com/cablesur/claims-service/pkg/util"
)

func newAssignmentServiceForTest(state *memState) *AssignmentService {
	stores := storesFor(state)
	return NewAssignmentService(AssignmentDependencies{
		UnitOfWork:          &memUnitOfWork{state: state},
		ClaimRepo:           stores.Claims,
		SectorRepo:          stores.Sectors,
		GroupRepo:           stores.Groups,
		Notifier:            notify.NewDispatcher(),
		Dispatcher:          events.NewInMemoryDispatcher(),
		ClaimLocks:          lock.NewKeyedMutex(),
		Logger:              nil,
		DefaultActiveGroups: 2,
	})
}

func seedClaim(state *memState, id, clientNumber, sector string, status domain.ClaimStatus, technician *string) {
	now := time.Now()
	state.claims[id] = domain.Claim{
		ID:           id,
		ClientNumber: clientNumber,
		Sector:       sector,
		Type:         "Sin servicio",
		Status:       status,
		Technician:   technician,
		FiledBy:      "OPERADOR",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func seedGroup(state *memState, sector, group string) {
	state.groups[sector] = repository.GroupAssignment{
		Sector:    sector,
		GroupName: group,
		UpdatedAt: time.Now(),
	}
}

func TestAssignTechnicianAppliesToOpenClaims(t *testing.T) {
	state := newMemState()
	seedClaim(state, "open-1", "1001", "3", domain.ClaimStatusPending, nil)
	seedClaim(state, "open-2", "1002", "3", domain.ClaimStatusInProgress, strptr("ARIEL"))
	seedClaim(state, "closed-1", "1003", "3", domain.ClaimStatusClosed, strptr("ARIEL"))
	seedClaim(state, "other-sector", "1004", "5", domain.ClaimStatusPending, nil)
	svc := newAssignmentServiceForTest(state)

	result, err := svc.AssignTechnician(context.Background(), "3", "marcos", "ADMIN")
	require.NoError(t, err)
	assert.Equal(t, "3", result.Sector)
	require.NotNil(t, result.Technician)
	assert.Equal(t, "MARCOS", *result.Technician)
	assert.Equal(t, 2, result.ClaimsAffected)

	assert.Equal(t, "MARCOS", *state.claims["open-1"].Technician)
	assert.Equal(t, "MARCOS", *state.claims["open-2"].Technician)
	assert.Equal(t, "ARIEL", *state.claims["closed-1"].Technician)
	assert.Nil(t, state.claims["other-sector"].Technician)

	assignment, ok := state.sectors["3"]
	require.True(t, ok)
	assert.Equal(t, "MARCOS", assignment.Technician)
	assert.Equal(t, "ADMIN", assignment.AssignedBy)

	// one history entry per rebound claim
	assert.Len(t, state.history, 2)
	assert.Len(t, state.notifications, 1)
}

func TestAssignTechnicianWaitsForClaimLocks(t *testing.T) {
	state := newMemState()
	seedClaim(state, "open-1", "1001", "3", domain.ClaimStatusInProgress, strptr("ARIEL"))
	svc := newAssignmentServiceForTest(state)

	// A single-claim writer holds the lock; the bulk rebind must not slip
	// past it.
	release, err := svc.claimLocks.Lock(context.Background(), "open-1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = svc.AssignTechnician(ctx, "3", "MARCOS", "ADMIN")
	require.Error(t, err)
	assert.Equal(t, "ARIEL", *state.claims["open-1"].Technician)
	assert.Empty(t, state.sectors)

	release()
	result, err := svc.AssignTechnician(context.Background(), "3", "MARCOS", "ADMIN")
	require.NoError(t, err)
	assert.Equal(t, 1, result.ClaimsAffected)
	assert.Equal(t, "MARCOS", *state.claims["open-1"].Technician)
}

func TestAssignTechnicianValidation(t *testing.T) {
	svc := newAssignmentServiceForTest(newMemState())

	_, err := svc.AssignTechnician(context.Background(), "99", "MARCOS", "ADMIN")
	assert.True(t, apperrors.IsCode(err, "UNKNOWN_SECTOR"))

	_, err = svc.AssignTechnician(context.Background(), "3", "PEDRO", "ADMIN")
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestReassignClaim(t *testing.T) {
	state := newMemState()
	seedClaim(state, "c1", "1001", "3", domain.ClaimStatusInProgress, strptr("ARIEL"))
	svc := newAssignmentServiceForTest(state)

	claim, err := svc.ReassignClaim(context.Background(), "c1", "mauro", "ADMIN")
	require.NoError(t, err)
	assert.Equal(t, "MAURO", *claim.Technician)
	assert.Len(t, state.history, 1)
	assert.Len(t, state.notifications, 1)
}

func TestReassignClaimRejectsClosedClaim(t *testing.T) {
	state := newMemState()
	seedClaim(state, "c1", "1001", "3", domain.ClaimStatusClosed, strptr("ARIEL"))
	svc := newAssignmentServiceForTest(state)

	_, err := svc.ReassignClaim(context.Background(), "c1", "MAURO", "ADMIN")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
	assert.Equal(t, "ARIEL", *state.claims["c1"].Technician)
}

func TestAutoAssignNoEligibleGroup(t *testing.T) {
	state := newMemState()
	// Grupo A holds zone 2 sectors, Grupo B holds zone 4 sectors. Neither
	// zone reaches zone 1, so sector "1" cannot be placed.
	seedGroup(state, "5", "Grupo A")
	seedGroup(state, "11", "Grupo B")
	svc := newAssignmentServiceForTest(state)

	_, err := svc.AutoAssign(context.Background(), "1", 2, "ADMIN")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "NO_ELIGIBLE_GROUP"))

	// nothing mutated
	assert.Len(t, state.groups, 2)
	assert.Empty(t, state.notifications)
}

func TestAutoAssignBootstrapEmptyGroups(t *testing.T) {
	state := newMemState()
	svc := newAssignmentServiceForTest(state)

	result, err := svc.AutoAssign(context.Background(), "1", 2, "ADMIN")
	require.NoError(t, err)
	require.NotNil(t, result.GroupName)
	assert.Equal(t, "Grupo A", *result.GroupName)

	assignment, ok := state.groups["1"]
	require.True(t, ok)
	assert.Equal(t, "Grupo A", assignment.GroupName)
	assert.Len(t, state.notifications, 1)
}

func TestAutoAssignPrefersLeastLoadedGroup(t *testing.T) {
	state := newMemState()
	// Both groups sit in zone 3, which is compatible with zone 1.
	seedGroup(state, "9", "Grupo A")
	seedGroup(state, "10", "Grupo B")
	seedClaim(state, "c1", "1001", "9", domain.ClaimStatusPending, nil)
	seedClaim(state, "c2", "1002", "9", domain.ClaimStatusInProgress, strptr("ARIEL"))
	svc := newAssignmentServiceForTest(state)

	result, err := svc.AutoAssign(context.Background(), "1", 2, "ADMIN")
	require.NoError(t, err)
	require.NotNil(t, result.GroupName)
	assert.Equal(t, "Grupo B", *result.GroupName)
}

func TestAutoAssignTieBreaksByGroupOrder(t *testing.T) {
	state := newMemState()
	seedGroup(state, "9", "Grupo B")
	seedGroup(state, "10", "Grupo A")
	svc := newAssignmentServiceForTest(state)

	result, err := svc.AutoAssign(context.Background(), "2", 2, "ADMIN")
	require.NoError(t, err)
	require.NotNil(t, result.GroupName)
	assert.Equal(t, "Grupo A", *result.GroupName)
}

func TestAutoAssignIgnoresInactiveGroups(t *testing.T) {
	state := newMemState()
	// Grupo C covers everything but only two groups are active.
	seedGroup(state, "9", "Grupo C")
	seedGroup(state, "5", "Grupo A")
	seedGroup(state, "11", "Grupo B")
	svc := newAssignmentServiceForTest(state)

	_, err := svc.AutoAssign(context.Background(), "1", 2, "ADMIN")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "NO_ELIGIBLE_GROUP"))
}

func TestAutoAssignUnknownSector(t *testing.T) {
	svc := newAssignmentServiceForTest(newMemState())
	_, err := svc.AutoAssign(context.Background(), "42", 2, "ADMIN")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "UNKNOWN_SECTOR"))
}

func TestAutoAssignUsesDefaultGroupCount(t *testing.T) {
	state := newMemState()
	svc := newAssignmentServiceForTest(state)

	result, err := svc.AutoAssign(context.Background(), "14", 0, "ADMIN")
	require.NoError(t, err)
	require.NotNil(t, result.GroupName)
	assert.Contains(t, []string{"Grupo A", "Grupo B"}, *result.GroupName)
}
