package service

import (
	"context"
	"sync"
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

func newClaimServiceForTest(state *memState) *ClaimService {
	stores := storesFor(state)
	return NewClaimService(ClaimDependencies{
		UnitOfWork:  &memUnitOfWork{state: state},
		ClaimRepo:   stores.Claims,
		ClientRepo:  stores.Clients,
		HistoryRepo: stores.History,
		Notifier:    notify.NewDispatcher(),
		Dispatcher:  events.NewInMemoryDispatcher(),
		ClientLocks: lock.NewKeyedMutex(),
		ClaimLocks:  lock.NewKeyedMutex(),
	})
}

func notificationsByType(state *memState, eventType events.EventType) []domain.Notification {
	state.mu.Lock()
	defer state.mu.Unlock()
	var out []domain.Notification
	for _, n := range state.notifications {
		if n.EventType == string(eventType) {
			out = append(out, n)
		}
	}
	return out
}

func baseInput() ClaimCreateInput {
	return ClaimCreateInput{
		ClientNumber: "1001",
		Sector:       "3",
		ClaimType:    "Sin servicio",
		Details:      "sin señal desde anoche",
		Name:         "Juan Perez",
		Address:      "Calle Falsa 123",
		Phone:        "3434-111222",
		FiledBy:      "OPERADOR",
	}
}

func TestCreateClaimHappyPath(t *testing.T) {
	state := newMemState()
	svc := newClaimServiceForTest(state)

	claim, err := svc.CreateClaim(context.Background(), baseInput())
	require.NoError(t, err)
	require.NotNil(t, claim)
	assert.Equal(t, "1001", claim.ClientNumber)
	assert.Equal(t, domain.ClaimStatusPending, claim.Status)
	assert.Equal(t, "SIN SEÑAL DESDE ANOCHE", claim.Details)

	// client auto-provisioned alongside the claim
	client, ok := state.clients["1001"]
	require.True(t, ok)
	assert.Equal(t, "JUAN PEREZ", client.Name)
	assert.Equal(t, "3", client.Sector)

	assert.Len(t, notificationsByType(state, events.EventClaimCreated), 1)
	assert.Len(t, notificationsByType(state, events.EventClientAutoProvisioned), 1)
}

func TestCreateClaimBlockedByActiveClaim(t *testing.T) {
	state := newMemState()
	svc := newClaimServiceForTest(state)

	first, err := svc.CreateClaim(context.Background(), baseInput())
	require.NoError(t, err)

	_, err = svc.Transition(context.Background(), first.ID, "EN CURSO", domain.TransitionInput{
		Technician: strptr("MARCOS"),
		ActorID:    "OPERADOR",
	})
	require.NoError(t, err)

	input := baseInput()
	input.ClaimType = "Facturación"
	claim, err := svc.CreateClaim(context.Background(), input)
	require.Error(t, err)
	assert.Nil(t, claim)
	assert.True(t, apperrors.IsCode(err, "DUPLICATE_BLOCKED"))

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	ids, ok := domainErr.Details["conflicting_ids"].([]string)
	require.True(t, ok)
	assert.Equal(t, []string{first.ID}, ids)

	// rejection is recorded even though no claim was created, and the
	// stored row points at what blocked the attempt
	attempts := notificationsByType(state, events.EventDuplicateAttempt)
	require.Len(t, attempts, 1)
	assert.Equal(t, "role:admin", attempts[0].Audience)
	assert.Equal(t, domain.PriorityHigh, attempts[0].Priority)
	assert.Contains(t, attempts[0].Message, "1001")
	assert.Contains(t, attempts[0].Message, first.ID)
	require.NotNil(t, attempts[0].ClaimID)
	assert.Equal(t, first.ID, *attempts[0].ClaimID)
	assert.Len(t, state.claims, 1)
}

func TestCreateClaimDisconnectRequestForUnknownClient(t *testing.T) {
	state := newMemState()
	svc := newClaimServiceForTest(state)

	input := baseInput()
	input.ClientNumber = "2002"
	input.ClaimType = "Desconexion a pedido"
	input.Name = "Maria Gomez"

	claim, err := svc.CreateClaim(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimStatusDisconnection, claim.Status)
	assert.Nil(t, claim.Technician)

	_, ok := state.clients["2002"]
	assert.True(t, ok)
	provisioned := notificationsByType(state, events.EventClientAutoProvisioned)
	require.Len(t, provisioned, 1)
	assert.Equal(t, "role:admin", provisioned[0].Audience)
}

func TestCreateClaimDisconnectionStillBlocksNewClaims(t *testing.T) {
	state := newMemState()
	svc := newClaimServiceForTest(state)

	input := baseInput()
	input.ClaimType = "Desconexion a pedido"
	first, err := svc.CreateClaim(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, domain.ClaimStatusDisconnection, first.Status)

	_, err = svc.CreateClaim(context.Background(), baseInput())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "DUPLICATE_BLOCKED"))
}

func TestCreateClaimRejectsUnknownCatalogValues(t *testing.T) {
	svc := newClaimServiceForTest(newMemState())

	input := baseInput()
	input.Sector = "18"
	_, err := svc.CreateClaim(context.Background(), input)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	input = baseInput()
	input.ClaimType = "Problema raro"
	_, err = svc.CreateClaim(context.Background(), input)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestCreateClaimConcurrentSameClient(t *testing.T) {
	state := newMemState()
	svc := newClaimServiceForTest(state)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateClaim(context.Background(), baseInput())
		}(i)
	}
	wg.Wait()

	var successes, blocked int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case apperrors.IsCode(err, "DUPLICATE_BLOCKED"):
			blocked++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, blocked)
	assert.Len(t, state.claims, 1)
}

func TestCreateClaimRollsBackWhenNotificationWriteFails(t *testing.T) {
	state := newMemState()
	state.failNotifications = true
	svc := newClaimServiceForTest(state)

	_, err := svc.CreateClaim(context.Background(), baseInput())
	require.Error(t, err)
	assert.Empty(t, state.claims)
	assert.Empty(t, state.clients)
	assert.Empty(t, state.notifications)
}

func TestCreateClaimInheritsSectorTechnician(t *testing.T) {
	state := newMemState()
	state.sectors["3"] = repository.SectorAssignment{
		Sector:     "3",
		Technician: "FACUNDO",
		AssignedBy: "ADMIN",
		UpdatedAt:  time.Now(),
	}
	svc := newClaimServiceForTest(state)

	claim, err := svc.CreateClaim(context.Background(), baseInput())
	require.NoError(t, err)
	require.NotNil(t, claim.Technician)
	assert.Equal(t, "FACUNDO", *claim.Technician)
}

func TestTransitionFullLifecycle(t *testing.T) {
	state := newMemState()
	svc := newClaimServiceForTest(state)
	ctx := context.Background()

	claim, err := svc.CreateClaim(ctx, baseInput())
	require.NoError(t, err)

	claim, err = svc.Transition(ctx, claim.ID, "EN CURSO", domain.TransitionInput{
		Technician: strptr("marcos"),
		ActorID:    "OPERADOR",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimStatusInProgress, claim.Status)
	assert.Equal(t, "MARCOS", *claim.Technician)

	// resolving without a seal is refused and nothing is written
	_, err = svc.Transition(ctx, claim.ID, "RESUELTO", domain.TransitionInput{ActorID: "OPERADOR"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
	stored := state.claims[claim.ID]
	assert.Equal(t, domain.ClaimStatusInProgress, stored.Status)

	claim, err = svc.Transition(ctx, claim.ID, "RESUELTO", domain.TransitionInput{
		SealNumber: "S-42",
		Notes:      "conector reemplazado",
		ActorID:    "OPERADOR",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimStatusResolved, claim.Status)
	require.NotNil(t, claim.ClosedAt)

	claim, err = svc.Transition(ctx, claim.ID, "CERRADO", domain.TransitionInput{ActorID: "ADMIN"})
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimStatusClosed, claim.Status)

	// closing a closed claim is a no-op, not an error
	again, err := svc.Transition(ctx, claim.ID, "CERRADO", domain.TransitionInput{ActorID: "ADMIN"})
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimStatusClosed, again.Status)

	history, err := svc.ListHistory(ctx, claim.ID, 50, 0)
	require.NoError(t, err)
	var statusChanges, technicianChanges int
	for _, entry := range history {
		switch entry.ChangeType {
		case domain.ChangeTypeStatus:
			statusChanges++
		case domain.ChangeTypeTechnician:
			technicianChanges++
		}
	}
	assert.Equal(t, 3, statusChanges)
	assert.Equal(t, 1, technicianChanges)
	assert.Len(t, notificationsByType(state, events.EventStatusChanged), 3)
}

func TestTransitionRejectsIllegalMove(t *testing.T) {
	state := newMemState()
	svc := newClaimServiceForTest(state)
	ctx := context.Background()

	claim, err := svc.CreateClaim(ctx, baseInput())
	require.NoError(t, err)

	_, err = svc.Transition(ctx, claim.ID, "CERRADO", domain.TransitionInput{ActorID: "ADMIN"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "INVALID_TRANSITION"))

	stored := state.claims[claim.ID]
	assert.Equal(t, domain.ClaimStatusPending, stored.Status)
	assert.Empty(t, notificationsByType(state, events.EventStatusChanged))
}

func TestTransitionUnknownClaim(t *testing.T) {
	svc := newClaimServiceForTest(newMemState())
	_, err := svc.Transition(context.Background(), "missing", "EN CURSO", domain.TransitionInput{
		Technician: strptr("MARCOS"),
		ActorID:    "OPERADOR",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestCheckActive(t *testing.T) {
	state := newMemState()
	svc := newClaimServiceForTest(state)
	ctx := context.Background()

	check, err := svc.CheckActive(ctx, "1001", "Sin servicio")
	require.NoError(t, err)
	assert.False(t, check.Blocked)

	claim, err := svc.CreateClaim(ctx, baseInput())
	require.NoError(t, err)

	check, err = svc.CheckActive(ctx, "1001", "Facturación")
	require.NoError(t, err)
	assert.True(t, check.Blocked)
	require.Len(t, check.Conflicting, 1)
	assert.Equal(t, claim.ID, check.Conflicting[0].ID)
}

func strptr(s string) *string { return &s }
