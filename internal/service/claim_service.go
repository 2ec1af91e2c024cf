package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/cablesur/claims-service/internal/domain"
	"github.com/cablesur/claims-service/internal/events"
	"github.com/cablesur/claims-service/internal/lock"
	"github.com/cablesur/claims-service/internal/notify"
	"github.com/cablesur/claims-service/internal/repository"
	apperrors "github.com/cablesur/claims-service/pkg/util"
)

// ClaimService coordinates claim creation and lifecycle transitions.
type ClaimService struct {
	uow         repository.UnitOfWork
	claims      repository.ClaimRepository
	clients     repository.ClientRepository
	history     repository.ClaimHistoryRepository
	notifier    *notify.Dispatcher
	dispatcher  events.Dispatcher
	clientLocks *lock.KeyedMutex
	claimLocks  *lock.KeyedMutex
	logger      *zap.Logger
	now         func() time.Time
}

// ClaimDependencies bundles collaborators for the claim service.
type ClaimDependencies struct {
	UnitOfWork  repository.UnitOfWork
	ClaimRepo   repository.ClaimRepository
	ClientRepo  repository.ClientRepository
	HistoryRepo repository.ClaimHistoryRepository
	Notifier    *notify.Dispatcher
	Dispatcher  events.Dispatcher
	ClientLocks *lock.KeyedMutex
	ClaimLocks  *lock.KeyedMutex
	Logger      *zap.Logger
}

// NewClaimService constructs the service.
func NewClaimService(deps ClaimDependencies) *ClaimService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClaimService{
		uow:         deps.UnitOfWork,
		claims:      deps.ClaimRepo,
		clients:     deps.ClientRepo,
		history:     deps.HistoryRepo,
		notifier:    deps.Notifier,
		dispatcher:  deps.Dispatcher,
		clientLocks: deps.ClientLocks,
		claimLocks:  deps.ClaimLocks,
		logger:      logger,
		now:         time.Now,
	}
}

// ClaimCreateInput describes a claim creation request. The contact fields
// feed client auto-provisioning and registry updates.
type ClaimCreateInput struct {
	ClientNumber string
	Sector       string
	ClaimType    string
	Details      string
	SealNumber   string
	Name         string
	Address      string
	Phone        string
	FiledBy      string
}

// DuplicateCheck is the duplicate guard's verdict.
type DuplicateCheck struct {
	Blocked     bool
	Conflicting []domain.Claim
}

// CheckActive reports, without side effects, whether the client is blocked
// from filing a claim of the given type.
func (s *ClaimService) CheckActive(ctx context.Context, clientNumber, claimType string) (*DuplicateCheck, error) {
	existing, err := s.claims.ListByClient(ctx, strings.TrimSpace(clientNumber))
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	conflicts := conflictingClaims(existing)
	return &DuplicateCheck{Blocked: len(conflicts) > 0, Conflicting: conflicts}, nil
}

// conflictingClaims applies the duplicate guard policy: a claim conflicts
// when it is in an open state, or when it is a disconnect request parked in
// the Disconnection status (a special marker that still blocks new claims).
func conflictingClaims(existing []domain.Claim) []domain.Claim {
	var conflicts []domain.Claim
	for _, claim := range existing {
		if claim.Status.IsOpen() {
			conflicts = append(conflicts, claim)
			continue
		}
		if domain.IsDisconnectRequest(claim.Type) && claim.Status == domain.ClaimStatusDisconnection {
			conflicts = append(conflicts, claim)
		}
	}
	return conflicts
}

// CreateClaim runs the full creation flow: validation, the duplicate guard
// within the per-client critical section, client auto-provisioning, the
// claim insert and its notifications, all committed as one unit.
func (s *ClaimService) CreateClaim(ctx context.Context, input ClaimCreateInput) (*domain.Claim, error) {
	clientNumber := strings.TrimSpace(input.ClientNumber)
	if clientNumber == "" {
		return nil, apperrors.NewValidationError("client number is required", nil)
	}
	sector, ok := domain.NormalizeSector(input.Sector)
	if !ok {
		return nil, apperrors.NewValidationError("sector outside the catalog",
			map[string]any{"sector": input.Sector})
	}
	claimType, ok := domain.NormalizeClaimType(input.ClaimType)
	if !ok {
		return nil, apperrors.NewValidationError("claim type outside the catalog",
			map[string]any{"claim_type": input.ClaimType})
	}
	if strings.TrimSpace(input.FiledBy) == "" {
		return nil, apperrors.NewValidationError("filed_by is required", nil)
	}

	release, err := s.clientLocks.Lock(ctx, clientNumber)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	defer release()

	var (
		claim       *domain.Claim
		blocked     error
		postEvents  []events.Event
		provisioned bool
	)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, stores repository.Stores) error {
		existing, err := stores.Claims.ListByClient(ctx, clientNumber)
		if err != nil {
			return err
		}
		if conflicts := conflictingClaims(existing); len(conflicts) > 0 {
			ids := make([]string, 0, len(conflicts))
			for _, c := range conflicts {
				ids = append(ids, c.ID)
			}
			// The first conflicting claim anchors the notification record.
			event := s.newEvent(events.EventDuplicateAttempt, ids[0], input.FiledBy,
				events.DuplicateAttemptPayload{ClientNumber: clientNumber, ConflictingIDs: ids})
			// Duplicate attempts are signal: the rejection commits its
			// notification even though no claim is created.
			if _, err := s.notifier.Dispatch(ctx, stores.Notifications, event, nil); err != nil {
				return err
			}
			blocked = apperrors.NewDuplicateBlocked(clientNumber, ids)
			postEvents = append(postEvents, event)
			return nil
		}

		provisioned, err = s.syncClient(ctx, stores, clientNumber, sector, input)
		if err != nil {
			return err
		}

		now := s.now()
		claim = &domain.Claim{
			ID:           uuid.NewString(),
			ClientNumber: clientNumber,
			Sector:       sector,
			Type:         claimType,
			Details:      strings.ToUpper(strings.TrimSpace(input.Details)),
			Status:       domain.InitialStatus(claimType),
			FiledBy:      strings.ToUpper(strings.TrimSpace(input.FiledBy)),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if seal := strings.TrimSpace(input.SealNumber); seal != "" {
			claim.SealNumber = &seal
		}
		// Pending claims inherit the sector's standing technician so manual
		// sector assignments apply going forward.
		if claim.Status == domain.ClaimStatusPending {
			if assignment, err := stores.Sectors.Get(ctx, sector); err == nil {
				technician := assignment.Technician
				claim.Technician = &technician
			} else if !errors.Is(err, pgx.ErrNoRows) {
				return err
			}
		}

		if err := stores.Claims.Create(ctx, claim); err != nil {
			return err
		}

		created := s.newEvent(events.EventClaimCreated, claim.ID, claim.FiledBy,
			events.ClaimCreatedPayload{
				ClientNumber: clientNumber,
				Sector:       sector,
				ClaimType:    claimType,
				Status:       claim.Status,
			})
		if _, err := s.notifier.Dispatch(ctx, stores.Notifications, created, nil); err != nil {
			return err
		}
		postEvents = append(postEvents, created)

		if provisioned {
			autoProvisioned := s.newEvent(events.EventClientAutoProvisioned, claim.ID, claim.FiledBy,
				events.ClientAutoProvisionedPayload{
					ClientNumber: clientNumber,
					Name:         strings.ToUpper(strings.TrimSpace(input.Name)),
				})
			if _, err := s.notifier.Dispatch(ctx, stores.Notifications, autoProvisioned, nil); err != nil {
				return err
			}
			postEvents = append(postEvents, autoProvisioned)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, postEvents)
	if blocked != nil {
		return nil, blocked
	}
	return claim, nil
}

// syncClient auto-provisions an unknown client or refreshes a stale record.
// Returns true when a new client was created.
func (s *ClaimService) syncClient(ctx context.Context, stores repository.Stores, clientNumber, sector string, input ClaimCreateInput) (bool, error) {
	name := strings.ToUpper(strings.TrimSpace(input.Name))
	address := strings.ToUpper(strings.TrimSpace(input.Address))
	phone := strings.TrimSpace(input.Phone)
	seal := strings.TrimSpace(input.SealNumber)
	now := s.now()

	existing, err := stores.Clients.Get(ctx, clientNumber)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return false, err
		}
		client := &domain.Client{
			Number:     clientNumber,
			Name:       name,
			Address:    address,
			Phone:      phone,
			Sector:     sector,
			SealNumber: seal,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := stores.Clients.Upsert(ctx, client); err != nil {
			return false, err
		}
		return true, nil
	}

	needsUpdate := existing.Sector != sector ||
		(name != "" && existing.Name != name) ||
		(address != "" && existing.Address != address) ||
		(phone != "" && existing.Phone != phone) ||
		(seal != "" && existing.SealNumber != seal)
	if !needsUpdate {
		return false, nil
	}
	existing.Sector = sector
	if name != "" {
		existing.Name = name
	}
	if address != "" {
		existing.Address = address
	}
	if phone != "" {
		existing.Phone = phone
	}
	if seal != "" {
		existing.SealNumber = seal
	}
	existing.UpdatedAt = now
	return false, stores.Clients.Upsert(ctx, existing)
}

// Transition drives a claim through one lifecycle step. The whole step
// (state, timestamps, history, notification) commits atomically; a timeout
// waiting for the per-claim critical section applies nothing.
func (s *ClaimService) Transition(ctx context.Context, claimID, targetStatus string, input domain.TransitionInput) (*domain.Claim, error) {
	target, ok := domain.NormalizeStatus(targetStatus)
	if !ok {
		return nil, apperrors.NewValidationError("status outside the vocabulary",
			map[string]any{"status": targetStatus})
	}
	if input.Technician != nil {
		technician, ok := domain.NormalizeTechnician(*input.Technician)
		if !ok {
			return nil, apperrors.NewValidationError("technician outside the roster",
				map[string]any{"technician": *input.Technician})
		}
		input.Technician = &technician
	}

	release, err := s.claimLocks.Lock(ctx, claimID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	defer release()

	var (
		claim      *domain.Claim
		postEvents []events.Event
	)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, stores repository.Stores) error {
		current, err := stores.Claims.GetByID(ctx, claimID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("claim", map[string]any{"claim_id": claimID})
			}
			return err
		}

		oldStatus := current.Status
		oldTechnician := current.Technician
		changed, err := domain.ApplyTransition(current, target, input, s.now())
		if err != nil {
			return err
		}
		claim = current
		if !changed {
			return nil
		}

		if err := stores.Claims.Update(ctx, current); err != nil {
			return err
		}
		if err := stores.History.Create(ctx, &domain.ClaimHistory{
			ID:         uuid.NewString(),
			ClaimID:    current.ID,
			ChangedBy:  input.ActorID,
			ChangeType: domain.ChangeTypeStatus,
			OldValue:   map[string]any{"status": oldStatus},
			NewValue:   map[string]any{"status": current.Status},
			CreatedAt:  current.UpdatedAt,
		}); err != nil {
			return err
		}
		if technicianChanged(oldTechnician, current.Technician) {
			if err := stores.History.Create(ctx, &domain.ClaimHistory{
				ID:         uuid.NewString(),
				ClaimID:    current.ID,
				ChangedBy:  input.ActorID,
				ChangeType: domain.ChangeTypeTechnician,
				OldValue:   map[string]any{"technician": oldTechnician},
				NewValue:   map[string]any{"technician": current.Technician},
				CreatedAt:  current.UpdatedAt,
			}); err != nil {
				return err
			}
		}

		event := s.newEvent(events.EventStatusChanged, current.ID, input.ActorID,
			events.StatusChangedPayload{OldStatus: oldStatus, NewStatus: current.Status})
		if _, err := s.notifier.Dispatch(ctx, stores.Notifications, event, nil); err != nil {
			return err
		}
		postEvents = append(postEvents, event)
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, postEvents)
	return claim, nil
}

// GetClaim fetches a claim by id.
func (s *ClaimService) GetClaim(ctx context.Context, claimID string) (*domain.Claim, error) {
	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("claim", map[string]any{"claim_id": claimID})
		}
		return nil, apperrors.MapError(err)
	}
	return claim, nil
}

// ListClaims returns claims matching the filter.
func (s *ClaimService) ListClaims(ctx context.Context, filter repository.ClaimFilter) ([]domain.Claim, error) {
	claims, err := s.claims.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return claims, nil
}

// ListHistory returns the audit trail for a claim.
func (s *ClaimService) ListHistory(ctx context.Context, claimID string, limit, offset int) ([]domain.ClaimHistory, error) {
	entries, err := s.history.ListByClaim(ctx, claimID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

func (s *ClaimService) newEvent(eventType events.EventType, claimID, actor string, payload interface{}) events.Event {
	return events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ClaimID:   claimID,
		Actor:     actor,
		Timestamp: s.now(),
		Payload:   payload,
	}
}

func (s *ClaimService) publish(ctx context.Context, list []events.Event) {
	if s.dispatcher == nil {
		return
	}
	for _, event := range list {
		_ = s.dispatcher.Publish(ctx, event)
	}
}

func technicianChanged(old, current *string) bool {
	switch {
	case old == nil && current == nil:
		return false
	case old == nil || current == nil:
		return true
	default:
		return *old != *current
	}
}
