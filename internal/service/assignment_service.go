package service

import (
	"context"
	"errors"
	"sort"
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

// AssignmentResult reports the outcome of an assignment operation.
type AssignmentResult struct {
	Sector         string
	Technician     *string
	GroupName      *string
	ClaimsAffected int
}

// AssignmentService maps sectors to technicians and work groups.
type AssignmentService struct {
	uow          repository.UnitOfWork
	claims       repository.ClaimRepository
	sectors      repository.SectorAssignmentRepository
	groups       repository.GroupAssignmentRepository
	notifier     *notify.Dispatcher
	dispatcher   events.Dispatcher
	claimLocks   *lock.KeyedMutex
	logger       *zap.Logger
	defaultCount int
	now          func() time.Time
}

// AssignmentDependencies bundles collaborators.
type AssignmentDependencies struct {
	UnitOfWork          repository.UnitOfWork
	ClaimRepo           repository.ClaimRepository
	SectorRepo          repository.SectorAssignmentRepository
	GroupRepo           repository.GroupAssignmentRepository
	Notifier            *notify.Dispatcher
	Dispatcher          events.Dispatcher
	ClaimLocks          *lock.KeyedMutex
	Logger              *zap.Logger
	DefaultActiveGroups int
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	count := deps.DefaultActiveGroups
	if count <= 0 {
		count = 2
	}
	return &AssignmentService{
		uow:          deps.UnitOfWork,
		claims:       deps.ClaimRepo,
		sectors:      deps.SectorRepo,
		groups:       deps.GroupRepo,
		notifier:     deps.Notifier,
		dispatcher:   deps.Dispatcher,
		claimLocks:   deps.ClaimLocks,
		logger:       logger,
		defaultCount: count,
		now:          time.Now,
	}
}

// AssignTechnician is the manual mode: it records the sector-to-technician
// mapping and applies it to all currently open claims in the sector. Already
// closed claims are never touched; future claims inherit the mapping.
func (s *AssignmentService) AssignTechnician(ctx context.Context, sectorInput, technicianInput, actor string) (*AssignmentResult, error) {
	sector, ok := domain.NormalizeSector(sectorInput)
	if !ok {
		return nil, apperrors.NewUnknownSector(sectorInput)
	}
	technician, ok := domain.NormalizeTechnician(technicianInput)
	if !ok {
		return nil, apperrors.NewValidationError("technician outside the roster",
			map[string]any{"technician": technicianInput})
	}

	// Single-claim writers serialize on claimLocks, so the bulk rebind must
	// hold the same lock for every row it rewrites. The open set is locked in
	// sorted order before the transaction starts.
	snapshot, err := s.claims.ListWithFilter(ctx, repository.ClaimFilter{
		Sector:   &sector,
		Statuses: domain.OpenStatuses,
		Limit:    500,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	lockedIDs := make([]string, 0, len(snapshot))
	for i := range snapshot {
		lockedIDs = append(lockedIDs, snapshot[i].ID)
	}
	sort.Strings(lockedIDs)
	releases := make([]func(), 0, len(lockedIDs))
	defer func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}()
	locked := make(map[string]bool, len(lockedIDs))
	for _, id := range lockedIDs {
		release, err := s.claimLocks.Lock(ctx, id)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		releases = append(releases, release)
		locked[id] = true
	}

	var (
		result     *AssignmentResult
		postEvents []events.Event
	)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, stores repository.Stores) error {
		now := s.now()
		if err := stores.Sectors.Upsert(ctx, &repository.SectorAssignment{
			Sector:     sector,
			Technician: technician,
			AssignedBy: actor,
			UpdatedAt:  now,
		}); err != nil {
			return err
		}

		open, err := stores.Claims.ListWithFilter(ctx, repository.ClaimFilter{
			Sector:   &sector,
			Statuses: domain.OpenStatuses,
			Limit:    500,
		})
		if err != nil {
			return err
		}

		affected := 0
		for i := range open {
			claim := &open[i]
			// Claims filed after the lock snapshot inherit the mapping at
			// creation through the sector assignment.
			if !locked[claim.ID] {
				continue
			}
			if claim.Technician != nil && *claim.Technician == technician {
				continue
			}
			oldTechnician := claim.Technician
			claim.Technician = &technician
			claim.UpdatedAt = now
			if err := stores.Claims.Update(ctx, claim); err != nil {
				return err
			}
			if err := stores.History.Create(ctx, &domain.ClaimHistory{
				ID:         uuid.NewString(),
				ClaimID:    claim.ID,
				ChangedBy:  actor,
				ChangeType: domain.ChangeTypeTechnician,
				OldValue:   map[string]any{"technician": oldTechnician},
				NewValue:   map[string]any{"technician": technician},
				CreatedAt:  now,
			}); err != nil {
				return err
			}
			affected++
		}

		event := events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventReassigned,
			Actor:     actor,
			Timestamp: now,
			Payload: events.ReassignedPayload{
				Sector:     sector,
				Technician: &technician,
			},
		}
		if _, err := s.notifier.Dispatch(ctx, stores.Notifications, event, nil); err != nil {
			return err
		}
		postEvents = append(postEvents, event)

		result = &AssignmentResult{
			Sector:         sector,
			Technician:     &technician,
			ClaimsAffected: affected,
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, postEvents)
	return result, nil
}

// ReassignClaim moves a single open claim to a different technician. Manual
// override does not re-validate zone compatibility.
func (s *AssignmentService) ReassignClaim(ctx context.Context, claimID, technicianInput, actor string) (*domain.Claim, error) {
	technician, ok := domain.NormalizeTechnician(technicianInput)
	if !ok {
		return nil, apperrors.NewValidationError("technician outside the roster",
			map[string]any{"technician": technicianInput})
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
		if !current.Status.IsOpen() {
			return apperrors.NewConflict("claim is not open for reassignment",
				map[string]any{"claim_id": claimID, "status": current.Status})
		}

		now := s.now()
		oldTechnician := current.Technician
		current.Technician = &technician
		current.UpdatedAt = now
		if err := stores.Claims.Update(ctx, current); err != nil {
			return err
		}
		if err := stores.History.Create(ctx, &domain.ClaimHistory{
			ID:         uuid.NewString(),
			ClaimID:    current.ID,
			ChangedBy:  actor,
			ChangeType: domain.ChangeTypeTechnician,
			OldValue:   map[string]any{"technician": oldTechnician},
			NewValue:   map[string]any{"technician": technician},
			CreatedAt:  now,
		}); err != nil {
			return err
		}

		event := events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventReassigned,
			ClaimID:   current.ID,
			Actor:     actor,
			Timestamp: now,
			Payload: events.ReassignedPayload{
				Sector:     current.Sector,
				Technician: &technician,
			},
		}
		if _, err := s.notifier.Dispatch(ctx, stores.Notifications, event, nil); err != nil {
			return err
		}
		postEvents = append(postEvents, event)
		claim = current
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, postEvents)
	return claim, nil
}

// AutoAssign is the automatic mode: it places a sector into one of the
// active work groups, honoring zone compatibility and balancing load. When
// no active group covers the sector's zone the placement is rejected and
// nothing is mutated; the caller falls back to manual assignment.
func (s *AssignmentService) AutoAssign(ctx context.Context, sectorInput string, activeGroupCount int, actor string) (*AssignmentResult, error) {
	sector, ok := domain.NormalizeSector(sectorInput)
	if !ok {
		return nil, apperrors.NewUnknownSector(sectorInput)
	}
	zone, ok := domain.ZoneOfSector(sector)
	if !ok {
		return nil, apperrors.NewUnknownSector(sector)
	}
	if activeGroupCount <= 0 {
		activeGroupCount = s.defaultCount
	}
	active := domain.ActiveGroups(activeGroupCount)

	var (
		result     *AssignmentResult
		postEvents []events.Event
	)

	err := s.uow.WithinTx(ctx, func(ctx context.Context, stores repository.Stores) error {
		assignments, err := stores.Groups.List(ctx)
		if err != nil {
			return err
		}
		groupSectors := make(map[string][]string, len(active))
		for _, name := range active {
			groupSectors[name] = nil
		}
		for _, a := range assignments {
			if _, isActive := groupSectors[a.GroupName]; isActive {
				groupSectors[a.GroupName] = append(groupSectors[a.GroupName], a.Sector)
			}
		}

		eligible := make([]string, 0, len(active))
		for _, name := range active {
			if groupCovers(groupSectors[name], zone) {
				eligible = append(eligible, name)
			}
		}
		if len(eligible) == 0 {
			return apperrors.NewNoEligibleGroup(sector)
		}

		// Load snapshot at decision time: open claims summed over each
		// group's sectors.
		openBySector, err := stores.Claims.CountOpenBySector(ctx)
		if err != nil {
			return err
		}
		sort.SliceStable(eligible, func(i, j int) bool {
			li, lj := groupLoad(groupSectors[eligible[i]], openBySector), groupLoad(groupSectors[eligible[j]], openBySector)
			if li != lj {
				return li < lj
			}
			return eligible[i] < eligible[j]
		})
		chosen := eligible[0]

		now := s.now()
		if err := stores.Groups.Upsert(ctx, &repository.GroupAssignment{
			Sector:    sector,
			GroupName: chosen,
			UpdatedAt: now,
		}); err != nil {
			return err
		}

		event := events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventReassigned,
			Actor:     actor,
			Timestamp: now,
			Payload: events.ReassignedPayload{
				Sector:    sector,
				GroupName: &chosen,
			},
		}
		if _, err := s.notifier.Dispatch(ctx, stores.Notifications, event, nil); err != nil {
			return err
		}
		postEvents = append(postEvents, event)

		result = &AssignmentResult{Sector: sector, GroupName: &chosen}
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, postEvents)
	return result, nil
}

// ListSectorAssignments returns the standing manual mappings.
func (s *AssignmentService) ListSectorAssignments(ctx context.Context) ([]repository.SectorAssignment, error) {
	assignments, err := s.sectors.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return assignments, nil
}

// ListGroupAssignments returns the current sector-to-group distribution.
func (s *AssignmentService) ListGroupAssignments(ctx context.Context) ([]repository.GroupAssignment, error) {
	assignments, err := s.groups.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return assignments, nil
}

// groupCovers reports whether a group whose current sectors are sectors may
// serve the target zone. Coverage is the union of the group's home zones and
// their compatible zones. A group holding no sectors yet may take any zone.
func groupCovers(sectors []string, target domain.Zone) bool {
	if len(sectors) == 0 {
		return true
	}
	seen := make(map[domain.Zone]bool)
	for _, sector := range sectors {
		home, ok := domain.ZoneOfSector(sector)
		if !ok {
			continue
		}
		seen[home] = true
		for _, z := range domain.CompatibleZones(home) {
			seen[z] = true
		}
	}
	return seen[target]
}

func groupLoad(sectors []string, openBySector map[string]int) int {
	total := 0
	for _, sector := range sectors {
		total += openBySector[sector]
	}
	return total
}

func (s *AssignmentService) publish(ctx context.Context, list []events.Event) {
	if s.dispatcher == nil {
		return
	}
	for _, event := range list {
		_ = s.dispatcher.Publish(ctx, event)
	}
}
