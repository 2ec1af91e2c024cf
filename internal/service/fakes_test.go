package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/cablesur/claims-service/internal/domain"
	"github.com/cablesur/claims-service/internal/repository"
)

// memState backs the in-memory repositories. Transactions operate on a clone
// and merge back on commit, so a failed unit of work leaves it untouched.
type memState struct {
	mu                sync.Mutex
	txMu              sync.Mutex
	claims            map[string]domain.Claim
	clients           map[string]domain.Client
	history           []domain.ClaimHistory
	notifications     []domain.Notification
	sectors           map[string]repository.SectorAssignment
	groups            map[string]repository.GroupAssignment
	failNotifications bool
}

func newMemState() *memState {
	return &memState{
		claims:  make(map[string]domain.Claim),
		clients: make(map[string]domain.Client),
		sectors: make(map[string]repository.SectorAssignment),
		groups:  make(map[string]repository.GroupAssignment),
	}
}

func (s *memState) clone() *memState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := newMemState()
	out.failNotifications = s.failNotifications
	for k, v := range s.claims {
		out.claims[k] = v
	}
	for k, v := range s.clients {
		out.clients[k] = v
	}
	for k, v := range s.sectors {
		out.sectors[k] = v
	}
	for k, v := range s.groups {
		out.groups[k] = v
	}
	out.history = append(out.history, s.history...)
	out.notifications = append(out.notifications, s.notifications...)
	return out
}

func (s *memState) replaceWith(other *memState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.claims = other.claims
	s.clients = other.clients
	s.sectors = other.sectors
	s.groups = other.groups
	s.history = other.history
	s.notifications = other.notifications
}

func storesFor(s *memState) repository.Stores {
	return repository.Stores{
		Claims:        &memClaimRepo{state: s},
		Clients:       &memClientRepo{state: s},
		Notifications: &memNotificationRepo{state: s},
		History:       &memHistoryRepo{state: s},
		Sectors:       &memSectorRepo{state: s},
		Groups:        &memGroupRepo{state: s},
	}
}

type memUnitOfWork struct {
	state *memState
}

func (u *memUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, stores repository.Stores) error) error {
	u.state.txMu.Lock()
	defer u.state.txMu.Unlock()
	scratch := u.state.clone()
	if err := fn(ctx, storesFor(scratch)); err != nil {
		return err
	}
	u.state.replaceWith(scratch)
	return nil
}

type memClaimRepo struct {
	state *memState
}

func (r *memClaimRepo) Create(_ context.Context, claim *domain.Claim) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	r.state.claims[claim.ID] = *claim
	return nil
}

func (r *memClaimRepo) Update(_ context.Context, claim *domain.Claim) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	if _, ok := r.state.claims[claim.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.state.claims[claim.ID] = *claim
	return nil
}

func (r *memClaimRepo) GetByID(_ context.Context, id string) (*domain.Claim, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	claim, ok := r.state.claims[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &claim, nil
}

func (r *memClaimRepo) ListByClient(ctx context.Context, clientNumber string) ([]domain.Claim, error) {
	return r.ListWithFilter(ctx, repository.ClaimFilter{ClientNumber: &clientNumber})
}

func (r *memClaimRepo) ListByStatus(ctx context.Context, status domain.ClaimStatus) ([]domain.Claim, error) {
	return r.ListWithFilter(ctx, repository.ClaimFilter{Statuses: []domain.ClaimStatus{status}})
}

func (r *memClaimRepo) ListWithFilter(_ context.Context, filter repository.ClaimFilter) ([]domain.Claim, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	var out []domain.Claim
	for _, claim := range r.state.claims {
		if filter.ClientNumber != nil && claim.ClientNumber != *filter.ClientNumber {
			continue
		}
		if filter.Sector != nil && claim.Sector != *filter.Sector {
			continue
		}
		if filter.Technician != nil && (claim.Technician == nil || *claim.Technician != *filter.Technician) {
			continue
		}
		if filter.ClaimType != nil && claim.Type != *filter.ClaimType {
			continue
		}
		if len(filter.Statuses) > 0 {
			match := false
			for _, status := range filter.Statuses {
				if claim.Status == status {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, claim)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memClaimRepo) CountOpenBySector(_ context.Context) (map[string]int, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	counts := make(map[string]int)
	for _, claim := range r.state.claims {
		if claim.Status.IsOpen() {
			counts[claim.Sector]++
		}
	}
	return counts, nil
}

type memClientRepo struct {
	state *memState
}

func (r *memClientRepo) Get(_ context.Context, number string) (*domain.Client, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	client, ok := r.state.clients[number]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &client, nil
}

func (r *memClientRepo) Upsert(_ context.Context, client *domain.Client) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	r.state.clients[client.Number] = *client
	return nil
}

type memHistoryRepo struct {
	state *memState
}

func (r *memHistoryRepo) Create(_ context.Context, entry *domain.ClaimHistory) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	r.state.history = append(r.state.history, *entry)
	return nil
}

func (r *memHistoryRepo) ListByClaim(_ context.Context, claimID string, _, _ int) ([]domain.ClaimHistory, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	var out []domain.ClaimHistory
	for _, entry := range r.state.history {
		if entry.ClaimID == claimID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type memNotificationRepo struct {
	state *memState
}

func (r *memNotificationRepo) Create(_ context.Context, notification *domain.Notification) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	if r.state.failNotifications {
		return errors.New("notification insert failed")
	}
	r.state.notifications = append(r.state.notifications, *notification)
	return nil
}

func (r *memNotificationRepo) GetByID(_ context.Context, id string) (*domain.Notification, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	for _, n := range r.state.notifications {
		if n.ID == id {
			out := n
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memNotificationRepo) ListByAudience(_ context.Context, audiences []string, unreadOnly bool, _, _ int) ([]domain.Notification, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	allowed := make(map[string]bool, len(audiences))
	for _, a := range audiences {
		allowed[a] = true
	}
	if len(allowed) == 0 {
		allowed[domain.AudienceAll] = true
	}
	var out []domain.Notification
	for _, n := range r.state.notifications {
		if !allowed[n.Audience] {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *memNotificationRepo) MarkRead(_ context.Context, id string) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	for i := range r.state.notifications {
		if r.state.notifications[i].ID == id {
			r.state.notifications[i].Read = true
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memNotificationRepo) MarkAllRead(_ context.Context, audiences []string) (int64, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	allowed := make(map[string]bool, len(audiences))
	for _, a := range audiences {
		allowed[a] = true
	}
	var affected int64
	for i := range r.state.notifications {
		if allowed[r.state.notifications[i].Audience] && !r.state.notifications[i].Read {
			r.state.notifications[i].Read = true
			affected++
		}
	}
	return affected, nil
}

func (r *memNotificationRepo) CountUnread(_ context.Context, audiences []string) (int, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	allowed := make(map[string]bool, len(audiences))
	for _, a := range audiences {
		allowed[a] = true
	}
	count := 0
	for _, n := range r.state.notifications {
		if allowed[n.Audience] && !n.Read {
			count++
		}
	}
	return count, nil
}

type memSectorRepo struct {
	state *memState
}

func (r *memSectorRepo) Upsert(_ context.Context, assignment *repository.SectorAssignment) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	r.state.sectors[assignment.Sector] = *assignment
	return nil
}

func (r *memSectorRepo) Get(_ context.Context, sector string) (*repository.SectorAssignment, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	assignment, ok := r.state.sectors[sector]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &assignment, nil
}

func (r *memSectorRepo) List(_ context.Context) ([]repository.SectorAssignment, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	var out []repository.SectorAssignment
	for _, assignment := range r.state.sectors {
		out = append(out, assignment)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sector < out[j].Sector })
	return out, nil
}

type memGroupRepo struct {
	state *memState
}

func (r *memGroupRepo) Upsert(_ context.Context, assignment *repository.GroupAssignment) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	r.state.groups[assignment.Sector] = *assignment
	return nil
}

func (r *memGroupRepo) List(_ context.Context) ([]repository.GroupAssignment, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	var out []repository.GroupAssignment
	for _, assignment := range r.state.groups {
		out = append(out, assignment)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sector < out[j].Sector })
	return out, nil
}
