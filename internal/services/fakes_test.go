package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nomadshift/backend/internal/models"
	"github.com/nomadshift/backend/internal/repository"
)

// ---------------------------------------------------------------------------
// noopTx satisfies pgx.Tx; the fakes below ignore it and apply writes directly.
// ---------------------------------------------------------------------------

type noopTx struct{ pool *fakePool }

func (t noopTx) Begin(context.Context) (pgx.Tx, error) { return t, nil }
func (t noopTx) Commit(context.Context) error {
	if t.pool != nil {
		t.pool.mu.Lock()
		t.pool.commits++
		t.pool.mu.Unlock()
	}
	return nil
}
func (noopTx) Rollback(context.Context) error { return nil }
func (noopTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (noopTx) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (noopTx) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }
func (noopTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (noopTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (noopTx) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }
func (noopTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (noopTx) Conn() *pgx.Conn { return nil }

// fakePool hands out noopTx and counts commits.
type fakePool struct {
	mu      sync.Mutex
	commits int
}

func (p *fakePool) Begin(context.Context) (pgx.Tx, error) { return noopTx{pool: p}, nil }

func (p *fakePool) committed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.commits
}

// ---------------------------------------------------------------------------
// memStore is one in-memory database backing every store interface. It
// reproduces the production contracts that matter to the services: unique
// (job, worker) and (job, reviewer) pairs, guarded status updates, and
// ErrNotFound on misses.
// ---------------------------------------------------------------------------

type memStore struct {
	mu       sync.Mutex
	jobs     map[uuid.UUID]*models.Job
	apps     map[uuid.UUID]*models.Application
	profiles map[uuid.UUID]*models.Profile
	reviews  []*models.Review
	rooms    map[uuid.UUID]*models.ChatRoom
	messages []*models.ChatMessage
	users    map[uuid.UUID]*models.User
}

func newMemStore() *memStore {
	return &memStore{
		jobs:     make(map[uuid.UUID]*models.Job),
		apps:     make(map[uuid.UUID]*models.Application),
		profiles: make(map[uuid.UUID]*models.Profile),
		rooms:    make(map[uuid.UUID]*models.ChatRoom),
		users:    make(map[uuid.UUID]*models.User),
	}
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func copyJob(j *models.Job) *models.Job {
	cp := *j
	cp.SkillsRequired = append([]string(nil), j.SkillsRequired...)
	return &cp
}

func copyProfile(p *models.Profile) *models.Profile {
	cp := *p
	cp.Skills = append([]string(nil), p.Skills...)
	cp.Badges = append([]string(nil), p.Badges...)
	return &cp
}

// --- jobs ---

type memJobs struct{ *memStore }

func (m memJobs) Create(_ context.Context, j *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[j.ID] = copyJob(j)
	return nil
}

func (m memJobs) GetByID(_ context.Context, id uuid.UUID) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyJob(j), nil
}

func (m memJobs) GetByIDForUpdate(ctx context.Context, _ pgx.Tx, id uuid.UUID) (*models.Job, error) {
	return m.GetByID(ctx, id)
}

func (m memJobs) List(_ context.Context, category string, status models.JobStatus, limit int) ([]*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Job
	for _, j := range m.jobs {
		if j.Status != status || (category != "" && j.Category != category) {
			continue
		}
		out = append(out, copyJob(j))
	}
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m memJobs) ListByBusiness(_ context.Context, businessID uuid.UUID, limit int) ([]*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Job{}
	for _, j := range m.jobs {
		if j.BusinessID == businessID {
			out = append(out, copyJob(j))
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m memJobs) ListByIDs(_ context.Context, ids []uuid.UUID) ([]*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Job{}
	for _, id := range ids {
		if j, ok := m.jobs[id]; ok {
			out = append(out, copyJob(j))
		}
	}
	return out, nil
}

func (m memJobs) transition(id uuid.UUID, from, to models.JobStatus, apply func(*models.Job)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok || j.Status != from {
		return repository.ErrStateChanged
	}
	j.Status = to
	if apply != nil {
		apply(j)
	}
	return nil
}

func (m memJobs) MarkInProgress(_ context.Context, _ pgx.Tx, jobID, workerID uuid.UUID, start time.Time) error {
	return m.transition(jobID, models.JobStatusOpen, models.JobStatusInProgress, func(j *models.Job) {
		j.AssignedWorkerID = &workerID
		j.StartTime = &start
	})
}

func (m memJobs) MarkCompleted(_ context.Context, _ pgx.Tx, jobID uuid.UUID, end time.Time) error {
	return m.transition(jobID, models.JobStatusInProgress, models.JobStatusCompleted, func(j *models.Job) {
		j.EndTime = &end
	})
}

func (m memJobs) MarkCancelled(_ context.Context, _ pgx.Tx, jobID uuid.UUID) error {
	return m.transition(jobID, models.JobStatusOpen, models.JobStatusCancelled, nil)
}

// --- applications ---

type memApps struct{ *memStore }

func (m memApps) Create(_ context.Context, a *models.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ex := range m.apps {
		if ex.JobID == a.JobID && ex.WorkerID == a.WorkerID {
			return repository.ErrDuplicate
		}
	}
	cp := *a
	m.apps[a.ID] = &cp
	return nil
}

func (m memApps) GetByID(_ context.Context, id uuid.UUID) (*models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.apps[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m memApps) GetByJobAndWorker(_ context.Context, jobID, workerID uuid.UUID) (*models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.apps {
		if a.JobID == jobID && a.WorkerID == workerID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m memApps) ListByJob(_ context.Context, jobID uuid.UUID) ([]*models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Application{}
	for _, a := range m.apps {
		if a.JobID == jobID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.Before(out[k].CreatedAt) })
	return out, nil
}

func (m memApps) ListByWorker(_ context.Context, workerID uuid.UUID, limit int) ([]*models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Application{}
	for _, a := range m.apps {
		if a.WorkerID == workerID {
			cp := *a
			out = append(out, &cp)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m memApps) Accept(_ context.Context, _ pgx.Tx, jobID, applicationID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.apps {
		if a.JobID != jobID {
			continue
		}
		if a.ID == applicationID {
			a.Status = models.ApplicationAccepted
		} else {
			a.Status = models.ApplicationRejected
		}
	}
	return nil
}

func (m *memStore) application(id uuid.UUID) *models.Application {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *m.apps[id]
	return &cp
}

// --- profiles ---

type memProfiles struct{ *memStore }

func (m memProfiles) GetByUserID(_ context.Context, userID uuid.UUID) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyProfile(p), nil
}

func (m memProfiles) GetByUserIDForUpdate(ctx context.Context, _ pgx.Tx, userID uuid.UUID) (*models.Profile, error) {
	return m.GetByUserID(ctx, userID)
}

func (m memProfiles) ListByUserIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[uuid.UUID]*models.Profile)
	for _, id := range ids {
		if p, ok := m.profiles[id]; ok {
			out[id] = copyProfile(p)
		}
	}
	return out, nil
}

func (m memProfiles) Upsert(_ context.Context, _ pgx.Tx, p *models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ex, ok := m.profiles[p.UserID]; ok {
		p.PrestigeScore = ex.PrestigeScore
		p.Badges = append([]string(nil), ex.Badges...)
		p.CompletedJobs = ex.CompletedJobs
		p.Rating = ex.Rating
		p.RatingCount = ex.RatingCount
		p.CreatedAt = ex.CreatedAt
	}
	m.profiles[p.UserID] = copyProfile(p)
	return nil
}

func (m memProfiles) RecordCompletion(_ context.Context, _ pgx.Tx, userID uuid.UUID, prestige int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.profiles[userID]; ok {
		p.CompletedJobs++
		p.PrestigeScore += prestige
	}
	return nil
}

func (m memProfiles) UpdateTrust(_ context.Context, _ pgx.Tx, userID uuid.UUID, rating float64, count int, badges []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return repository.ErrNotFound
	}
	p.Rating, p.RatingCount, p.Badges = rating, count, append([]string(nil), badges...)
	return nil
}

func (m *memStore) profile(id uuid.UUID) *models.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyProfile(m.profiles[id])
}

// --- reviews ---

type memReviews struct{ *memStore }

func (m memReviews) Create(_ context.Context, _ pgx.Tx, rv *models.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ex := range m.reviews {
		if ex.JobID == rv.JobID && ex.ReviewerID == rv.ReviewerID {
			return repository.ErrDuplicate
		}
	}
	cp := *rv
	m.reviews = append(m.reviews, &cp)
	return nil
}

func (m memReviews) GetByJobAndReviewer(_ context.Context, jobID, reviewerID uuid.UUID) (*models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rv := range m.reviews {
		if rv.JobID == jobID && rv.ReviewerID == reviewerID {
			cp := *rv
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m memReviews) RatingsFor(_ context.Context, _ pgx.Tx, userID uuid.UUID) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []int
	for _, rv := range m.reviews {
		if rv.ReviewedID == userID {
			out = append(out, rv.Rating)
		}
	}
	return out, nil
}

func (m memReviews) ListForUser(_ context.Context, userID uuid.UUID, limit int) ([]*models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Review{}
	for i := len(m.reviews) - 1; i >= 0 && len(out) < limit; i-- {
		if m.reviews[i].ReviewedID == userID {
			cp := *m.reviews[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

// --- chat ---

type memChat struct{ *memStore }

func (m memChat) CreateRoom(_ context.Context, _ pgx.Tx, rm *models.ChatRoom) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rm
	m.rooms[rm.ID] = &cp
	return nil
}

func (m memChat) GetRoom(_ context.Context, id uuid.UUID) (*models.ChatRoom, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rm, ok := m.rooms[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *rm
	return &cp, nil
}

func (m memChat) ListRoomsForUser(_ context.Context, userID uuid.UUID, limit int) ([]*models.ChatRoom, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.ChatRoom{}
	for _, rm := range m.rooms {
		if rm.HasParticipant(userID) {
			cp := *rm
			out = append(out, &cp)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m memChat) ListMessages(_ context.Context, roomID uuid.UUID, limit int) ([]*models.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.ChatMessage{}
	for _, msg := range m.messages {
		if msg.RoomID == roomID && len(out) < limit {
			cp := *msg
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m memChat) MarkRead(_ context.Context, roomID, readerID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, msg := range m.messages {
		if msg.RoomID == roomID && msg.SenderID != readerID && !msg.Read {
			msg.Read = true
			n++
		}
	}
	return n, nil
}

func (m memChat) AddMessage(_ context.Context, msg *models.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rm, ok := m.rooms[msg.RoomID]
	if !ok {
		return repository.ErrNotFound
	}
	cp := *msg
	m.messages = append(m.messages, &cp)
	rm.LastMessage = models.Preview(msg.Content)
	t := msg.CreatedAt
	rm.LastMessageTime = &t
	return nil
}

// --- users ---

type memUsers struct{ *memStore }

func (m memUsers) SetRole(_ context.Context, userID uuid.UUID, role models.Role) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	r := role
	u.Role = &r
	cp := *u
	return &cp, nil
}

func (m memUsers) CompleteProfile(_ context.Context, _ pgx.Tx, userID uuid.UUID, role models.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	r := role
	u.Role = &r
	u.ProfileCompleted = true
	return nil
}

// ---------------------------------------------------------------------------
// fixtures
// ---------------------------------------------------------------------------

// clock returns a time source that advances one second per call.
func clock(start time.Time) func() time.Time {
	var mu sync.Mutex
	t := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func (m *memStore) addProfile(role models.Role, name string, skills ...string) *models.Profile {
	p := &models.Profile{UserID: uuid.New(), Role: role, Name: name, Skills: skills, Badges: []string{}}
	if role == models.RoleWorker {
		p.Badges = []string{models.BadgeNewcomer}
	}
	m.mu.Lock()
	m.profiles[p.UserID] = copyProfile(p)
	m.users[p.UserID] = &models.User{ID: p.UserID, Name: name}
	m.mu.Unlock()
	return p
}

func (m *memStore) addJob(business *models.Profile, status models.JobStatus, loc models.Location, skills ...string) *models.Job {
	j := &models.Job{
		ID:             uuid.New(),
		BusinessID:     business.UserID,
		BusinessName:   business.DisplayBusinessName(),
		Title:          "Shift",
		Category:       "food_service",
		SkillsRequired: skills,
		Location:       loc,
		Status:         status,
		CreatedAt:      epoch,
	}
	m.mu.Lock()
	m.jobs[j.ID] = copyJob(j)
	m.mu.Unlock()
	return j
}

func newTestJobService(m *memStore, pool *fakePool) *JobService {
	s := NewJobService(pool, memJobs{m}, memApps{m}, memProfiles{m}, memChat{m}, quietLogger())
	s.now = clock(epoch)
	return s
}
