package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/nomadshift/backend/internal/middleware"
	"github.com/nomadshift/backend/internal/models"
	"github.com/nomadshift/backend/internal/rewrite"
	"github.com/nomadshift/backend/internal/services"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newDecoder(t *testing.T) *services.Validator {
	t.Helper()
	v, err := services.NewValidator(context.Background())
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	return v
}

// request builds a request carrying an optional user, profile and path values.
func request(method, target, body string, user *models.User, profile *models.Profile, pathValues map[string]string) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := r.Context()
	if user != nil {
		ctx = middleware.WithUser(ctx, user)
	}
	if profile != nil {
		ctx = middleware.WithProfile(ctx, profile)
	}
	r = r.WithContext(ctx)
	for k, v := range pathValues {
		r.SetPathValue(k, v)
	}
	return r
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

// ---------------------------------------------------------------------------
// Stub services. Each records its last call and returns canned values.
// ---------------------------------------------------------------------------

type stubJobs struct {
	job       *models.Job
	jobs      []*models.Job
	app       *models.Application
	apps      []*models.Application
	accept    *services.AcceptResult
	err       error
	gotFilter models.JobFilter
	gotCreate services.CreateJobInput
	gotApply  services.ApplyInput
	gotCaller uuid.UUID
	gotJobID  uuid.UUID
	gotAppID  uuid.UUID
	gotOwner  *models.Profile
}

func (s *stubJobs) Create(_ context.Context, b *models.Profile, in services.CreateJobInput) (*models.Job, error) {
	s.gotOwner, s.gotCreate = b, in
	return s.job, s.err
}

func (s *stubJobs) Get(_ context.Context, id uuid.UUID) (*models.Job, error) {
	s.gotJobID = id
	return s.job, s.err
}

func (s *stubJobs) List(_ context.Context, f models.JobFilter) ([]*models.Job, error) {
	s.gotFilter = f
	return s.jobs, s.err
}

func (s *stubJobs) Apply(_ context.Context, w *models.Profile, id uuid.UUID, in services.ApplyInput) (*models.Application, error) {
	s.gotOwner, s.gotJobID, s.gotApply = w, id, in
	return s.app, s.err
}

func (s *stubJobs) ListApplications(_ context.Context, caller, id uuid.UUID) ([]*models.Application, error) {
	s.gotCaller, s.gotJobID = caller, id
	return s.apps, s.err
}

func (s *stubJobs) Accept(_ context.Context, caller, jobID, appID uuid.UUID) (*services.AcceptResult, error) {
	s.gotCaller, s.gotJobID, s.gotAppID = caller, jobID, appID
	return s.accept, s.err
}

func (s *stubJobs) Complete(_ context.Context, caller, id uuid.UUID) (*models.Job, error) {
	s.gotCaller, s.gotJobID = caller, id
	return s.job, s.err
}

func (s *stubJobs) Cancel(_ context.Context, caller, id uuid.UUID) (*models.Job, error) {
	s.gotCaller, s.gotJobID = caller, id
	return s.job, s.err
}

func (s *stubJobs) MyJobs(_ context.Context, p *models.Profile) ([]*models.Job, error) {
	s.gotOwner = p
	return s.jobs, s.err
}

type stubProfiles struct {
	user    *models.User
	profile *models.Profile
	err     error
	gotRole services.SetRoleInput
	gotWork services.WorkerOnboardingInput
	gotID   uuid.UUID
}

func (s *stubProfiles) SetRole(_ context.Context, id uuid.UUID, in services.SetRoleInput) (*models.User, error) {
	s.gotID, s.gotRole = id, in
	return s.user, s.err
}

func (s *stubProfiles) OnboardWorker(_ context.Context, id uuid.UUID, in services.WorkerOnboardingInput) (*models.Profile, error) {
	s.gotID, s.gotWork = id, in
	return s.profile, s.err
}

func (s *stubProfiles) OnboardBusiness(_ context.Context, id uuid.UUID, _ services.BusinessOnboardingInput) (*models.Profile, error) {
	s.gotID = id
	return s.profile, s.err
}

func (s *stubProfiles) Me(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	s.gotID = id
	return s.profile, s.err
}

func (s *stubProfiles) Get(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	s.gotID = id
	return s.profile, s.err
}

type stubReviews struct {
	review  *models.Review
	reviews []*models.Review
	err     error
	gotIn   services.SubmitReviewInput
}

func (s *stubReviews) Submit(_ context.Context, _, _ uuid.UUID, in services.SubmitReviewInput) (*models.Review, error) {
	s.gotIn = in
	return s.review, s.err
}

func (s *stubReviews) ListForUser(context.Context, uuid.UUID) ([]*models.Review, error) {
	return s.reviews, s.err
}

type stubChat struct {
	rooms []*models.ChatRoom
	msgs  []*models.ChatMessage
	msg   *models.ChatMessage
	err   error
	gotIn services.SendMessageInput
}

func (s *stubChat) ListRooms(context.Context, uuid.UUID) ([]*models.ChatRoom, error) {
	return s.rooms, s.err
}

func (s *stubChat) ListMessages(context.Context, uuid.UUID, uuid.UUID) ([]*models.ChatMessage, error) {
	return s.msgs, s.err
}

func (s *stubChat) Send(_ context.Context, _, _ uuid.UUID, in services.SendMessageInput) (*models.ChatMessage, error) {
	s.gotIn = in
	return s.msg, s.err
}

type stubRewriter struct {
	res *rewrite.Result
	err error
	got rewrite.Request
}

func (s *stubRewriter) Improve(_ context.Context, req rewrite.Request) (*rewrite.Result, error) {
	s.got = req
	return s.res, s.err
}
