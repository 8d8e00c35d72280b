package handler_test

import (
	"context"
	"sync"
	"time"

	"github.com/gymreach/outreach-backend/internal/apperrors"
	"github.com/gymreach/outreach-backend/internal/model"
	"github.com/gymreach/outreach-backend/internal/repository"
	"github.com/gymreach/outreach-backend/internal/service"
)

// Minimal stubs for wiring concrete services under httptest. Only the
// methods the routed handlers reach are given behavior; the rest return
// zero values.

type stubCampaignRepo struct {
	campaigns map[string]*model.Campaign
	stats     map[string]int
	requeued  int64
}

func (r *stubCampaignRepo) Create(_ context.Context, c *model.Campaign) error { return nil }

func (r *stubCampaignRepo) GetByID(_ context.Context, id string) (*model.Campaign, error) {
	c, ok := r.campaigns[id]
	if !ok {
		return nil, apperrors.NewCampaignNotFound(id)
	}
	return c, nil
}

func (r *stubCampaignRepo) UpdateStatus(context.Context, string, string) error       { return nil }
func (r *stubCampaignRepo) CompleteWithTotal(context.Context, string, int) error     { return nil }
func (r *stubCampaignRepo) BulkInsertRecipients(context.Context, []model.CampaignRecipient) error {
	return nil
}
func (r *stubCampaignRepo) ClaimQueuedBatch(context.Context, string, int) ([]model.CampaignRecipient, error) {
	return nil, nil
}
func (r *stubCampaignRepo) UpdateRecipientStatus(context.Context, string, string) error { return nil }

func (r *stubCampaignRepo) RequeueStaleProcessing(context.Context, string) (int64, error) {
	return r.requeued, nil
}

func (r *stubCampaignRepo) Stats(context.Context, string) (map[string]int, error) {
	out := make(map[string]int, len(r.stats))
	for k, v := range r.stats {
		out[k] = v
	}
	return out, nil
}

var _ repository.CampaignRepositoryInterface = (*stubCampaignRepo)(nil)

type stubMemberRepo struct {
	mu       sync.Mutex
	members  map[string]*model.Member
	optedOut []string
}

func (r *stubMemberRepo) GetByID(_ context.Context, _, memberID string) (*model.Member, error) {
	return r.members[memberID], nil
}

func (r *stubMemberRepo) ListEligible(context.Context, string, float64, time.Time) ([]model.Member, error) {
	return nil, nil
}

func (r *stubMemberRepo) TouchLastContacted(context.Context, string, string, time.Time) error {
	return nil
}

func (r *stubMemberRepo) OptOutByPhone(_ context.Context, phone string, _ time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.optedOut = append(r.optedOut, phone)
	return 1, nil
}

var _ repository.MemberRepositoryInterface = (*stubMemberRepo)(nil)

type stubMessageRepo struct {
	mu          sync.Mutex
	deadLetters []model.DeadLetterMessage
	webhooks    []model.ProviderWebhookEvent
	lastLimit   int
}

func (r *stubMessageRepo) InsertSend(context.Context, *model.MessageSend) error { return nil }
func (r *stubMessageRepo) UpdateSendByProviderMessageID(context.Context, string, string, *string) error {
	return nil
}
func (r *stubMessageRepo) InsertDeadLetter(context.Context, *model.DeadLetterMessage) error {
	return nil
}

func (r *stubMessageRepo) ListDeadLetters(_ context.Context, gymID string, limit int) ([]model.DeadLetterMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLimit = limit
	var out []model.DeadLetterMessage
	for _, d := range r.deadLetters {
		if d.GymID == gymID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *stubMessageRepo) InsertWebhookEvent(_ context.Context, event *model.ProviderWebhookEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.webhooks = append(r.webhooks, *event)
	return nil
}

func (r *stubMessageRepo) InsertEngagementEvent(context.Context, *model.EngagementEvent) error {
	return nil
}
func (r *stubMessageRepo) InsertContactedLog(context.Context, *model.ContactedLog) error { return nil }

var _ repository.MessageRepositoryInterface = (*stubMessageRepo)(nil)

type stubAuditRepo struct{}

func (r *stubAuditRepo) Insert(context.Context, *model.AuditLog) error { return nil }

var _ repository.AuditRepositoryInterface = (*stubAuditRepo)(nil)

type stubScheduler struct {
	mu   sync.Mutex
	jobs []service.DispatchJob
}

func (s *stubScheduler) Schedule(job service.DispatchJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
	return nil
}

func (s *stubScheduler) jobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

var _ service.Scheduler = (*stubScheduler)(nil)
