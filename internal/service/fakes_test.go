package service_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gymreach/outreach-backend/internal/apperrors"
	"github.com/gymreach/outreach-backend/internal/model"
	"github.com/gymreach/outreach-backend/internal/provider"
	"github.com/gymreach/outreach-backend/internal/repository"
	"github.com/gymreach/outreach-backend/internal/service"
)

// ===== campaign repo fake =====

type fakeCampaignRepo struct {
	mu         sync.Mutex
	campaigns  map[string]*model.Campaign
	recipients []*model.CampaignRecipient

	claimErr      error
	statusHistory []string
}

func newFakeCampaignRepo() *fakeCampaignRepo {
	return &fakeCampaignRepo{campaigns: map[string]*model.Campaign{}}
}

func (f *fakeCampaignRepo) Create(_ context.Context, c *model.Campaign) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	cp := *c
	f.campaigns[c.ID] = &cp
	return nil
}

func (f *fakeCampaignRepo) GetByID(_ context.Context, id string) (*model.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.campaigns[id]
	if !ok {
		return nil, apperrors.NewCampaignNotFound(id)
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCampaignRepo) UpdateStatus(_ context.Context, campaignID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.campaigns[campaignID]; ok {
		c.Status = status
	}
	f.statusHistory = append(f.statusHistory, status)
	return nil
}

func (f *fakeCampaignRepo) CompleteWithTotal(_ context.Context, campaignID string, total int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.campaigns[campaignID]; ok {
		c.Status = model.CampaignStatusCompleted
		c.TotalRecipients = total
	}
	return nil
}

func (f *fakeCampaignRepo) BulkInsertRecipients(_ context.Context, recipients []model.CampaignRecipient) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range recipients {
		if recipients[i].ID == "" {
			recipients[i].ID = uuid.NewString()
		}
		cp := recipients[i]
		f.recipients = append(f.recipients, &cp)
	}
	return nil
}

func (f *fakeCampaignRepo) ClaimQueuedBatch(_ context.Context, campaignID string, limit int) ([]model.CampaignRecipient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.claimErr != nil {
		return nil, f.claimErr
	}
	batch := []model.CampaignRecipient{}
	for _, r := range f.recipients {
		if len(batch) == limit {
			break
		}
		if r.CampaignID == campaignID && r.Status == model.RecipientStatusQueued {
			r.Status = model.RecipientStatusProcessing
			batch = append(batch, *r)
		}
	}
	return batch, nil
}

func (f *fakeCampaignRepo) UpdateRecipientStatus(_ context.Context, recipientID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.recipients {
		if r.ID == recipientID {
			r.Status = status
			return nil
		}
	}
	return fmt.Errorf("recipient %s not found", recipientID)
}

func (f *fakeCampaignRepo) RequeueStaleProcessing(_ context.Context, campaignID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.recipients {
		if r.CampaignID == campaignID && r.Status == model.RecipientStatusProcessing {
			r.Status = model.RecipientStatusQueued
			n++
		}
	}
	return n, nil
}

func (f *fakeCampaignRepo) Stats(_ context.Context, campaignID string) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := map[string]int{}
	for _, r := range f.recipients {
		if r.CampaignID == campaignID {
			stats[r.Status]++
		}
	}
	return stats, nil
}

func (f *fakeCampaignRepo) recipientsByStatus(campaignID, status string) []*model.CampaignRecipient {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*model.CampaignRecipient{}
	for _, r := range f.recipients {
		if r.CampaignID == campaignID && r.Status == status {
			out = append(out, r)
		}
	}
	return out
}

var _ repository.CampaignRepositoryInterface = (*fakeCampaignRepo)(nil)

// ===== member repo fake =====

type fakeMemberRepo struct {
	mu      sync.Mutex
	members map[string]*model.Member

	getErr      map[string]error
	listErr     error
	optOutCalls []string
}

func newFakeMemberRepo(members ...*model.Member) *fakeMemberRepo {
	f := &fakeMemberRepo{members: map[string]*model.Member{}, getErr: map[string]error{}}
	for _, m := range members {
		f.members[m.MemberID] = m
	}
	return f
}

func (f *fakeMemberRepo) GetByID(_ context.Context, gymID, memberID string) (*model.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.getErr[memberID]; err != nil {
		return nil, err
	}
	m, ok := f.members[memberID]
	if !ok || m.GymID != gymID {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMemberRepo) ListEligible(_ context.Context, gymID string, threshold float64, contactedBefore time.Time) ([]model.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []model.Member{}
	for _, m := range f.members {
		if m.GymID != gymID || m.LastChurnScore < threshold {
			continue
		}
		if m.LastContactedAt != nil && !m.LastContactedAt.Before(contactedBefore) {
			continue
		}
		out = append(out, *m)
	}
	return out, nil
}

func (f *fakeMemberRepo) TouchLastContacted(_ context.Context, gymID, memberID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.members[memberID]; ok && m.GymID == gymID {
		t := at
		m.LastContactedAt = &t
	}
	return nil
}

func (f *fakeMemberRepo) OptOutByPhone(_ context.Context, phone string, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.optOutCalls = append(f.optOutCalls, phone)
	var n int64
	for _, m := range f.members {
		if m.Phone != nil && *m.Phone == phone {
			m.SMSOptedOut = true
			t := at
			m.SMSOptedOutAt = &t
			n++
		}
	}
	return n, nil
}

func (f *fakeMemberRepo) lastContacted(memberID string) *time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.members[memberID]; ok {
		return m.LastContactedAt
	}
	return nil
}

var _ repository.MemberRepositoryInterface = (*fakeMemberRepo)(nil)

// ===== message repo fake =====

type fakeMessageRepo struct {
	mu          sync.Mutex
	sends       []*model.MessageSend
	deadLetters []*model.DeadLetterMessage
	webhooks    []*model.ProviderWebhookEvent
	engagements []*model.EngagementEvent
	contacts    []*model.ContactedLog

	sendStatusUpdates map[string]string

	insertSendErr error
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{sendStatusUpdates: map[string]string{}}
}

func (f *fakeMessageRepo) InsertSend(_ context.Context, send *model.MessageSend) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertSendErr != nil {
		return f.insertSendErr
	}
	cp := *send
	f.sends = append(f.sends, &cp)
	return nil
}

func (f *fakeMessageRepo) UpdateSendByProviderMessageID(_ context.Context, providerMessageID, status string, _ *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendStatusUpdates[providerMessageID] = status
	return nil
}

func (f *fakeMessageRepo) InsertDeadLetter(_ context.Context, dlq *model.DeadLetterMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *dlq
	f.deadLetters = append(f.deadLetters, &cp)
	return nil
}

func (f *fakeMessageRepo) ListDeadLetters(_ context.Context, gymID string, limit int) ([]model.DeadLetterMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.DeadLetterMessage{}
	for _, d := range f.deadLetters {
		if len(out) == limit {
			break
		}
		if d.GymID == gymID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) InsertWebhookEvent(_ context.Context, event *model.ProviderWebhookEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *event
	f.webhooks = append(f.webhooks, &cp)
	return nil
}

func (f *fakeMessageRepo) InsertEngagementEvent(_ context.Context, event *model.EngagementEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *event
	f.engagements = append(f.engagements, &cp)
	return nil
}

func (f *fakeMessageRepo) InsertContactedLog(_ context.Context, entry *model.ContactedLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *entry
	f.contacts = append(f.contacts, &cp)
	return nil
}

func (f *fakeMessageRepo) sendsFor(memberID string) []*model.MessageSend {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*model.MessageSend{}
	for _, s := range f.sends {
		if s.MemberID == memberID {
			out = append(out, s)
		}
	}
	return out
}

var _ repository.MessageRepositoryInterface = (*fakeMessageRepo)(nil)

// ===== audit repo fake =====

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*model.AuditLog
}

func (f *fakeAuditRepo) Insert(_ context.Context, entry *model.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *entry
	f.entries = append(f.entries, &cp)
	return nil
}

var _ repository.AuditRepositoryInterface = (*fakeAuditRepo)(nil)

// ===== provider gateway fake =====

type fakeGateway struct {
	mu       sync.Mutex
	calls    []string
	sendFunc func(call int, to, body string) (*provider.SendResult, error)
}

func (f *fakeGateway) Name() string { return "mock" }

func (f *fakeGateway) SendSMS(_ context.Context, to, body string) (*provider.SendResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, to)
	call := len(f.calls)
	f.mu.Unlock()

	if f.sendFunc != nil {
		return f.sendFunc(call, to, body)
	}
	return &provider.SendResult{ProviderMessageID: fmt.Sprintf("sid-%d", call), Status: "sent"}, nil
}

func (f *fakeGateway) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

var _ provider.Gateway = (*fakeGateway)(nil)

// ===== scheduler fake =====

type fakeScheduler struct {
	mu   sync.Mutex
	jobs []service.DispatchJob
	err  error
}

func (f *fakeScheduler) Schedule(job service.DispatchJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

var _ service.Scheduler = (*fakeScheduler)(nil)
