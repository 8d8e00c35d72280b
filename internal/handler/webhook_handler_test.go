package handler_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gymreach/outreach-backend/internal/handler"
	"github.com/gymreach/outreach-backend/internal/model"
	"github.com/gymreach/outreach-backend/internal/service"
)

func newWebhookHandler() (*handler.WebhookHandler, *stubMemberRepo, *stubMessageRepo) {
	members := &stubMemberRepo{members: make(map[string]*model.Member)}
	messages := &stubMessageRepo{}
	logger := zap.NewNop().Sugar()
	svc := &service.WebhookService{Members: members, Messages: messages, Logger: logger}
	return &handler.WebhookHandler{Service: svc, Logger: logger}, members, messages
}

func postForm(t *testing.T, h http.HandlerFunc, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestTwilioInboundStopOptsOut(t *testing.T) {
	h, members, messages := newWebhookHandler()

	rec := postForm(t, h.TwilioInbound, "/webhooks/twilio/inbound", url.Values{
		"From": {"+15550001111"},
		"Body": {"STOP"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "received"}`, rec.Body.String())
	assert.Equal(t, []string{"+15550001111"}, members.optedOut)
	require.Len(t, messages.webhooks, 1)
	assert.Equal(t, "inbound_sms", messages.webhooks[0].EventType)
}

func TestTwilioInboundRequiresFromAndBody(t *testing.T) {
	h, members, _ := newWebhookHandler()

	rec := postForm(t, h.TwilioInbound, "/webhooks/twilio/inbound", url.Values{
		"From": {"+15550001111"},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, members.optedOut)
}

func TestTwilioStatusRequiresSidAndStatus(t *testing.T) {
	h, _, messages := newWebhookHandler()

	rec := postForm(t, h.TwilioStatus, "/webhooks/twilio/status", url.Values{
		"MessageSid": {"SM123"},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, messages.webhooks)
}

func TestTwilioStatusRecordsCallback(t *testing.T) {
	h, _, messages := newWebhookHandler()

	rec := postForm(t, h.TwilioStatus, "/webhooks/twilio/status", url.Values{
		"MessageSid":    {"SM123"},
		"MessageStatus": {"delivered"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "updated"}`, rec.Body.String())
	require.Len(t, messages.webhooks, 1)
	assert.Equal(t, "status_callback", messages.webhooks[0].EventType)
}

func TestEmailEventsAcceptsSingleObject(t *testing.T) {
	h, _, messages := newWebhookHandler()

	body := `{"event": "open", "gym_id": "gym-1", "member_id": "m1"}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/email/events", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.EmailEvents(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "processed"}`, rec.Body.String())
	assert.Len(t, messages.webhooks, 1)
}

func TestEmailEventsAcceptsArray(t *testing.T) {
	h, _, messages := newWebhookHandler()

	body := `[{"event": "open"}, {"event": "bounce"}]`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/email/events", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.EmailEvents(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, messages.webhooks, 2)
}

func TestEmailEventsRejectsInvalidJSON(t *testing.T) {
	h, _, messages := newWebhookHandler()

	req := httptest.NewRequest(http.MethodPost, "/webhooks/email/events", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	h.EmailEvents(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, messages.webhooks)
}
