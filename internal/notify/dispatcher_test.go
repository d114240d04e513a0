package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/dealthread-monitor/internal/domain"
	"github.com/ignite/dealthread-monitor/internal/lifecycle"
)

func testDeal() domain.Deal {
	return domain.Deal{ID: "42", Name: "Acme renewal", Stage: domain.StageContractSent}
}

func testSnapshot() domain.ScoreSnapshot {
	return domain.ScoreSnapshot{Overall: 55, RiskLevel: domain.RiskMedium}
}

func testAlert() lifecycle.Alert {
	return lifecycle.Alert{
		Type:           lifecycle.AlertChampionCooling,
		Severity:       domain.PriorityHigh,
		DealID:         "42",
		Message:        "Champion Dana is cooling off: engagement fell 30 points.",
		Recommendation: "Reach out directly and re-confirm the champion's commitment.",
	}
}

func TestRenderer_WebhookTemplate(t *testing.T) {
	r := NewRenderer()
	out, err := r.Render(webhookTemplate, alertBindings(testDeal(), testSnapshot(), testAlert()))
	require.NoError(t, err)

	assert.Contains(t, out, "CHAMPION_COOLING")
	assert.Contains(t, out, "Acme renewal")
	assert.Contains(t, out, "cooling off")
	assert.Contains(t, out, "re-confirm the champion")
}

func TestRenderer_DefaultFilterFallsBackToDealID(t *testing.T) {
	r := NewRenderer()
	deal := testDeal()
	deal.Name = ""
	out, err := r.Render(webhookTemplate, alertBindings(deal, testSnapshot(), testAlert()))
	require.NoError(t, err)
	assert.Contains(t, out, "*42*")
}

func TestRenderer_EmailTemplates(t *testing.T) {
	r := NewRenderer()
	bindings := alertBindings(testDeal(), testSnapshot(), testAlert())

	subject, err := r.Render(emailSubjectTemplate, bindings)
	require.NoError(t, err)
	assert.Equal(t, "[HIGH] CHAMPION_COOLING — Acme renewal", subject)

	body, err := r.Render(emailBodyTemplate, bindings)
	require.NoError(t, err)
	assert.Contains(t, body, "contractsent")
	assert.Contains(t, body, "Overall thread score: 55")
	assert.Contains(t, body, "Risk: MEDIUM")
}

func TestWebhookSender_Send(t *testing.T) {
	var got webhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewWebhookSender(server.URL, 5*time.Second)
	err := sender.Send(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Text)
}

func TestWebhookSender_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("invalid token"))
	}))
	defer server.Close()

	sender := NewWebhookSender(server.URL, 5*time.Second)
	err := sender.Send(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestDispatcher_WebhookAction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := NewDispatcher(nil, NewWebhookSender(server.URL, 5*time.Second), nil)
	results := d.Dispatch(context.Background(), testDeal(), testSnapshot(), testAlert(),
		[]ActionType{ActionSendWebhook})

	require.Len(t, results, 1)
	assert.Equal(t, ActionSendWebhook, results[0].ActionType)
	assert.True(t, results[0].Success)
}

func TestDispatcher_UnknownActionReturnsFailedResult(t *testing.T) {
	d := NewDispatcher(nil, nil, nil)
	results := d.Dispatch(context.Background(), testDeal(), testSnapshot(), testAlert(),
		[]ActionType{ActionLogOnly, ActionType("PAGE_THE_CEO")})

	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.Equal(t, ActionType("PAGE_THE_CEO"), results[1].ActionType)
	assert.Contains(t, results[1].Error, "unknown action type")
}

func TestDispatcher_MissingTransportFails(t *testing.T) {
	d := NewDispatcher(nil, nil, nil)
	results := d.Dispatch(context.Background(), testDeal(), testSnapshot(), testAlert(),
		[]ActionType{ActionSendWebhook, ActionSendEmail})

	require.Len(t, results, 2)
	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].Error, "webhook transport not configured")
	assert.False(t, results[1].Success)
	assert.Contains(t, results[1].Error, "email transport not configured")
}

func TestDispatcher_ActionsForSeverity(t *testing.T) {
	withEmail := NewDispatcher(nil, nil, &EmailSender{})
	high := testAlert()
	assert.Equal(t, []ActionType{ActionSendWebhook, ActionSendEmail}, withEmail.ActionsFor(high))

	low := testAlert()
	low.Severity = domain.PriorityLow
	assert.Equal(t, []ActionType{ActionSendWebhook}, withEmail.ActionsFor(low))

	noEmail := NewDispatcher(nil, nil, nil)
	assert.Equal(t, []ActionType{ActionSendWebhook}, noEmail.ActionsFor(high))
}
