package notify

import (
	"context"
	"fmt"

	"github.com/ignite/dealthread-monitor/internal/domain"
	"github.com/ignite/dealthread-monitor/internal/lifecycle"
	"github.com/ignite/dealthread-monitor/internal/pkg/logger"
)

// ActionType identifies one delivery action for an alert.
type ActionType string

const (
	ActionSendWebhook ActionType = "SEND_WEBHOOK"
	ActionSendEmail   ActionType = "SEND_EMAIL"
	ActionLogOnly     ActionType = "LOG_ONLY"
)

// ActionResult reports the outcome of one dispatched action. Unknown action
// types come back as a failed result, never a panic or a dropped alert.
type ActionResult struct {
	ActionType ActionType `json:"action_type"`
	Success    bool       `json:"success"`
	Error      string     `json:"error,omitempty"`
}

// Dispatcher routes alerts to their delivery transports. Transports left nil
// report failure for their action type instead of sending.
type Dispatcher struct {
	renderer *Renderer
	webhook  *WebhookSender
	email    *EmailSender
	log      *logger.Logger
}

// NewDispatcher wires a dispatcher; webhook and email may each be nil when
// that transport is not configured.
func NewDispatcher(renderer *Renderer, webhook *WebhookSender, email *EmailSender) *Dispatcher {
	if renderer == nil {
		renderer = NewRenderer()
	}
	return &Dispatcher{
		renderer: renderer,
		webhook:  webhook,
		email:    email,
		log:      logger.Component("notify"),
	}
}

// Dispatch runs every action for one alert and returns per-action results.
func (d *Dispatcher) Dispatch(ctx context.Context, deal domain.Deal, snap domain.ScoreSnapshot, alert lifecycle.Alert, actions []ActionType) []ActionResult {
	bindings := alertBindings(deal, snap, alert)

	results := make([]ActionResult, 0, len(actions))
	for _, action := range actions {
		var err error
		switch action {
		case ActionSendWebhook:
			err = d.sendWebhook(ctx, bindings)
		case ActionSendEmail:
			err = d.sendEmail(ctx, bindings)
		case ActionLogOnly:
			d.log.Info("alert", "type", string(alert.Type), "deal_id", deal.ID, "message", alert.Message)
		default:
			err = fmt.Errorf("unknown action type: %s", action)
		}

		result := ActionResult{ActionType: action, Success: err == nil}
		if err != nil {
			result.Error = err.Error()
			d.log.Warn("alert action failed", "action", string(action), "deal_id", deal.ID, "error", err.Error())
		}
		results = append(results, result)
	}
	return results
}

func (d *Dispatcher) sendWebhook(ctx context.Context, bindings map[string]interface{}) error {
	if d.webhook == nil {
		return fmt.Errorf("webhook transport not configured")
	}
	text, err := d.renderer.Render(webhookTemplate, bindings)
	if err != nil {
		return err
	}
	return d.webhook.Send(ctx, text)
}

func (d *Dispatcher) sendEmail(ctx context.Context, bindings map[string]interface{}) error {
	if d.email == nil {
		return fmt.Errorf("email transport not configured")
	}
	subject, err := d.renderer.Render(emailSubjectTemplate, bindings)
	if err != nil {
		return err
	}
	body, err := d.renderer.Render(emailBodyTemplate, bindings)
	if err != nil {
		return err
	}
	return d.email.Send(ctx, subject, body)
}

// ActionsFor picks the delivery actions for an alert by severity: HIGH
// severity adds email on top of the webhook ping.
func (d *Dispatcher) ActionsFor(alert lifecycle.Alert) []ActionType {
	actions := []ActionType{ActionSendWebhook}
	if alert.Severity == domain.PriorityHigh && d.email != nil {
		actions = append(actions, ActionSendEmail)
	}
	return actions
}
