// Package notify renders and delivers lifecycle alerts: a chat webhook for
// immediate pings and SES email for the fuller report. Message bodies are
// Liquid templates so the wording can change without a rebuild.
package notify

import (
	"fmt"
	"strings"
	"sync"

	"github.com/osteele/liquid"

	"github.com/ignite/dealthread-monitor/internal/domain"
	"github.com/ignite/dealthread-monitor/internal/lifecycle"
)

const webhookTemplate = `:rotating_light: *{{ alert_type }}* on deal *{{ deal_name | default: deal_id }}*
{{ message }}
_Next step: {{ recommendation }}_`

const emailSubjectTemplate = `[{{ severity }}] {{ alert_type }} — {{ deal_name | default: deal_id }}`

const emailBodyTemplate = `<h2>{{ alert_type }}</h2>
<p><strong>Deal:</strong> {{ deal_name | default: deal_id }} ({{ deal_stage }})</p>
<p>{{ message }}</p>
<p><strong>Recommended next step:</strong> {{ recommendation }}</p>
<hr>
<p style="color:#888">Overall thread score: {{ overall }} · Risk: {{ risk }}</p>`

// Renderer renders alert templates with parsed-template caching.
type Renderer struct {
	engine *liquid.Engine
	cache  sync.Map // map[string]*liquid.Template
}

// NewRenderer creates a Renderer with the default filter set.
func NewRenderer() *Renderer {
	engine := liquid.NewEngine()

	// Default value filter: {{ deal_name | default: deal_id }}
	engine.RegisterFilter("default", func(value interface{}, defaultVal interface{}) interface{} {
		if value == nil {
			return defaultVal
		}
		if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
			return defaultVal
		}
		return value
	})

	return &Renderer{engine: engine}
}

// Render renders a template source against bindings.
func (r *Renderer) Render(source string, bindings map[string]interface{}) (string, error) {
	var tpl *liquid.Template
	if cached, ok := r.cache.Load(source); ok {
		tpl = cached.(*liquid.Template)
	} else {
		parsed, err := r.engine.ParseString(source)
		if err != nil {
			return "", fmt.Errorf("parse template: %w", err)
		}
		r.cache.Store(source, parsed)
		tpl = parsed
	}

	out, err := tpl.RenderString(bindings)
	if err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return out, nil
}

// alertBindings builds the template variable set for one alert.
func alertBindings(deal domain.Deal, snap domain.ScoreSnapshot, alert lifecycle.Alert) map[string]interface{} {
	return map[string]interface{}{
		"alert_type":     string(alert.Type),
		"severity":       string(alert.Severity),
		"deal_id":        deal.ID,
		"deal_name":      deal.Name,
		"deal_stage":     deal.Stage,
		"message":        alert.Message,
		"recommendation": alert.Recommendation,
		"overall":        snap.Overall,
		"risk":           string(snap.RiskLevel),
	}
}
