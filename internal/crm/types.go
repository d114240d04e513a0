package crm

import (
	"strconv"
	"strings"
	"time"

	"github.com/ignite/dealthread-monitor/internal/domain"
)

// Property names requested from the CRM. Values arrive as strings in the
// properties map regardless of their underlying type.
var dealProperties = []string{
	"dealname",
	"dealstage",
	"amount",
	"hs_v2_date_entered_current_stage",
}

var contactProperties = []string{
	"firstname",
	"lastname",
	"email",
	"jobtitle",
	"hs_buying_role",
	"num_emails",
	"num_meetings",
	"num_calls",
	"num_engagements",
	"hs_last_sales_activity_timestamp",
	"hs_first_engagement_date",
	"notes_summary",
}

// object is one CRM record: an id plus a string-valued properties bag.
type object struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
}

// listResponse is a paged object listing.
type listResponse struct {
	Results []object `json:"results"`
	Paging  *paging  `json:"paging,omitempty"`
}

type paging struct {
	Next *pagingNext `json:"next,omitempty"`
}

type pagingNext struct {
	After string `json:"after"`
}

// batchReadRequest asks for a set of objects by id.
type batchReadRequest struct {
	Properties []string   `json:"properties"`
	Inputs     []batchRef `json:"inputs"`
}

type batchRef struct {
	ID string `json:"id"`
}

// associationsResponse lists the contact ids associated with a deal.
type associationsResponse struct {
	Results []associationResult `json:"results"`
}

type associationResult struct {
	ToObjectID int64 `json:"toObjectId"`
}

// placeholderValues are CRM exports of "not set". They are treated exactly
// like an absent property.
var placeholderValues = map[string]bool{
	"":        true,
	"none":    true,
	"unknown": true,
	"n/a":     true,
}

// cleanProperty normalizes a raw property value, mapping placeholders to "".
func cleanProperty(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if placeholderValues[strings.ToLower(trimmed)] {
		return ""
	}
	return trimmed
}

func (o object) prop(name string) string {
	return cleanProperty(o.Properties[name])
}

func (o object) intProp(name string) int {
	v, err := strconv.Atoi(o.prop(name))
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func (o object) timeProp(name string) *time.Time {
	raw := o.prop(name)
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &t
}

// toDeal maps a deal object onto the domain type.
func (o object) toDeal() domain.Deal {
	amount, _ := strconv.ParseFloat(o.prop("amount"), 64)
	return domain.Deal{
		ID:             o.ID,
		Name:           o.prop("dealname"),
		Stage:          strings.ToLower(o.prop("dealstage")),
		Amount:         amount,
		StageEnteredAt: o.timeProp("hs_v2_date_entered_current_stage"),
	}
}

// toContact maps a contact object onto the domain type. The explicit buying
// role is passed through raw (minus placeholders); inference normalizes it.
func (o object) toContact() domain.Contact {
	name := strings.TrimSpace(o.prop("firstname") + " " + o.prop("lastname"))
	return domain.Contact{
		ID:           o.ID,
		Name:         name,
		Email:        o.prop("email"),
		Title:        o.prop("jobtitle"),
		ExplicitRole: o.prop("hs_buying_role"),
		Engagement: domain.EngagementCounter{
			Emails:   o.intProp("num_emails"),
			Meetings: o.intProp("num_meetings"),
			Calls:    o.intProp("num_calls"),
			Total:    o.intProp("num_engagements"),
		},
		LastEngagedAt:  o.timeProp("hs_last_sales_activity_timestamp"),
		FirstEngagedAt: o.timeProp("hs_first_engagement_date"),
		Notes:          o.prop("notes_summary"),
	}
}
