package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/mail"
	"time"

	"outreach/entity"
	"outreach/pkg/goutil"
)

const maxSourceLen = 255

// LeadPayload is the wire shape behind type=lead.
type LeadPayload struct {
	ID          *string                `json:"id"`
	Status      *string                `json:"status"`
	LeadType    *string                `json:"type"`
	Temperature *string                `json:"temperature"`
	Source      *string                `json:"source"`
	Email       *string                `json:"email"`
	Name        *string                `json:"name"`
	Company     *string                `json:"company"`
	Metadata    map[string]interface{} `json:"metadata"`
}

func (p *LeadPayload) ToLead() *entity.Lead {
	status := entity.LeadStatusUnprocessed
	if p.Status != nil {
		status = entity.SupportedLeadStatuses[*p.Status]
	}

	lead := &entity.Lead{
		LeadID:   p.ID,
		Status:   status,
		Source:   p.Source,
		Email:    p.Email,
		Name:     p.Name,
		Company:  p.Company,
		Metadata: p.Metadata,
	}
	if p.LeadType != nil {
		lead.Type = entity.SupportedLeadTypes[*p.LeadType]
	}
	if p.Temperature != nil {
		lead.Temperature = entity.SupportedLeadTemperatures[*p.Temperature]
	}
	return lead
}

// CampaignPayload is the wire shape behind type=campaign. Counters use
// float64 so a non-integer value fails semantically rather than structurally.
type CampaignPayload struct {
	ID              *string  `json:"id"`
	Name            *string  `json:"name"`
	Status          *string  `json:"status"`
	StartedAt       *string  `json:"startedAt"`
	EndedAt         *string  `json:"endedAt"`
	EmailsSent      *float64 `json:"emailsSent"`
	OpensDetected   *float64 `json:"opensDetected"`
	RepliesReceived *float64 `json:"repliesReceived"`
}

func (p *CampaignPayload) ToCampaign() *entity.Campaign {
	status := entity.CampaignStatusActive
	if p.Status != nil {
		status = entity.SupportedCampaignStatuses[*p.Status]
	}

	campaign := &entity.Campaign{
		CampaignID:        p.ID,
		Name:              p.Name,
		Status:            status,
		EmailsSent:        counterValue(p.EmailsSent),
		OpensDetected:     counterValue(p.OpensDetected),
		RepliesReceived:   counterValue(p.RepliesReceived),
		FollowUpsSent:     goutil.Uint64(0),
		LastFollowUpsSent: goutil.Uint64(0),
	}
	if p.StartedAt != nil {
		if t, err := time.Parse(time.RFC3339, *p.StartedAt); err == nil {
			campaign.StartTime = goutil.Uint64(uint64(t.Unix()))
		}
	}
	if p.EndedAt != nil {
		if t, err := time.Parse(time.RFC3339, *p.EndedAt); err == nil {
			campaign.EndTime = goutil.Uint64(uint64(t.Unix()))
		}
	}
	return campaign
}

func counterValue(f *float64) *uint64 {
	if f == nil {
		return goutil.Uint64(0)
	}
	return goutil.Uint64(uint64(*f))
}

// EngagementPayload is the wire shape behind type=engagement. timestamp is a
// legacy alias of occurredAt; one of the two is required, occurredAt wins
// when both are present.
type EngagementPayload struct {
	CampaignID *string                `json:"campaignId"`
	LeadID     *string                `json:"leadId"`
	EventType  *string                `json:"eventType"`
	OccurredAt *string                `json:"occurredAt"`
	Timestamp  *string                `json:"timestamp"`
	Metadata   map[string]interface{} `json:"metadata"`
}

func (p *EngagementPayload) ToEngagement() *entity.Engagement {
	engagement := &entity.Engagement{
		CampaignID: p.CampaignID,
		LeadID:     p.LeadID,
		Metadata:   p.Metadata,
	}
	if p.EventType != nil {
		engagement.EventType = entity.SupportedEventTypes[*p.EventType]
	}

	occurredAt := p.OccurredAt
	if occurredAt == nil {
		occurredAt = p.Timestamp
	}
	if occurredAt != nil {
		if t, err := time.Parse(time.RFC3339, *occurredAt); err == nil {
			engagement.EventTime = goutil.Uint64(uint64(t.Unix()))
		}
	}
	return engagement
}

// ParsePayload dispatches on the type discriminator and validates the data
// object against the matching schema. Every failing field is reported.
func ParsePayload(req *IngestRequest) (interface{}, []entity.FieldError) {
	var errs []entity.FieldError

	if req.GetType() == "" {
		errs = append(errs, fieldErr("type", "type is required", "REQUIRED"))
	} else if !goutil.ContainsStr(entity.SupportedEntityTypes, req.GetType()) {
		errs = append(errs, fieldErr("type", fmt.Sprintf("type must be one of %v", entity.SupportedEntityTypes), "UNKNOWN_TYPE"))
	}

	if len(req.Data) == 0 || string(req.Data) == "null" {
		errs = append(errs, fieldErr("data", "data is required", "REQUIRED"))
	}

	if len(errs) > 0 {
		return nil, errs
	}

	switch req.GetType() {
	case entity.EntityTypeLead:
		return validateLead(req.Data)
	case entity.EntityTypeCampaign:
		return validateCampaign(req.Data)
	default:
		return validateEngagement(req.Data)
	}
}

func validateLead(data json.RawMessage) (*LeadPayload, []entity.FieldError) {
	p := new(LeadPayload)

	errs, bad := unmarshalData(data, p)
	if bad == nil {
		return nil, errs
	}

	if p.LeadType == nil {
		if !bad["type"] {
			errs = append(errs, fieldErr("data.type", "lead type is required", "REQUIRED"))
		}
	} else if _, ok := entity.SupportedLeadTypes[*p.LeadType]; !ok {
		errs = append(errs, fieldErr("data.type", "lead type must be one of Brand, Apollo, Cold, Warm", "INVALID_ENUM"))
	}

	if p.Temperature == nil {
		if !bad["temperature"] {
			errs = append(errs, fieldErr("data.temperature", "temperature is required", "REQUIRED"))
		}
	} else if _, ok := entity.SupportedLeadTemperatures[*p.Temperature]; !ok {
		errs = append(errs, fieldErr("data.temperature", "temperature must be one of Hot, Warm, Cold", "INVALID_ENUM"))
	}

	if p.Source == nil || *p.Source == "" {
		if !bad["source"] {
			errs = append(errs, fieldErr("data.source", "source is required", "REQUIRED"))
		}
	} else if len(*p.Source) > maxSourceLen {
		errs = append(errs, fieldErr("data.source", fmt.Sprintf("source must be at most %d characters", maxSourceLen), "TOO_LONG"))
	}

	if p.Status != nil {
		if _, ok := entity.SupportedLeadStatuses[*p.Status]; !ok {
			errs = append(errs, fieldErr("data.status", "status must be one of Processed, Unprocessed", "INVALID_ENUM"))
		}
	}

	if p.Email != nil && *p.Email != "" {
		if _, err := mail.ParseAddress(*p.Email); err != nil {
			errs = append(errs, fieldErr("data.email", "email is not a valid address", "INVALID_EMAIL"))
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return p, nil
}

func validateCampaign(data json.RawMessage) (*CampaignPayload, []entity.FieldError) {
	p := new(CampaignPayload)

	errs, bad := unmarshalData(data, p)
	if bad == nil {
		return nil, errs
	}

	if p.Name == nil || *p.Name == "" {
		if !bad["name"] {
			errs = append(errs, fieldErr("data.name", "name is required", "REQUIRED"))
		}
	}

	if p.StartedAt == nil {
		if !bad["startedAt"] {
			errs = append(errs, fieldErr("data.startedAt", "startedAt is required", "REQUIRED"))
		}
	} else if _, err := time.Parse(time.RFC3339, *p.StartedAt); err != nil {
		errs = append(errs, fieldErr("data.startedAt", "startedAt must be an RFC 3339 timestamp", "INVALID_TIMESTAMP"))
	}

	if p.EndedAt != nil {
		if _, err := time.Parse(time.RFC3339, *p.EndedAt); err != nil {
			errs = append(errs, fieldErr("data.endedAt", "endedAt must be an RFC 3339 timestamp", "INVALID_TIMESTAMP"))
		}
	}

	if p.Status != nil {
		if _, ok := entity.SupportedCampaignStatuses[*p.Status]; !ok {
			errs = append(errs, fieldErr("data.status", "status must be one of Draft, Active, Paused, Completed", "INVALID_ENUM"))
		}
	}

	counters := map[string]*float64{
		"emailsSent":      p.EmailsSent,
		"opensDetected":   p.OpensDetected,
		"repliesReceived": p.RepliesReceived,
	}
	for field, value := range counters {
		if value == nil {
			continue
		}
		if *value < 0 {
			errs = append(errs, fieldErr("data."+field, field+" must not be negative", "NEGATIVE"))
		} else if *value != math.Trunc(*value) {
			errs = append(errs, fieldErr("data."+field, field+" must be an integer", "NOT_AN_INTEGER"))
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return p, nil
}

func validateEngagement(data json.RawMessage) (*EngagementPayload, []entity.FieldError) {
	p := new(EngagementPayload)

	errs, bad := unmarshalData(data, p)
	if bad == nil {
		return nil, errs
	}

	if p.CampaignID == nil || *p.CampaignID == "" {
		if !bad["campaignId"] {
			errs = append(errs, fieldErr("data.campaignId", "campaignId is required", "REQUIRED"))
		}
	}

	if p.EventType == nil {
		if !bad["eventType"] {
			errs = append(errs, fieldErr("data.eventType", "eventType is required", "REQUIRED"))
		}
	} else if _, ok := entity.SupportedEventTypes[*p.EventType]; !ok {
		errs = append(errs, fieldErr("data.eventType", "eventType is not a supported event", "INVALID_ENUM"))
	}

	// no silent default to now: a missing timestamp is the caller's bug
	if p.OccurredAt == nil && p.Timestamp == nil {
		if !bad["occurredAt"] && !bad["timestamp"] {
			errs = append(errs, fieldErr("data.occurredAt", "one of occurredAt or timestamp is required", "ENGAGEMENT_TIME_REQUIRED"))
		}
	} else {
		occurredAt := p.OccurredAt
		field := "data.occurredAt"
		if occurredAt == nil {
			occurredAt = p.Timestamp
			field = "data.timestamp"
		}
		if _, err := time.Parse(time.RFC3339, *occurredAt); err != nil {
			errs = append(errs, fieldErr(field, "must be an RFC 3339 timestamp", "INVALID_TIMESTAMP"))
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return p, nil
}

// unmarshalData decodes the data object. A field-level type mismatch is
// reported against that field and excluded from the required checks; any
// other decode failure invalidates the whole object (bad == nil).
func unmarshalData(data json.RawMessage, dst interface{}) ([]entity.FieldError, map[string]bool) {
	bad := make(map[string]bool)

	if err := json.Unmarshal(data, dst); err != nil {
		typeErr := new(json.UnmarshalTypeError)
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			bad[typeErr.Field] = true
			return []entity.FieldError{
				{Field: "data." + typeErr.Field, Message: "invalid value type", Code: "INVALID_TYPE"},
			}, bad
		}
		return []entity.FieldError{
			{Field: "data", Message: "data must be a JSON object", Code: "INVALID_JSON"},
		}, nil
	}

	return nil, bad
}

func fieldErr(field, message, code string) entity.FieldError {
	return entity.FieldError{Field: field, Message: message, Code: code}
}
