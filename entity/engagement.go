package entity

type EventType uint32

const (
	EventTypeUnknown EventType = iota
	EventTypeSent
	EventTypeOpened
	EventTypeReplied
	EventTypeBounced
	EventTypeClicked
	EventTypeUnsubscribed
	EventTypeFollowUpSent
	EventTypeLastFollowUpSent
)

var SupportedEventTypes = map[string]EventType{
	"sent":                EventTypeSent,
	"opened":              EventTypeOpened,
	"replied":             EventTypeReplied,
	"bounced":             EventTypeBounced,
	"clicked":             EventTypeClicked,
	"unsubscribed":        EventTypeUnsubscribed,
	"follow_up_sent":      EventTypeFollowUpSent,
	"last_follow_up_sent": EventTypeLastFollowUpSent,
}

// Engagement rows are append-only. Each insert is paired with at most one
// campaign counter increment inside the same transaction.
type Engagement struct {
	ID         *uint64                `json:"id,omitempty"`
	CampaignID *string                `json:"campaign_id,omitempty"`
	LeadID     *string                `json:"lead_id,omitempty"`
	EventType  EventType              `json:"event_type,omitempty"`
	EventTime  *uint64                `json:"event_time,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	CreateTime *uint64                `json:"create_time,omitempty"`
}

func (e *Engagement) GetID() uint64 {
	if e != nil && e.ID != nil {
		return *e.ID
	}
	return 0
}

func (e *Engagement) GetCampaignID() string {
	if e != nil && e.CampaignID != nil {
		return *e.CampaignID
	}
	return ""
}

func (e *Engagement) GetLeadID() string {
	if e != nil && e.LeadID != nil {
		return *e.LeadID
	}
	return ""
}

func (e *Engagement) GetEventType() EventType {
	if e != nil {
		return e.EventType
	}
	return EventTypeUnknown
}

func (e *Engagement) GetEventTime() uint64 {
	if e != nil && e.EventTime != nil {
		return *e.EventTime
	}
	return 0
}
