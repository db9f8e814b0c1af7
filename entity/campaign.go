package entity

type CampaignStatus uint32

const (
	CampaignStatusUnknown CampaignStatus = iota
	CampaignStatusDraft
	CampaignStatusActive
	CampaignStatusPaused
	CampaignStatusCompleted
)

var SupportedCampaignStatuses = map[string]CampaignStatus{
	"Draft":     CampaignStatusDraft,
	"Active":    CampaignStatusActive,
	"Paused":    CampaignStatusPaused,
	"Completed": CampaignStatusCompleted,
}

// Campaign counters are a cache over engagement_tab rows. They are only
// ever mutated by the engagement recorder's relative increment, never set
// directly from a payload after creation.
type Campaign struct {
	ID                *uint64        `json:"id,omitempty"`
	CampaignID        *string        `json:"campaign_id,omitempty"`
	Name              *string        `json:"name,omitempty"`
	Status            CampaignStatus `json:"status,omitempty"`
	EmailsSent        *uint64        `json:"emails_sent,omitempty"`
	OpensDetected     *uint64        `json:"opens_detected,omitempty"`
	RepliesReceived   *uint64        `json:"replies_received,omitempty"`
	FollowUpsSent     *uint64        `json:"follow_ups_sent,omitempty"`
	LastFollowUpsSent *uint64        `json:"last_follow_ups_sent,omitempty"`
	StartTime         *uint64        `json:"start_time,omitempty"`
	EndTime           *uint64        `json:"end_time,omitempty"`
	CreateTime        *uint64        `json:"create_time,omitempty"`
	UpdateTime        *uint64        `json:"update_time,omitempty"`
}

func (e *Campaign) GetID() uint64 {
	if e != nil && e.ID != nil {
		return *e.ID
	}
	return 0
}

func (e *Campaign) GetCampaignID() string {
	if e != nil && e.CampaignID != nil {
		return *e.CampaignID
	}
	return ""
}

func (e *Campaign) GetName() string {
	if e != nil && e.Name != nil {
		return *e.Name
	}
	return ""
}

func (e *Campaign) GetStatus() CampaignStatus {
	if e != nil {
		return e.Status
	}
	return CampaignStatusUnknown
}

func (e *Campaign) GetEmailsSent() uint64 {
	if e != nil && e.EmailsSent != nil {
		return *e.EmailsSent
	}
	return 0
}

func (e *Campaign) GetOpensDetected() uint64 {
	if e != nil && e.OpensDetected != nil {
		return *e.OpensDetected
	}
	return 0
}

func (e *Campaign) GetRepliesReceived() uint64 {
	if e != nil && e.RepliesReceived != nil {
		return *e.RepliesReceived
	}
	return 0
}

func (e *Campaign) GetStartTime() uint64 {
	if e != nil && e.StartTime != nil {
		return *e.StartTime
	}
	return 0
}

func (e *Campaign) GetCreateTime() uint64 {
	if e != nil && e.CreateTime != nil {
		return *e.CreateTime
	}
	return 0
}
