package entity

const (
	EntityTypeLead       = "lead"
	EntityTypeCampaign   = "campaign"
	EntityTypeEngagement = "engagement"
)

var SupportedEntityTypes = []string{
	EntityTypeLead,
	EntityTypeCampaign,
	EntityTypeEngagement,
}

// IngestionLog is the audit record of one ingestion attempt. Rows are
// append-only and written on a best-effort basis after the persistence stage.
type IngestionLog struct {
	ID         *uint64 `json:"id,omitempty"`
	EntityType *string `json:"entity_type,omitempty"`
	EntityID   *string `json:"entity_id,omitempty"`
	Payload    *string `json:"payload,omitempty"`
	Success    *bool   `json:"success,omitempty"`
	Error      *string `json:"error,omitempty"`
	SourceIP   *string `json:"source_ip,omitempty"`
	CreateTime *uint64 `json:"create_time,omitempty"`
}

func (e *IngestionLog) GetID() uint64 {
	if e != nil && e.ID != nil {
		return *e.ID
	}
	return 0
}

func (e *IngestionLog) GetEntityType() string {
	if e != nil && e.EntityType != nil {
		return *e.EntityType
	}
	return ""
}

func (e *IngestionLog) GetEntityID() string {
	if e != nil && e.EntityID != nil {
		return *e.EntityID
	}
	return ""
}

func (e *IngestionLog) GetPayload() string {
	if e != nil && e.Payload != nil {
		return *e.Payload
	}
	return ""
}

func (e *IngestionLog) GetSuccess() bool {
	if e != nil && e.Success != nil {
		return *e.Success
	}
	return false
}

func (e *IngestionLog) GetError() string {
	if e != nil && e.Error != nil {
		return *e.Error
	}
	return ""
}

func (e *IngestionLog) GetSourceIP() string {
	if e != nil && e.SourceIP != nil {
		return *e.SourceIP
	}
	return ""
}
