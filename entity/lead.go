package entity

type LeadStatus uint32

const (
	LeadStatusUnknown LeadStatus = iota
	LeadStatusUnprocessed
	LeadStatusProcessed
)

var SupportedLeadStatuses = map[string]LeadStatus{
	"Unprocessed": LeadStatusUnprocessed,
	"Processed":   LeadStatusProcessed,
}

type LeadType uint32

const (
	LeadTypeUnknown LeadType = iota
	LeadTypeBrand
	LeadTypeApollo
	LeadTypeCold
	LeadTypeWarm
)

var SupportedLeadTypes = map[string]LeadType{
	"Brand":  LeadTypeBrand,
	"Apollo": LeadTypeApollo,
	"Cold":   LeadTypeCold,
	"Warm":   LeadTypeWarm,
}

type LeadTemperature uint32

const (
	LeadTemperatureUnknown LeadTemperature = iota
	LeadTemperatureHot
	LeadTemperatureWarm
	LeadTemperatureCold
)

var SupportedLeadTemperatures = map[string]LeadTemperature{
	"Hot":  LeadTemperatureHot,
	"Warm": LeadTemperatureWarm,
	"Cold": LeadTemperatureCold,
}

type Lead struct {
	ID          *uint64                `json:"id,omitempty"`
	LeadID      *string                `json:"lead_id,omitempty"`
	Status      LeadStatus             `json:"status,omitempty"`
	Type        LeadType               `json:"type,omitempty"`
	Temperature LeadTemperature        `json:"temperature,omitempty"`
	Source      *string                `json:"source,omitempty"`
	Email       *string                `json:"email,omitempty"`
	Name        *string                `json:"name,omitempty"`
	Company     *string                `json:"company,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	CreateTime  *uint64                `json:"create_time,omitempty"`
	UpdateTime  *uint64                `json:"update_time,omitempty"`
}

func (e *Lead) GetID() uint64 {
	if e != nil && e.ID != nil {
		return *e.ID
	}
	return 0
}

func (e *Lead) GetLeadID() string {
	if e != nil && e.LeadID != nil {
		return *e.LeadID
	}
	return ""
}

func (e *Lead) GetStatus() LeadStatus {
	if e != nil {
		return e.Status
	}
	return LeadStatusUnknown
}

func (e *Lead) GetType() LeadType {
	if e != nil {
		return e.Type
	}
	return LeadTypeUnknown
}

func (e *Lead) GetTemperature() LeadTemperature {
	if e != nil {
		return e.Temperature
	}
	return LeadTemperatureUnknown
}

func (e *Lead) GetSource() string {
	if e != nil && e.Source != nil {
		return *e.Source
	}
	return ""
}

func (e *Lead) GetEmail() string {
	if e != nil && e.Email != nil {
		return *e.Email
	}
	return ""
}

func (e *Lead) GetCreateTime() uint64 {
	if e != nil && e.CreateTime != nil {
		return *e.CreateTime
	}
	return 0
}
