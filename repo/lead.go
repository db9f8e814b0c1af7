package repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"outreach/config"
	"outreach/entity"
	"outreach/pkg/goutil"
)

var (
	ErrLeadNotFound = errors.New("lead not found")
)

type Lead struct {
	ID          *uint64
	LeadID      *string
	Status      *uint32
	LeadType    *uint32
	Temperature *uint32
	Source      *string
	Email       *string
	Name        *string
	Company     *string
	Metadata    *string
	CreateTime  *uint64
	UpdateTime  *uint64
}

func (m *Lead) TableName() string {
	return "lead_tab"
}

func (m *Lead) GetID() uint64 {
	if m != nil && m.ID != nil {
		return *m.ID
	}
	return 0
}

func (m *Lead) GetMetadata() string {
	if m != nil && m.Metadata != nil {
		return *m.Metadata
	}
	return ""
}

type LeadFilter struct {
	ID     *uint64
	LeadID *string
}

type LeadRepo interface {
	// Upsert inserts the lead or, when a row with the same lead_id exists,
	// updates its mutable fields and update_time in one atomic statement.
	// create_time and identity are never touched on the update path.
	Upsert(ctx context.Context, lead *entity.Lead) (*entity.Lead, error)
	Get(ctx context.Context, f *LeadFilter) (*entity.Lead, error)
	Close(ctx context.Context) error
}

type leadRepo struct {
	orm *gorm.DB
}

func NewLeadRepo(ctx context.Context, mysqlCfg config.MySQL) (LeadRepo, error) {
	orm, err := newOrm(ctx, mysqlCfg)
	if err != nil {
		return nil, err
	}
	return &leadRepo{orm: orm}, nil
}

// leadMutableColumns are the columns a re-submission may change.
var leadMutableColumns = []string{
	"status", "lead_type", "temperature", "source", "email", "name", "company", "metadata", "update_time",
}

func (r *leadRepo) Upsert(ctx context.Context, lead *entity.Lead) (*entity.Lead, error) {
	now := uint64(time.Now().Unix())

	leadModel, err := ToLeadModel(lead, now)
	if err != nil {
		return nil, err
	}

	if err := getDb(ctx, r.orm).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "lead_id"}},
		DoUpdates: clause.AssignmentColumns(leadMutableColumns),
	}).Create(leadModel).Error; err != nil {
		return nil, err
	}

	// re-read for the canonical row: the upsert may have kept the original
	// create_time and primary key
	return r.Get(ctx, &LeadFilter{LeadID: lead.LeadID})
}

func (r *leadRepo) Get(ctx context.Context, f *LeadFilter) (*entity.Lead, error) {
	lead := new(Lead)
	if err := getDb(ctx, r.orm).Where(f).First(lead).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}
	return ToLead(lead)
}

func (r *leadRepo) Close(_ context.Context) error {
	return closeOrm(r.orm)
}

func ToLeadModel(lead *entity.Lead, now uint64) (*Lead, error) {
	metadata := config.EmptyJson
	if lead.Metadata != nil {
		var err error
		metadata, err = json.Marshal(lead.Metadata)
		if err != nil {
			return nil, err
		}
	}

	return &Lead{
		ID:          lead.ID,
		LeadID:      lead.LeadID,
		Status:      goutil.Uint32(uint32(lead.Status)),
		LeadType:    goutil.Uint32(uint32(lead.Type)),
		Temperature: goutil.Uint32(uint32(lead.Temperature)),
		Source:      lead.Source,
		Email:       lead.Email,
		Name:        lead.Name,
		Company:     lead.Company,
		Metadata:    goutil.String(string(metadata)),
		CreateTime:  goutil.Uint64(now),
		UpdateTime:  goutil.Uint64(now),
	}, nil
}

func ToLead(lead *Lead) (*entity.Lead, error) {
	metadata := make(map[string]interface{})
	if lead.GetMetadata() != "" {
		if err := json.Unmarshal([]byte(lead.GetMetadata()), &metadata); err != nil {
			return nil, err
		}
	}

	var (
		status      entity.LeadStatus
		leadType    entity.LeadType
		temperature entity.LeadTemperature
	)
	if lead.Status != nil {
		status = entity.LeadStatus(*lead.Status)
	}
	if lead.LeadType != nil {
		leadType = entity.LeadType(*lead.LeadType)
	}
	if lead.Temperature != nil {
		temperature = entity.LeadTemperature(*lead.Temperature)
	}

	return &entity.Lead{
		ID:          lead.ID,
		LeadID:      lead.LeadID,
		Status:      status,
		Type:        leadType,
		Temperature: temperature,
		Source:      lead.Source,
		Email:       lead.Email,
		Name:        lead.Name,
		Company:     lead.Company,
		Metadata:    metadata,
		CreateTime:  lead.CreateTime,
		UpdateTime:  lead.UpdateTime,
	}, nil
}
