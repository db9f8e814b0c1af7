package repo

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"outreach/config"
	"outreach/entity"
	"outreach/pkg/goutil"
)

type Engagement struct {
	ID         *uint64
	CampaignID *string
	LeadID     *string
	EventType  *uint32
	EventTime  *uint64
	Metadata   *string
	CreateTime *uint64
}

func (m *Engagement) TableName() string {
	return "engagement_tab"
}

func (m *Engagement) GetID() uint64 {
	if m != nil && m.ID != nil {
		return *m.ID
	}
	return 0
}

type EngagementFilter struct {
	CampaignID *string
}

type EngagementRepo interface {
	// Record appends the engagement event and, in the same transaction,
	// auto-creates the campaign when it is missing and bumps the counter
	// mapped to the event type. All three commit or roll back together.
	Record(ctx context.Context, engagement *entity.Engagement) (*entity.Engagement, error)
	Count(ctx context.Context, f *EngagementFilter) (uint64, error)
	Close(ctx context.Context) error
}

type engagementRepo struct {
	orm *gorm.DB
}

func NewEngagementRepo(ctx context.Context, mysqlCfg config.MySQL) (EngagementRepo, error) {
	orm, err := newOrm(ctx, mysqlCfg)
	if err != nil {
		return nil, err
	}
	return &engagementRepo{orm: orm}, nil
}

func (r *engagementRepo) Record(ctx context.Context, engagement *entity.Engagement) (*entity.Engagement, error) {
	now := uint64(time.Now().Unix())

	engagementModel, err := ToEngagementModel(engagement, now)
	if err != nil {
		return nil, err
	}

	if err := getDb(ctx, r.orm).Transaction(func(tx *gorm.DB) error {
		if err := createCampaignIfNotExists(tx, engagement.GetCampaignID(), now); err != nil {
			return err
		}

		if err := tx.Create(engagementModel).Error; err != nil {
			return err
		}

		return incrementCampaignCounter(tx, engagement.GetCampaignID(), engagement.GetEventType(), now)
	}); err != nil {
		return nil, err
	}

	engagement.ID = engagementModel.ID
	engagement.CreateTime = engagementModel.CreateTime

	return engagement, nil
}

func (r *engagementRepo) Count(ctx context.Context, f *EngagementFilter) (uint64, error) {
	var count int64
	if err := getDb(ctx, r.orm).Model(&Engagement{}).Where(f).Count(&count).Error; err != nil {
		return 0, err
	}
	return uint64(count), nil
}

func (r *engagementRepo) Close(_ context.Context) error {
	return closeOrm(r.orm)
}

func ToEngagementModel(engagement *entity.Engagement, now uint64) (*Engagement, error) {
	metadata := config.EmptyJson
	if engagement.Metadata != nil {
		var err error
		metadata, err = json.Marshal(engagement.Metadata)
		if err != nil {
			return nil, err
		}
	}

	eventTime := engagement.GetEventTime()
	if eventTime == 0 {
		eventTime = now
	}

	return &Engagement{
		ID:         engagement.ID,
		CampaignID: engagement.CampaignID,
		LeadID:     engagement.LeadID,
		EventType:  goutil.Uint32(uint32(engagement.EventType)),
		EventTime:  goutil.Uint64(eventTime),
		Metadata:   goutil.String(string(metadata)),
		CreateTime: goutil.Uint64(now),
	}, nil
}
