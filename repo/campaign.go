package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"outreach/config"
	"outreach/entity"
	"outreach/pkg/goutil"
)

var (
	ErrCampaignNotFound = errors.New("campaign not found")
)

type Campaign struct {
	ID                *uint64
	CampaignID        *string
	Name              *string
	Status            *uint32
	EmailsSent        *uint64
	OpensDetected     *uint64
	RepliesReceived   *uint64
	FollowUpsSent     *uint64
	LastFollowUpsSent *uint64
	StartTime         *uint64
	EndTime           *uint64
	CreateTime        *uint64
	UpdateTime        *uint64
}

func (m *Campaign) TableName() string {
	return "campaign_tab"
}

func (m *Campaign) GetID() uint64 {
	if m != nil && m.ID != nil {
		return *m.ID
	}
	return 0
}

// campaignCounterColumns maps counter-bearing event types to the campaign
// column each one increments. Event types absent here are recorded without a
// counter mutation.
var campaignCounterColumns = map[entity.EventType]string{
	entity.EventTypeSent:             "emails_sent",
	entity.EventTypeOpened:           "opens_detected",
	entity.EventTypeReplied:          "replies_received",
	entity.EventTypeFollowUpSent:     "follow_ups_sent",
	entity.EventTypeLastFollowUpSent: "last_follow_ups_sent",
}

type CampaignFilter struct {
	ID         *uint64
	CampaignID *string
}

type CampaignRepo interface {
	// Upsert inserts the campaign or updates the mutable fields of the row
	// keyed by campaign_id, atomically. Counters are set only on insert;
	// after that they belong to the engagement recorder.
	Upsert(ctx context.Context, campaign *entity.Campaign) (*entity.Campaign, error)
	Get(ctx context.Context, f *CampaignFilter) (*entity.Campaign, error)
	GetMany(ctx context.Context, keyword string, p *Pagination) ([]*entity.Campaign, *entity.Pagination, error)
	Close(ctx context.Context) error
}

type campaignRepo struct {
	orm *gorm.DB
}

func NewCampaignRepo(ctx context.Context, mysqlCfg config.MySQL) (CampaignRepo, error) {
	orm, err := newOrm(ctx, mysqlCfg)
	if err != nil {
		return nil, err
	}
	return &campaignRepo{orm: orm}, nil
}

var campaignMutableColumns = []string{
	"name", "status", "start_time", "end_time", "update_time",
}

func (r *campaignRepo) Upsert(ctx context.Context, campaign *entity.Campaign) (*entity.Campaign, error) {
	now := uint64(time.Now().Unix())

	campaignModel := ToCampaignModel(campaign, now)

	if err := getDb(ctx, r.orm).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "campaign_id"}},
		DoUpdates: clause.AssignmentColumns(campaignMutableColumns),
	}).Create(campaignModel).Error; err != nil {
		return nil, err
	}

	return r.Get(ctx, &CampaignFilter{CampaignID: campaign.CampaignID})
}

func (r *campaignRepo) Get(ctx context.Context, f *CampaignFilter) (*entity.Campaign, error) {
	campaign := new(Campaign)
	if err := getDb(ctx, r.orm).Where(f).First(campaign).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	return ToCampaign(campaign), nil
}

func (r *campaignRepo) GetMany(ctx context.Context, keyword string, p *Pagination) ([]*entity.Campaign, *entity.Pagination, error) {
	var (
		cond string
		args = make([]interface{}, 0)
	)
	if keyword != "" {
		cond = "LOWER(name) LIKE ? OR campaign_id = ?"
		args = append(args, fmt.Sprintf("%%%s%%", keyword), keyword)
	}

	db := getDb(ctx, r.orm)

	countQuery := db.Model(&Campaign{})
	if cond != "" {
		countQuery = countQuery.Where(cond, args...)
	}

	var count int64
	if err := countQuery.Count(&count).Error; err != nil {
		return nil, nil, err
	}

	var (
		limit = p.GetLimit()
		page  = p.GetPage()
	)
	if page == 0 {
		page = 1
	}

	var (
		offset     = (page - 1) * limit
		mCampaigns = make([]*Campaign, 0)
	)
	query := db.Offset(int(offset)).Order("id DESC")
	if cond != "" {
		query = query.Where(cond, args...)
	}
	if limit > 0 {
		query = query.Limit(int(limit + 1))
	}

	if err := query.Find(&mCampaigns).Error; err != nil {
		return nil, nil, err
	}

	var hasNext bool
	if limit > 0 && len(mCampaigns) > int(limit) {
		hasNext = true
		mCampaigns = mCampaigns[:limit]
	}

	campaigns := make([]*entity.Campaign, len(mCampaigns))
	for i, mCampaign := range mCampaigns {
		campaigns[i] = ToCampaign(mCampaign)
	}

	return campaigns, &entity.Pagination{
		Page:    goutil.Uint32(page),
		Limit:   p.Limit, // may be nil
		HasNext: goutil.Bool(hasNext),
		Total:   goutil.Int64(count),
	}, nil
}

func (r *campaignRepo) Close(_ context.Context) error {
	return closeOrm(r.orm)
}

// createCampaignIfNotExists heals a missing campaign row inside the
// engagement transaction: campaign_id doubles as the placeholder name,
// status Active, counters zero.
func createCampaignIfNotExists(tx *gorm.DB, campaignID string, now uint64) error {
	campaignModel := &Campaign{
		CampaignID:        goutil.String(campaignID),
		Name:              goutil.String(campaignID),
		Status:            goutil.Uint32(uint32(entity.CampaignStatusActive)),
		EmailsSent:        goutil.Uint64(0),
		OpensDetected:     goutil.Uint64(0),
		RepliesReceived:   goutil.Uint64(0),
		FollowUpsSent:     goutil.Uint64(0),
		LastFollowUpsSent: goutil.Uint64(0),
		StartTime:         goutil.Uint64(now),
		CreateTime:        goutil.Uint64(now),
		UpdateTime:        goutil.Uint64(now),
	}

	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "campaign_id"}},
		DoNothing: true,
	}).Create(campaignModel).Error
}

// incrementCampaignCounter bumps the counter mapped to eventType by exactly
// one, as a relative update. Non-counter event types are a no-op.
func incrementCampaignCounter(tx *gorm.DB, campaignID string, eventType entity.EventType, now uint64) error {
	col, ok := campaignCounterColumns[eventType]
	if !ok {
		return nil
	}

	return tx.Model(&Campaign{}).
		Where("campaign_id = ?", campaignID).
		UpdateColumns(map[string]interface{}{
			col:           gorm.Expr(col+" + ?", 1),
			"update_time": now,
		}).Error
}

func ToCampaignModel(campaign *entity.Campaign, now uint64) *Campaign {
	return &Campaign{
		ID:                campaign.ID,
		CampaignID:        campaign.CampaignID,
		Name:              campaign.Name,
		Status:            goutil.Uint32(uint32(campaign.Status)),
		EmailsSent:        campaign.EmailsSent,
		OpensDetected:     campaign.OpensDetected,
		RepliesReceived:   campaign.RepliesReceived,
		FollowUpsSent:     campaign.FollowUpsSent,
		LastFollowUpsSent: campaign.LastFollowUpsSent,
		StartTime:         campaign.StartTime,
		EndTime:           campaign.EndTime,
		CreateTime:        goutil.Uint64(now),
		UpdateTime:        goutil.Uint64(now),
	}
}

func ToCampaign(campaign *Campaign) *entity.Campaign {
	var status entity.CampaignStatus
	if campaign.Status != nil {
		status = entity.CampaignStatus(*campaign.Status)
	}

	return &entity.Campaign{
		ID:                campaign.ID,
		CampaignID:        campaign.CampaignID,
		Name:              campaign.Name,
		Status:            status,
		EmailsSent:        campaign.EmailsSent,
		OpensDetected:     campaign.OpensDetected,
		RepliesReceived:   campaign.RepliesReceived,
		FollowUpsSent:     campaign.FollowUpsSent,
		LastFollowUpsSent: campaign.LastFollowUpsSent,
		StartTime:         campaign.StartTime,
		EndTime:           campaign.EndTime,
		CreateTime:        campaign.CreateTime,
		UpdateTime:        campaign.UpdateTime,
	}
}
