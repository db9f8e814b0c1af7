package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"outreach/config"
	"outreach/entity"
	"outreach/pkg/goutil"
)

type IngestionLog struct {
	ID         *uint64
	EntityType *string
	EntityID   *string
	Payload    *string
	Success    *bool
	Error      *string
	SourceIP   *string
	CreateTime *uint64
}

func (m *IngestionLog) TableName() string {
	return "ingestion_log_tab"
}

func (m *IngestionLog) GetID() uint64 {
	if m != nil && m.ID != nil {
		return *m.ID
	}
	return 0
}

type IngestionLogFilter struct {
	EntityType *string
	Success    *bool
}

type IngestionLogRepo interface {
	Create(ctx context.Context, l *entity.IngestionLog) (uint64, error)
	GetMany(ctx context.Context, f *IngestionLogFilter, p *Pagination) ([]*entity.IngestionLog, *entity.Pagination, error)
	Count(ctx context.Context, f *IngestionLogFilter) (uint64, error)
	Close(ctx context.Context) error
}

type ingestionLogRepo struct {
	orm     *gorm.DB
	es      *elasticsearch.Client
	esIndex string
}

func NewIngestionLogRepo(ctx context.Context, mysqlCfg config.MySQL, esCfg config.Elasticsearch) (IngestionLogRepo, error) {
	orm, err := newOrm(ctx, mysqlCfg)
	if err != nil {
		return nil, err
	}

	r := &ingestionLogRepo{orm: orm}

	if esCfg.Enabled() {
		es, err := elasticsearch.NewClient(elasticsearch.Config{
			Addresses: esCfg.Addrs,
			Username:  esCfg.Username,
			Password:  esCfg.Password,
		})
		if err != nil {
			return nil, err
		}
		r.es = es
		r.esIndex = esCfg.Index
	}

	return r, nil
}

func (r *ingestionLogRepo) Create(ctx context.Context, l *entity.IngestionLog) (uint64, error) {
	logModel := ToIngestionLogModel(l, uint64(time.Now().Unix()))

	if err := getDb(ctx, r.orm).Create(logModel).Error; err != nil {
		return 0, err
	}

	// search mirror is best-effort, a miss never fails the write
	r.mirrorToIndex(ctx, logModel)

	return logModel.GetID(), nil
}

func (r *ingestionLogRepo) mirrorToIndex(ctx context.Context, logModel *IngestionLog) {
	if r.es == nil {
		return
	}

	doc, err := json.Marshal(ToIngestionLog(logModel))
	if err != nil {
		log.Ctx(ctx).Error().Msgf("marshal ingestion log for index failed, err: %v", err)
		return
	}

	res, err := r.es.Index(
		r.esIndex,
		bytes.NewReader(doc),
		r.es.Index.WithContext(ctx),
		r.es.Index.WithDocumentID(fmt.Sprintf("%d", logModel.GetID())),
	)
	if err != nil {
		log.Ctx(ctx).Error().Msgf("index ingestion log failed, err: %v", err)
		return
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.IsError() {
		log.Ctx(ctx).Error().Msgf("index ingestion log failed, status: %s", res.Status())
	}
}

func (r *ingestionLogRepo) GetMany(ctx context.Context, f *IngestionLogFilter, p *Pagination) ([]*entity.IngestionLog, *entity.Pagination, error) {
	db := getDb(ctx, r.orm)

	var count int64
	if err := db.Model(&IngestionLog{}).Where(f).Count(&count).Error; err != nil {
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
		offset = (page - 1) * limit
		mLogs  = make([]*IngestionLog, 0)
	)
	query := db.Where(f).Offset(int(offset)).Order("id DESC")
	if limit > 0 {
		query = query.Limit(int(limit + 1))
	}

	if err := query.Find(&mLogs).Error; err != nil {
		return nil, nil, err
	}

	var hasNext bool
	if limit > 0 && len(mLogs) > int(limit) {
		hasNext = true
		mLogs = mLogs[:limit]
	}

	logs := make([]*entity.IngestionLog, len(mLogs))
	for i, mLog := range mLogs {
		logs[i] = ToIngestionLog(mLog)
	}

	return logs, &entity.Pagination{
		Page:    goutil.Uint32(page),
		Limit:   p.Limit, // may be nil
		HasNext: goutil.Bool(hasNext),
		Total:   goutil.Int64(count),
	}, nil
}

func (r *ingestionLogRepo) Count(ctx context.Context, f *IngestionLogFilter) (uint64, error) {
	var count int64
	if err := getDb(ctx, r.orm).Model(&IngestionLog{}).Where(f).Count(&count).Error; err != nil {
		return 0, err
	}
	return uint64(count), nil
}

func (r *ingestionLogRepo) Close(_ context.Context) error {
	return closeOrm(r.orm)
}

func ToIngestionLogModel(l *entity.IngestionLog, now uint64) *IngestionLog {
	return &IngestionLog{
		ID:         l.ID,
		EntityType: l.EntityType,
		EntityID:   l.EntityID,
		Payload:    l.Payload,
		Success:    l.Success,
		Error:      l.Error,
		SourceIP:   l.SourceIP,
		CreateTime: goutil.Uint64(now),
	}
}

func ToIngestionLog(l *IngestionLog) *entity.IngestionLog {
	return &entity.IngestionLog{
		ID:         l.ID,
		EntityType: l.EntityType,
		EntityID:   l.EntityID,
		Payload:    l.Payload,
		Success:    l.Success,
		Error:      l.Error,
		SourceIP:   l.SourceIP,
		CreateTime: l.CreateTime,
	}
}
