package handler

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"outreach/entity"
	"outreach/pkg/errutil"
	"outreach/pkg/goutil"
	"outreach/pkg/validator"
	"outreach/repo"
)

// DashboardHandler serves the read endpoints behind the metrics dashboard.
type DashboardHandler interface {
	GetCampaigns(ctx context.Context, req *GetCampaignsRequest, res *GetCampaignsResponse) error
	GetIngestionLogs(ctx context.Context, req *GetIngestionLogsRequest, res *GetIngestionLogsResponse) error
	GetIngestionStats(ctx context.Context, req *GetIngestionStatsRequest, res *GetIngestionStatsResponse) error
}

type dashboardHandler struct {
	campaignRepo     repo.CampaignRepo
	ingestionLogRepo repo.IngestionLogRepo
	baseCache        repo.BaseCache
}

func NewDashboardHandler(campaignRepo repo.CampaignRepo, ingestionLogRepo repo.IngestionLogRepo, baseCache repo.BaseCache) DashboardHandler {
	return &dashboardHandler{
		campaignRepo:     campaignRepo,
		ingestionLogRepo: ingestionLogRepo,
		baseCache:        baseCache,
	}
}

const cachePrefixCampaigns = "campaigns"

type GetCampaignsRequest struct {
	Keyword *string `json:"keyword,omitempty" schema:"keyword"`
	Page    *uint32 `json:"page,omitempty" schema:"page"`
	Limit   *uint32 `json:"limit,omitempty" schema:"limit"`
}

func (r *GetCampaignsRequest) GetKeyword() string {
	if r != nil && r.Keyword != nil {
		return *r.Keyword
	}
	return ""
}

type GetCampaignsResponse struct {
	Campaigns  []*entity.Campaign `json:"campaigns"`
	Pagination *entity.Pagination `json:"pagination,omitempty"`
}

var GetCampaignsValidator = validator.MustForm(map[string]validator.Validator{
	"keyword": &validator.String{
		Optional: true,
		MaxLen:   64,
	},
	"page": &validator.UInt32{
		Optional: true,
	},
	"limit": &validator.UInt32{
		Optional: true,
		Max:      goutil.Uint32(100),
	},
})

func (h *dashboardHandler) GetCampaigns(ctx context.Context, req *GetCampaignsRequest, res *GetCampaignsResponse) error {
	if err := GetCampaignsValidator.Validate(req); err != nil {
		return errutil.BadRequestError(err)
	}

	p := &repo.Pagination{Page: req.Page, Limit: req.Limit}

	cacheKey := fmt.Sprintf("%s:%d:%d", req.GetKeyword(), p.GetPage(), p.GetLimit())
	if cached, ok := h.baseCache.Get(ctx, cachePrefixCampaigns, cacheKey); ok {
		if cachedRes, ok := cached.(*GetCampaignsResponse); ok {
			*res = *cachedRes
			return nil
		}
	}

	campaigns, pagination, err := h.campaignRepo.GetMany(ctx, req.GetKeyword(), p)
	if err != nil {
		log.Ctx(ctx).Error().Msgf("get campaigns failed, err: %v", err)
		return err
	}

	res.Campaigns = campaigns
	res.Pagination = pagination

	h.baseCache.Set(ctx, cachePrefixCampaigns, cacheKey, &GetCampaignsResponse{
		Campaigns:  campaigns,
		Pagination: pagination,
	})

	return nil
}

type GetIngestionLogsRequest struct {
	EntityType *string `json:"entity_type,omitempty" schema:"entity_type"`
	Success    *bool   `json:"success,omitempty" schema:"success"`
	Page       *uint32 `json:"page,omitempty" schema:"page"`
	Limit      *uint32 `json:"limit,omitempty" schema:"limit"`
}

type GetIngestionLogsResponse struct {
	IngestionLogs []*entity.IngestionLog `json:"ingestion_logs"`
	Pagination    *entity.Pagination     `json:"pagination,omitempty"`
}

var GetIngestionLogsValidator = validator.MustForm(map[string]validator.Validator{
	"entity_type": &validator.String{
		Optional: true,
		In:       entity.SupportedEntityTypes,
	},
	"success": &validator.Bool{
		Optional: true,
	},
	"page": &validator.UInt32{
		Optional: true,
	},
	"limit": &validator.UInt32{
		Optional: true,
		Max:      goutil.Uint32(100),
	},
})

func (h *dashboardHandler) GetIngestionLogs(ctx context.Context, req *GetIngestionLogsRequest, res *GetIngestionLogsResponse) error {
	if err := GetIngestionLogsValidator.Validate(req); err != nil {
		return errutil.BadRequestError(err)
	}

	logs, pagination, err := h.ingestionLogRepo.GetMany(ctx, &repo.IngestionLogFilter{
		EntityType: req.EntityType,
		Success:    req.Success,
	}, &repo.Pagination{Page: req.Page, Limit: req.Limit})
	if err != nil {
		log.Ctx(ctx).Error().Msgf("get ingestion logs failed, err: %v", err)
		return err
	}

	res.IngestionLogs = logs
	res.Pagination = pagination

	return nil
}

type GetIngestionStatsRequest struct{}

type GetIngestionStatsResponse struct {
	TotalAttempts *uint64            `json:"total_attempts,omitempty"`
	Failures      *uint64            `json:"failures,omitempty"`
	ByEntityType  map[string]*uint64 `json:"by_entity_type,omitempty"`
}

func (h *dashboardHandler) GetIngestionStats(ctx context.Context, _ *GetIngestionStatsRequest, res *GetIngestionStatsResponse) error {
	var (
		total    uint64
		failures uint64
		byType   = make(map[string]*uint64, len(entity.SupportedEntityTypes))
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		total, err = h.ingestionLogRepo.Count(gctx, &repo.IngestionLogFilter{})
		return err
	})

	g.Go(func() error {
		var err error
		failures, err = h.ingestionLogRepo.Count(gctx, &repo.IngestionLogFilter{
			Success: goutil.Bool(false),
		})
		return err
	})

	for _, entityType := range entity.SupportedEntityTypes {
		entityType := entityType
		count := new(uint64)
		byType[entityType] = count

		g.Go(func() error {
			c, err := h.ingestionLogRepo.Count(gctx, &repo.IngestionLogFilter{
				EntityType: goutil.String(entityType),
			})
			if err != nil {
				return err
			}
			*count = c
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Ctx(ctx).Error().Msgf("get ingestion stats failed, err: %v", err)
		return err
	}

	res.TotalAttempts = goutil.Uint64(total)
	res.Failures = goutil.Uint64(failures)
	res.ByEntityType = byType

	return nil
}
