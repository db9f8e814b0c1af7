package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"outreach/config"
	"outreach/entity"
	"outreach/pkg/errutil"
	"outreach/pkg/goutil"
	"outreach/pkg/httputil"
	"outreach/pkg/retry"
	"outreach/repo"
)

type IngestHandler interface {
	Ingest(ctx context.Context, req *IngestRequest, res *IngestResponse) error
	GetIngestInfo(ctx context.Context, req *GetIngestInfoRequest, res *GetIngestInfoResponse) error
}

type ingestHandler struct {
	ingestCfg        config.Ingest
	retryCfg         retry.Config
	leadRepo         repo.LeadRepo
	campaignRepo     repo.CampaignRepo
	engagementRepo   repo.EngagementRepo
	ingestionLogRepo repo.IngestionLogRepo
}

func NewIngestHandler(
	ingestCfg config.Ingest,
	leadRepo repo.LeadRepo,
	campaignRepo repo.CampaignRepo,
	engagementRepo repo.EngagementRepo,
	ingestionLogRepo repo.IngestionLogRepo,
) IngestHandler {
	return &ingestHandler{
		ingestCfg: ingestCfg,
		retryCfg: retry.Config{
			MaxAttempts:  ingestCfg.MaxRetries,
			InitialDelay: time.Duration(ingestCfg.RetryInitialDelayMs) * time.Millisecond,
			MaxDelay:     time.Duration(ingestCfg.RetryMaxDelayMs) * time.Millisecond,
			Multiplier:   ingestCfg.RetryBackoffMultiplier,
		},
		leadRepo:         leadRepo,
		campaignRepo:     campaignRepo,
		engagementRepo:   engagementRepo,
		ingestionLogRepo: ingestionLogRepo,
	}
}

type IngestRequest struct {
	Type *string         `json:"type,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

func (r *IngestRequest) GetType() string {
	if r != nil && r.Type != nil {
		return *r.Type
	}
	return ""
}

type IngestResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	EntityType string `json:"entityType,omitempty"`
	EntityID   string `json:"entityId,omitempty"`
	Timestamp  string `json:"timestamp,omitempty"`
}

func (h *ingestHandler) Ingest(ctx context.Context, req *IngestRequest, res *IngestResponse) error {
	if h.ingestCfg.RequestTimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(h.ingestCfg.RequestTimeoutSeconds)*time.Second)
		defer cancel()
	}

	payload, ferrs := ParsePayload(req)
	if len(ferrs) > 0 {
		return errutil.ValidationError(ferrs...)
	}

	var (
		entityType string
		entityID   string
		op         func(ctx context.Context) error
	)

	switch p := payload.(type) {
	case *LeadPayload:
		entityType = entity.EntityTypeLead

		lead := p.ToLead()
		if lead.GetLeadID() == "" {
			lead.LeadID = goutil.String(uuid.NewString())
		}
		entityID = lead.GetLeadID()

		op = func(ctx context.Context) error {
			_, err := h.leadRepo.Upsert(ctx, lead)
			return err
		}
	case *CampaignPayload:
		entityType = entity.EntityTypeCampaign

		campaign := p.ToCampaign()
		if campaign.GetCampaignID() == "" {
			campaign.CampaignID = goutil.String(uuid.NewString())
		}
		entityID = campaign.GetCampaignID()

		op = func(ctx context.Context) error {
			_, err := h.campaignRepo.Upsert(ctx, campaign)
			return err
		}
	case *EngagementPayload:
		entityType = entity.EntityTypeEngagement

		engagement := p.ToEngagement()
		op = func(ctx context.Context) error {
			stored, err := h.engagementRepo.Record(ctx, engagement)
			if err != nil {
				return err
			}
			entityID = strconv.FormatUint(stored.GetID(), 10)
			return nil
		}
	}

	persistErr := retry.Do(ctx, h.retryCfg, op, func(err error, delay time.Duration, attempt int) {
		log.Ctx(ctx).Warn().Msgf("persist %s attempt %d failed, retrying in %v, err: %v", entityType, attempt, delay, err)
	})

	h.writeIngestionLog(ctx, req, entityType, entityID, persistErr)

	if persistErr != nil {
		log.Ctx(ctx).Error().Msgf("persist %s failed, err: %v", entityType, persistErr)
		if errors.Is(persistErr, context.DeadlineExceeded) {
			return errutil.TimeoutError(persistErr)
		}
		return errutil.InternalError(persistErr)
	}

	res.Success = true
	res.Message = fmt.Sprintf("%s ingested", entityType)
	res.EntityType = entityType
	res.EntityID = entityID
	res.Timestamp = time.Now().UTC().Format(time.RFC3339)

	return nil
}

// writeIngestionLog audits the attempt regardless of outcome. Best-effort: a
// logging failure must never fail the request.
func (h *ingestHandler) writeIngestionLog(ctx context.Context, req *IngestRequest, entityType, entityID string, persistErr error) {
	// drop the request deadline, the audit write still runs after a timeout
	ctx = context.WithoutCancel(ctx)

	payload, err := json.Marshal(req)
	if err != nil {
		payload = config.EmptyJson
	}

	ingestionLog := &entity.IngestionLog{
		EntityType: goutil.String(entityType),
		Payload:    goutil.String(string(payload)),
		Success:    goutil.Bool(persistErr == nil),
		SourceIP:   goutil.String(httputil.ClientIPFromContext(ctx)),
	}
	if entityID != "" {
		ingestionLog.EntityID = goutil.String(entityID)
	}
	if persistErr != nil {
		ingestionLog.Error = goutil.String(persistErr.Error())
	}

	if _, err := h.ingestionLogRepo.Create(ctx, ingestionLog); err != nil {
		log.Ctx(ctx).Error().Msgf("write ingestion log failed, err: %v", err)
	}
}

type GetIngestInfoRequest struct{}

type GetIngestInfoResponse struct {
	Success                bool     `json:"success"`
	Description            string   `json:"description"`
	ContentType            string   `json:"contentType"`
	MaxBodyBytes           int64    `json:"maxBodyBytes"`
	RateLimit              int      `json:"rateLimit"`
	RateLimitWindowSeconds int      `json:"rateLimitWindowSeconds"`
	SupportedTypes         []string `json:"supportedTypes"`
}

func (h *ingestHandler) GetIngestInfo(_ context.Context, _ *GetIngestInfoRequest, res *GetIngestInfoResponse) error {
	res.Success = true
	res.Description = "POST marketing events as {type, data}"
	res.ContentType = "application/json"
	res.MaxBodyBytes = h.ingestCfg.MaxBodyBytes
	res.RateLimit = h.ingestCfg.RateLimit
	res.RateLimitWindowSeconds = h.ingestCfg.RateLimitWindowSeconds
	res.SupportedTypes = entity.SupportedEntityTypes

	return nil
}
