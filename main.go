package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"outreach/config"
	"outreach/handler"
	"outreach/middleware"
	"outreach/pkg/ratelimit"
	"outreach/pkg/router"
	"outreach/pkg/service"
	"outreach/repo"
)

type server struct {
	ctx context.Context
	opt *config.Option
	cfg *config.Config

	redisClient *redis.Client
	limiter     *ratelimit.Limiter

	leadRepo         repo.LeadRepo
	campaignRepo     repo.CampaignRepo
	engagementRepo   repo.EngagementRepo
	ingestionLogRepo repo.IngestionLogRepo
	baseCache        repo.BaseCache

	// api handlers
	ingestHandler    handler.IngestHandler
	dashboardHandler handler.DashboardHandler
}

func main() {
	s := new(server)
	if err := service.Run(s); err != nil {
		log.Fatal().Msg(err.Error())
	}
}

func (s *server) Init() error {
	opt := config.NewOptions()

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		opt.LogLevel = logLevel
	}

	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		opt.ConfigPath = configPath
	}

	if serverPort := os.Getenv("PORT"); serverPort != "" {
		if port, err := strconv.Atoi(serverPort); err == nil {
			opt.Port = port
		}
	}

	s.opt = opt

	return nil
}

func (s *server) Start() error {
	var err error

	// ====== init logger ===== //

	s.ctx = initZeroLog(context.Background(), s.opt.LogLevel)

	// ===== init config ===== //

	s.cfg = config.NewConfig()
	if err = s.cfg.Load(s.ctx, s.opt.ConfigPath); err != nil {
		log.Ctx(s.ctx).Error().Msgf("load config failed, err: %v", err)
		return err
	}

	// ===== init rate limiter ===== //

	s.redisClient = redis.NewClient(&redis.Options{
		Addr:     s.cfg.RateLimitDB.Addr,
		Password: s.cfg.RateLimitDB.Password,
		DB:       s.cfg.RateLimitDB.DB,
	})
	s.limiter = ratelimit.New(
		s.redisClient,
		s.cfg.Ingest.RateLimit,
		time.Duration(s.cfg.Ingest.RateLimitWindowSeconds)*time.Second,
	)

	// ===== init repos ===== //

	s.leadRepo, err = repo.NewLeadRepo(s.ctx, s.cfg.MetadataDB)
	if err != nil {
		log.Ctx(s.ctx).Error().Msgf("init lead repo failed, err: %v", err)
		return err
	}
	defer func() {
		if err != nil && s.leadRepo != nil {
			if err := s.leadRepo.Close(s.ctx); err != nil {
				log.Ctx(s.ctx).Error().Msgf("close lead repo failed, err: %v", err)
				return
			}
		}
	}()

	s.campaignRepo, err = repo.NewCampaignRepo(s.ctx, s.cfg.MetadataDB)
	if err != nil {
		log.Ctx(s.ctx).Error().Msgf("init campaign repo failed, err: %v", err)
		return err
	}
	defer func() {
		if err != nil && s.campaignRepo != nil {
			if err := s.campaignRepo.Close(s.ctx); err != nil {
				log.Ctx(s.ctx).Error().Msgf("close campaign repo failed, err: %v", err)
				return
			}
		}
	}()

	s.engagementRepo, err = repo.NewEngagementRepo(s.ctx, s.cfg.MetadataDB)
	if err != nil {
		log.Ctx(s.ctx).Error().Msgf("init engagement repo failed, err: %v", err)
		return err
	}
	defer func() {
		if err != nil && s.engagementRepo != nil {
			if err := s.engagementRepo.Close(s.ctx); err != nil {
				log.Ctx(s.ctx).Error().Msgf("close engagement repo failed, err: %v", err)
				return
			}
		}
	}()

	s.ingestionLogRepo, err = repo.NewIngestionLogRepo(s.ctx, s.cfg.MetadataDB, s.cfg.AuditIndex)
	if err != nil {
		log.Ctx(s.ctx).Error().Msgf("init ingestion log repo failed, err: %v", err)
		return err
	}
	defer func() {
		if err != nil && s.ingestionLogRepo != nil {
			if err := s.ingestionLogRepo.Close(s.ctx); err != nil {
				log.Ctx(s.ctx).Error().Msgf("close ingestion log repo failed, err: %v", err)
				return
			}
		}
	}()

	s.baseCache = repo.NewBaseCache(s.ctx)

	// ===== init handlers ===== //

	s.ingestHandler = handler.NewIngestHandler(s.cfg.Ingest, s.leadRepo, s.campaignRepo, s.engagementRepo, s.ingestionLogRepo)
	s.dashboardHandler = handler.NewDashboardHandler(s.campaignRepo, s.ingestionLogRepo, s.baseCache)

	// ===== start server ===== //

	go func() {
		addr := fmt.Sprintf(":%d", s.opt.Port)

		log.Info().Msgf("starting HTTP server at %s", addr)

		c := cors.New(cors.Options{
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Content-Type"},
		})

		httpServer := &http.Server{
			BaseContext: func(_ net.Listener) context.Context {
				return s.ctx
			},
			Addr:    addr,
			Handler: middleware.Log(c.Handler(s.registerRoutes())),
		}
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fail to start HTTP server, err: %v", err)
		}
	}()

	return nil
}

func (s *server) Stop() error {
	if s.leadRepo != nil {
		if err := s.leadRepo.Close(s.ctx); err != nil {
			log.Ctx(s.ctx).Error().Msgf("close lead repo failed, err: %v", err)
			return err
		}
	}

	if s.campaignRepo != nil {
		if err := s.campaignRepo.Close(s.ctx); err != nil {
			log.Ctx(s.ctx).Error().Msgf("close campaign repo failed, err: %v", err)
			return err
		}
	}

	if s.engagementRepo != nil {
		if err := s.engagementRepo.Close(s.ctx); err != nil {
			log.Ctx(s.ctx).Error().Msgf("close engagement repo failed, err: %v", err)
			return err
		}
	}

	if s.ingestionLogRepo != nil {
		if err := s.ingestionLogRepo.Close(s.ctx); err != nil {
			log.Ctx(s.ctx).Error().Msgf("close ingestion log repo failed, err: %v", err)
			return err
		}
	}

	if s.baseCache != nil {
		if err := s.baseCache.Close(s.ctx); err != nil {
			log.Ctx(s.ctx).Error().Msgf("close cache failed, err: %v", err)
			return err
		}
	}

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Ctx(s.ctx).Error().Msgf("close redis client failed, err: %v", err)
			return err
		}
	}

	return nil
}

type HealthCheckRequest struct{}

type HealthCheckResponse struct{}

func (s *server) registerRoutes() http.Handler {
	r := &router.HttpRouter{
		Router: mux.NewRouter(),
	}

	r.RegisterHttpRoute(&router.HttpRoute{
		Path:   config.PathHealthCheck,
		Method: http.MethodGet,
		Handler: router.Handler{
			Req: new(HealthCheckRequest),
			Res: new(HealthCheckResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return nil
			},
		},
	})

	// ingest
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:   config.PathIngest,
		Method: http.MethodPost,
		Middlewares: []router.Middleware{
			middleware.NewBodyLimit(s.cfg.Ingest.MaxBodyBytes),
			middleware.NewRateLimit(s.limiter),
		},
		Handler: router.Handler{
			Req: new(handler.IngestRequest),
			Res: new(handler.IngestResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.ingestHandler.Ingest(ctx, req.(*handler.IngestRequest), res.(*handler.IngestResponse))
			},
		},
	})

	// ingest_info
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:   config.PathIngest,
		Method: http.MethodGet,
		Handler: router.Handler{
			Req: new(handler.GetIngestInfoRequest),
			Res: new(handler.GetIngestInfoResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.ingestHandler.GetIngestInfo(ctx, req.(*handler.GetIngestInfoRequest), res.(*handler.GetIngestInfoResponse))
			},
		},
	})

	// get_campaigns
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:   config.PathGetCampaigns,
		Method: http.MethodGet,
		Handler: router.Handler{
			Req: new(handler.GetCampaignsRequest),
			Res: new(handler.GetCampaignsResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.dashboardHandler.GetCampaigns(ctx, req.(*handler.GetCampaignsRequest), res.(*handler.GetCampaignsResponse))
			},
		},
	})

	// get_ingestion_logs
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:   config.PathGetIngestionLogs,
		Method: http.MethodGet,
		Handler: router.Handler{
			Req: new(handler.GetIngestionLogsRequest),
			Res: new(handler.GetIngestionLogsResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.dashboardHandler.GetIngestionLogs(ctx, req.(*handler.GetIngestionLogsRequest), res.(*handler.GetIngestionLogsResponse))
			},
		},
	})

	// get_ingestion_stats
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:   config.PathGetIngestionStats,
		Method: http.MethodGet,
		Handler: router.Handler{
			Req: new(handler.GetIngestionStatsRequest),
			Res: new(handler.GetIngestionStatsResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.dashboardHandler.GetIngestionStats(ctx, req.(*handler.GetIngestionStatsRequest), res.(*handler.GetIngestionStatsResponse))
			},
		},
	})

	return r
}

func initZeroLog(ctx context.Context, level string) context.Context {
	// use unix time
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	// set log level
	var logLevel zerolog.Level
	switch strings.ToLower(level) {
	case zerolog.LevelDebugValue:
		logLevel = zerolog.DebugLevel
	case zerolog.LevelInfoValue:
		logLevel = zerolog.InfoLevel
	case zerolog.LevelWarnValue:
		logLevel = zerolog.WarnLevel
	case zerolog.LevelErrorValue:
		logLevel = zerolog.ErrorLevel
	case zerolog.LevelFatalValue:
		logLevel = zerolog.FatalLevel
	default:
		logLevel = zerolog.TraceLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	// show caller: github.com/rs/zerolog#add-file-and-line-number-to-log
	zerolog.CallerMarshalFunc = func(_ uintptr, file string, line int) string {
		short := file
		for i := len(file) - 1; i > 0; i-- {
			if file[i] == '/' {
				short = file[i+1:]
				break
			}
		}
		file = short
		return fmt.Sprintf("%s:%d", short, line)
	}
	log.Logger = log.With().Caller().Logger()

	ctx = log.Logger.WithContext(ctx)
	return ctx
}
