package config

const (
	PathHealthCheck       = "/"
	PathIngest            = "/ingest"
	PathGetCampaigns      = "/get_campaigns"
	PathGetIngestionLogs  = "/get_ingestion_logs"
	PathGetIngestionStats = "/get_ingestion_stats"
)

const (
	DefaultPort   = 9090
	LogLevelDebug = "DEBUG"
)

var (
	EmptyJson = []byte("{}")
)
