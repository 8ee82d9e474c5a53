package common

const (
	// LockKeyIngestionRun guards against two refreshes running at once.
	LockKeyIngestionRun = "filings:ingestion:run"
	// LockKeyIngestionTickerPrefix prefixes the per-ticker single-writer lock, keyed by store file.
	LockKeyIngestionTickerPrefix = "filings:ingestion:"

	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	BSEReferer       = "https://www.bseindia.com/"

	TriggerScheduled = "scheduled"
	TriggerManual    = "manual"
	TriggerCLI       = "cli"

	StatusSuccess = "SUCCESS"
	StatusPartial = "PARTIAL"
	StatusFailed  = "FAILED"
)
