package log

// Common field names for structured logging.
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldMonth         = "month"
	FieldTrendRange    = "trend_range"
	FieldTransactionID = "transaction_id"
	FieldGoalID        = "goal_id"
	FieldAmountCents   = "amount_cents"
	FieldCategory      = "category"
	FieldBackupFile    = "backup_file"
)

// Standard component names.
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentState   = "state"
	ComponentStorage = "storage"
	ComponentBackup  = "backup"
	ComponentCache   = "cache"
)

// Standard operation names.
const (
	OpCreate     = "create"
	OpDelete     = "delete"
	OpList       = "list"
	OpContribute = "contribute"
	OpSummary    = "summary"
	OpTrend      = "trend"
	OpExport     = "export"
	OpImport     = "import"
	OpReset      = "reset"
	OpStartup    = "startup"
	OpShutdown   = "shutdown"
)
