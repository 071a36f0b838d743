package constant

// Request context keys
const (
	RequestIDKey = "request_id"
)

// HTTP header names
const (
	HeaderRequestID = "X-Request-ID"
)

// Function/Context names
const (
	// Domain context names
	CtxDomain      = "domain"
	CtxEncode      = "Encode"
	CtxDispatch    = "EncodeAsync"
	CtxUpdateInput = "UpdateInput"
	CtxApplyResult = "applyResult"
	CtxDispose     = "Dispose"
	CtxGenerate    = "Generate"
	CtxGeneratePNG = "GeneratePNG"

	// Infrastructure context names
	CtxDB        = "db"
	CtxStoreSave = "Save"
	CtxStoreLoad = "Load"
	CtxClose     = "Close"
	CtxAPI       = "api"

	// General context names
	CtxRouter  = "Router"
	CtxMain    = "Main"
	CtxQRImage = "QRImage"
)

// Data field keys
const (
	// Service data fields
	DataService    = "service"
	DataPayloadLen = "payload_len"
	DataDimension  = "dimension"
	DataLevel      = "ecc_level"
	DataMargin     = "margin"
	DataVersion    = "version"
	DataScrim      = "scrim"
	DataScale      = "scale"
	DataSeq        = "seq"
	DataLatestSeq  = "latest_seq"
	DataForeground = "foreground"
	DataCacheSize  = "cache_size"
	DataPayloadSum = "payload_sum"

	// Database data fields
	DataPath         = "path"
	DataElapsed      = "elapsed"
	DataRows         = "rows"
	DataSQL          = "sql"
	DataData         = "data"
	DataRowsAffected = "rows_affected"

	// API data fields
	DataMethod      = "method"
	DataStatus      = "status"
	DataLatency     = "latency"
	DataSize        = "size"
	DataRemoteAddr  = "remote_addr"
	DataUserAgent   = "user_agent"
	DataPort        = "port"
	DataStorePath   = "store_path"
	DataEnvironment = "environment"
)

// Error message constants
const (
	ErrEmptyPayload     = "payload cannot be empty"
	ErrZeroDimension    = "dimension must be positive"
	ErrPayloadTooLong   = "payload exceeds QR code capacity"
	ErrPrimitiveFailed  = "encoding primitive failure"
	ErrPixelDecode      = "pixel decode failure"
	ErrRenderedNotFound = "rendered image not found"
)

// Error types
const (
	ErrTypeValidation = "validation"
	ErrTypeEncode     = "encode"
	ErrTypeDecode     = "decode"
	ErrTypeDB         = "db"
	ErrTypeAPI        = "api"
	ErrTypeApp        = "application"
)

// API routes
const (
	RouteQRImage     = "/api/qr"
	RouteHealthcheck = "/health"
)

// Log keys
const (
	LogTimeKey         = "time"
	LogLevelKey        = "level"
	LogNameKey         = "logger"
	LogCallerKey       = "caller"
	LogMessageKey      = "msg"
	LogStacktraceKey   = "stacktrace"
	LogRequestIDKey    = "request_id"
	LogFunctionKey     = "function"
	LogErrorCodeKey    = "error_code"
	LogErrorTypeKey    = "error_type"
	LogErrorMessageKey = "error_message"
	LogEncodingJSON    = "json"
	LogEncodingConsole = "console"
	LogOutputStdout    = "stdout"
	LogOutputStderr    = "stderr"
)

// Message constants for application
const (
	MsgApplicationStarting = "Application starting"
	MsgFailedToInitStore   = "Failed to initialize render store"
	MsgServerStarting      = "Server starting"
	MsgServerFailedToStart = "Server failed to start"
	MsgServerShuttingDown  = "Server shutting down"
	MsgServerShutdownError = "Error during server shutdown"
	MsgServerStopped       = "Server stopped"
	MsgRequestReceived     = "Request received"
	MsgSettingUpRoutes     = "Setting up API routes"
	MsgHealthcheckRequest  = "Handling healthcheck request"
	MsgHealthy             = "Healthy"
	MsgStaleResultDropped  = "Stale encode result dropped"
)
