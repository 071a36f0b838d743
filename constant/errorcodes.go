package constant

// Encoder error codes
const (
	// Validation errors (0xx)
	ErrCodeEmptyPayload  = "ENC001"
	ErrCodeZeroDimension = "ENC002"

	// Capacity errors (1xx)
	ErrCodeCapacityExceeded = "ENC101"

	// Primitive errors (2xx)
	ErrCodePrimitiveFailure = "ENC201"
)

// Pipeline error codes
const (
	ErrCodePixelDecode = "PIP001"
	ErrCodeProduceFail = "PIP002"
)

// Store error codes
const (
	// General store errors (5xx)
	ErrCodeDBGeneral = "DB500"

	// Connection errors (0xx)
	ErrCodeDBOpen    = "DB001"
	ErrCodeDBMigrate = "DB002"

	// Save operation errors (1xx)
	ErrCodeDBInsert = "DB101"

	// Load operation errors (2xx)
	ErrCodeDBLookup = "DB201"

	// Close operation errors (4xx)
	ErrCodeDBClose = "DB401"
)

// API and application error codes
const (
	ErrCodeAPIBadParams      = "API001"
	ErrCodeAPIServiceError   = "API002"
	ErrCodeAppStoreInit      = "APP001"
	ErrCodeAppServerStart    = "APP002"
	ErrCodeAppServerShutdown = "APP003"
)
