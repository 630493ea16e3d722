package constants

const (
	DefaultBatchSize  = 1000
	DefaultSampleSize = 3
	DefaultRetryCount = 3
	DefaultMongoURI   = "mongodb://localhost:27017"
	// MaxIntegerDigits is the length of 9223372036854775807; longer digit runs are kept as identifiers
	MaxIntegerDigits = 19
	// DefaultPreviewRows is the number of documents printed by the preview command
	DefaultPreviewRows = 5
	TSVExtension       = ".tsv"
	GzipExtension      = ".tsv.gz"
	XZExtension        = ".tsv.xz"
	EnvPrefix          = "TSVINGEST"
	MongoURIEnv        = "MONGO_URI"
	LogFile            = "LOG_FILE"
	LogLevel           = "LOG_LEVEL"
)

// RecognizedExtensions are matched case-insensitively against file names during discovery
var RecognizedExtensions = []string{TSVExtension, GzipExtension, XZExtension}

type DestinationType string

const (
	MongoDB DestinationType = "mongodb"
)
