package config

type Config struct {
	// App: Global application metadata
	App InConfigAppConfig `mapstructure:"app"`

	// Server: Network configuration and execution environment
	Server ServerConfig `mapstructure:"server"`

	// Database: SQLite engine parameters and maintenance policies
	Database DatabaseConfig `mapstructure:"database"`

	// Storage: On-disk layout for uploads and backups
	Storage StorageConfig `mapstructure:"storage"`

	// Image: Global constraints for uploads and thumbnails
	Image ImageConfig `mapstructure:"image"`

	// Oracle: Vision analysis service (Gemini REST or local mock)
	Oracle OracleConfig `mapstructure:"oracle"`

	// Cache: In-memory cache settings to reduce Disk I/O
	Cache CacheConfig `mapstructure:"cache"`

	// Security: Write protection, CORS whitelist, and DDoS protection
	Security SecurityConfig `mapstructure:"security"`

	// BaseURL: The public-facing root URL used for absolute link generation
	BaseURL string `mapstructure:"base_url"`
}

type InConfigAppConfig struct {
	// Name: Identity of the service used in headers and logs (e.g., "Pictor")
	Name string `mapstructure:"name"`

	// Version: Application semantic version (e.g., "0.1.0")
	Version string `mapstructure:"version"`
}

type ServerConfig struct {
	// Port: The TCP port the HTTP server will bind to (default: 9980)
	Port int `mapstructure:"port"`

	// Env: Execution context (development, staging, production)
	Env string `mapstructure:"env"`
}

type DatabaseConfig struct {
	// Path: Physical location of the SQLite database file (e.g., ./data/pictor.db)
	Path string `mapstructure:"path"`

	// CleanInterval: Frequency of background maintenance tasks (e.g., "30m", "1h")
	CleanInterval string `mapstructure:"clean_interval"`
}

type StorageConfig struct {
	// UploadsDir: Directory holding original files and thumbnails
	UploadsDir string `mapstructure:"uploads_dir"`

	// BackupsDir: Directory holding backup archives
	BackupsDir string `mapstructure:"backups_dir"`

	// ExportsDir: Directory holding export archives
	ExportsDir string `mapstructure:"exports_dir"`
}

type ImageConfig struct {
	// ThumbnailSize: Bounding box for generated thumbnails in pixels (e.g., 300)
	ThumbnailSize int `mapstructure:"thumbnail_size"`

	// MaxUploadSize: Maximum size of a single uploaded file (e.g., "10MB")
	MaxUploadSize string `mapstructure:"max_upload_size"`

	// MaxBatchCount: Maximum number of files accepted in one upload request
	MaxBatchCount int `mapstructure:"max_batch_count"`
}

type OracleConfig struct {
	// GeminiAPIKey: API key for the vision model. Empty switches to mock mode.
	GeminiAPIKey string `mapstructure:"gemini_api_key"`

	// Model: Vision model identifier (e.g., "gemini-1.5-flash")
	Model string `mapstructure:"model"`

	// Timeout: Per-request deadline for oracle calls (e.g., "30s")
	Timeout string `mapstructure:"timeout"`

	// PlaceholderOnFailure: Keep uploads with placeholder metadata when
	// analysis fails instead of rejecting the file
	PlaceholderOnFailure bool `mapstructure:"placeholder_on_failure"`
}

type CacheConfig struct {
	// Enabled: Toggles the in-memory file caching layer
	Enabled bool `mapstructure:"enabled"`

	// MaxCapacity: Maximum RAM allocated for cache in MB (e.g., 100)
	MaxCapacity int `mapstructure:"max_capacity"`

	// TTL: Expiration time for cached items (e.g., "30m", "24h")
	TTL string `mapstructure:"ttl"`
}

type SecurityConfig struct {
	// SecretKey: Static token required in X-Secret-Key header for write operations
	SecretKey string `mapstructure:"secret_key"`

	// CorsOrigins: List of allowed domains for browser-based cross-origin requests
	CorsOrigins []string `mapstructure:"cors_origins"`

	// RateLimit: DDoS protection logic using a token-bucket algorithm
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	// Enabled: Global toggle for the rate limiting middleware
	Enabled bool `mapstructure:"enabled"`

	// Requests: Number of allowed requests per time window
	Requests int `mapstructure:"requests"`

	// Window: The timeframe for the request limit (e.g., "1s", "1m")
	Window string `mapstructure:"window"`

	// Burst: Temporary allowed spike capacity above the steady-rate limit
	Burst int `mapstructure:"burst"`
}
