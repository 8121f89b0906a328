package config

// S3Config controls archiving of exported PDFs
type S3Config struct {
	Enabled   bool
	Region    string `validate:"required_if=Enabled true"`
	Bucket    string `validate:"required_if=Enabled true"`
	KeyPrefix string `mapstructure:"key_prefix"`

	// PresignExpiryDuration is parsed with time.ParseDuration, defaults to 30m
	PresignExpiryDuration string `mapstructure:"presign_expiry_duration"`
}
