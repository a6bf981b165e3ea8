package config

import "time"

// Config is the root application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Files    FilesConfig    `yaml:"files"`
	Forms    FormsConfig    `yaml:"forms"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path        string        `yaml:"path"         env:"QMS_DATABASE_PATH"  env-default:"qb_academy.db"`
	BusyTimeout time.Duration `yaml:"busy_timeout" env:"QMS_BUSY_TIMEOUT"   env-default:"30s"`
}

// FilesConfig holds storage-tree settings. MaxUploadSize is enforced at the
// caller boundary (CLI/UI), not by the file store itself.
type FilesConfig struct {
	Dir           string `yaml:"dir"             env:"QMS_FILES_DIR"       env-default:"uploaded_files"`
	MaxUploadSize int64  `yaml:"max_upload_size" env:"QMS_MAX_UPLOAD_SIZE" env-default:"52428800"`
}

// FormsConfig holds form-data store settings. SaveDelay is the deliberate
// pause before each write to spread contention bursts from rapid sequential
// saves; it is a pragmatic mitigation, not a correctness guarantee.
type FormsConfig struct {
	SaveDelay time.Duration `yaml:"save_delay" env:"QMS_FORMS_SAVE_DELAY" env-default:"100ms"`
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	MinPasswordLen int `yaml:"min_password_len" env:"QMS_MIN_PASSWORD_LEN" env-default:"6"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"QMS_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"QMS_LOG_FORMAT" env-default:"text"`
}
