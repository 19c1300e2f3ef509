package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	apperrors "testament/pkg/errors"
	"testament/pkg/models"
)

const (
	// EnvPrefix prefixes every environment override, e.g. TESTAMENT_FORMAT
	EnvPrefix = "TESTAMENT"

	// SourceDateEpochEnv is the reproducible-builds timestamp override
	SourceDateEpochEnv = "SOURCE_DATE_EPOCH"

	// ConfigName is the base name of the optional config file
	ConfigName = ".testament"
)

// New returns a viper instance with defaults and environment bindings applied
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("source_date_epoch", SourceDateEpochEnv, EnvPrefix+"_"+SourceDateEpochEnv)

	return v
}

// SetDefaults registers the default value of every setting
func SetDefaults(v *viper.Viper) {
	v.SetDefault("path", ".")
	v.SetDefault("include_untracked", false)
	v.SetDefault("source_date_epoch", "")
	v.SetDefault("package_version", "")
	v.SetDefault("trusted_branch", "")
	v.SetDefault("format", models.FormatTable)
	v.SetDefault("color", models.ColorAuto)
	v.SetDefault("log_level", "warn")
}

// GetConfigPath returns the per-user configuration directory
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "testament")
}

// Load reads the optional config file and decodes all settings.
// The file is looked up in the target path first, then in GetConfigPath.
func Load(v *viper.Viper) (*models.Settings, error) {
	v.SetConfigName(ConfigName)
	v.SetConfigType("yaml")
	if path := v.GetString("path"); path != "" {
		v.AddConfigPath(path)
	}
	if dir := GetConfigPath(); dir != "" {
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeConfigInvalid, "Failed to read config file").
				WithContext("file", v.ConfigFileUsed())
		}
	}

	var settings models.Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeConfigInvalid, "Failed to decode settings")
	}

	if err := Validate(&settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Validate checks enumerated settings
func Validate(s *models.Settings) error {
	switch s.Format {
	case models.FormatTable, models.FormatJSON, models.FormatYAML, models.FormatEnv:
	default:
		return apperrors.ConfigError("Unknown output format "+strconv.Quote(s.Format), "format")
	}

	switch s.Color {
	case models.ColorAuto, models.ColorAlways, models.ColorNever:
	default:
		return apperrors.ConfigError("Unknown color mode "+strconv.Quote(s.Color), "color")
	}

	return nil
}

// FallbackTime picks the timestamp used when no commit is available.
// An override holding a non-negative integer count of seconds since the
// epoch wins; anything else falls through to now().
func FallbackTime(override string, now func() time.Time) time.Time {
	if secs, ok := ParseEpoch(override); ok {
		return time.Unix(secs, 0).UTC()
	}
	return now()
}

// ParseEpoch parses a SOURCE_DATE_EPOCH style value
func ParseEpoch(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || secs < 0 {
		return 0, false
	}
	return secs, true
}

// FallbackClock binds the override in s to the wall clock
func FallbackClock(s *models.Settings) func() time.Time {
	return func() time.Time {
		return FallbackTime(s.SourceDateEpoch, time.Now)
	}
}
