package models

// Settings holds the resolved configuration for one invocation
type Settings struct {
	Path             string `mapstructure:"path" yaml:"path"`
	IncludeUntracked bool   `mapstructure:"include_untracked" yaml:"include_untracked"`
	SourceDateEpoch  string `mapstructure:"source_date_epoch" yaml:"source_date_epoch"`
	PackageVersion   string `mapstructure:"package_version" yaml:"package_version"`
	TrustedBranch    string `mapstructure:"trusted_branch" yaml:"trusted_branch"`
	Format           string `mapstructure:"format" yaml:"format"`
	Color            string `mapstructure:"color" yaml:"color"`
	LogLevel         string `mapstructure:"log_level" yaml:"log_level"`
}

// Output formats understood by the show command
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatEnv   = "env"
)

// Color modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)
