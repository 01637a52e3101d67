package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"gistaudit.dev/gistaudit/internal/audit"
	gaerrors "gistaudit.dev/gistaudit/internal/errors"
	"gistaudit.dev/gistaudit/internal/gist"
)

// DefaultEnvFile is read from the working directory when no file is given
const DefaultEnvFile = ".env"

// Keys and the environment variables they are read from
const (
	KeyUsername      = "username"
	KeyPassword      = "password"
	KeyAPIURL        = "api_url"
	KeyTokenAuth     = "token_auth"
	KeyBranchDiff    = "branch_diff"
	KeyRepoDir       = "repo_dir"
	KeyLogFile       = "log_file"
	KeyReportTimeout = "report_timeout"
	KeyAPITimeout    = "api_timeout"
)

var envNames = map[string]string{
	KeyUsername:      "USERNAME",
	KeyPassword:      "PASSWORD",
	KeyAPIURL:        "GISTAUDIT_API_URL",
	KeyTokenAuth:     "GISTAUDIT_TOKEN_AUTH",
	KeyBranchDiff:    "GISTAUDIT_BRANCH_DIFF",
	KeyRepoDir:       "GISTAUDIT_REPO_DIR",
	KeyLogFile:       "GISTAUDIT_LOG_FILE",
	KeyReportTimeout: "GISTAUDIT_REPORT_TIMEOUT",
	KeyAPITimeout:    "GISTAUDIT_API_TIMEOUT",
}

// Config is the resolved runtime configuration
type Config struct {
	Username      string        `mapstructure:"username"`
	Password      string        `mapstructure:"password"`
	APIURL        string        `mapstructure:"api_url"`
	TokenAuth     bool          `mapstructure:"token_auth"`
	BranchDiff    string        `mapstructure:"branch_diff"`
	RepoDir       string        `mapstructure:"repo_dir"`
	LogFile       string        `mapstructure:"log_file"`
	ReportTimeout time.Duration `mapstructure:"report_timeout"`
	APITimeout    time.Duration `mapstructure:"api_timeout"`

	// EnvFileUsed is the dotenv file that was read, if any
	EnvFileUsed string `mapstructure:"-"`
}

// Defaults returns the values used when neither file nor environment set a key
func Defaults() map[string]any {
	return map[string]any{
		KeyTokenAuth:     false,
		KeyBranchDiff:    audit.DefaultBranchDiffCommand,
		KeyReportTimeout: audit.DefaultReportTimeout,
		KeyAPITimeout:    gist.DefaultAPITimeout,
	}
}

// Load reads envFile (dotenv format) and the process environment, the latter
// taking precedence. An empty envFile reads DefaultEnvFile if it exists.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("env")

	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}
	for key, env := range envNames {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	path := envFile
	if path == "" {
		if _, err := os.Stat(DefaultEnvFile); err == nil {
			path = DefaultEnvFile
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read configuration %s: %w", path, err)
		}
		// dotenv files use the environment names, e.g. GISTAUDIT_LOG_FILE
		for key, env := range envNames {
			fileKey := strings.ToLower(env)
			if fileKey != key && v.InConfig(fileKey) {
				v.SetDefault(key, v.Get(fileKey))
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	cfg.Username = strings.TrimSpace(cfg.Username)
	cfg.EnvFileUsed = v.ConfigFileUsed()

	return &cfg, nil
}

// Validate fails fast when a required setting is missing
func (c *Config) Validate() error {
	var missing []string
	if c.Username == "" {
		missing = append(missing, envNames[KeyUsername])
	}
	if c.Password == "" {
		missing = append(missing, envNames[KeyPassword])
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: set %s", gaerrors.ErrMissingCredentials, strings.Join(missing, " and "))
	}
	if c.ReportTimeout < 0 || c.APITimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	return nil
}

// ClientOptions returns the options for the authenticated gist client
func (c *Config) ClientOptions() gist.ClientOptions {
	return gist.ClientOptions{
		Username:  c.Username,
		Secret:    c.Password,
		TokenAuth: c.TokenAuth,
		BaseURL:   c.APIURL,
	}
}
