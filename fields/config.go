package fields

import "golang.org/x/crypto/bcrypt"

// Config carries everything hawiya reads at process start. It is loaded once
// in cli and treated as immutable for the lifetime of the process.
type Config struct {
	Port         int    `yaml:"port" json:"port"`
	IsDebug      bool   `yaml:"is_debug" json:"is_debug"`
	DatabasePath string `yaml:"database_path" json:"database_path"`
	JWTKey       string `yaml:"jwt_key" json:"jwt_key"`

	GoogleClientID     string `yaml:"google_client_id" json:"google_client_id"`
	GoogleClientSecret string `yaml:"google_client_secret" json:"google_client_secret"`
	GoogleRedirectURL  string `yaml:"google_redirect_url" json:"google_redirect_url"`

	// FrontendURL is where the Google callback sends the browser back to,
	// carrying either token+userId or an error query parameter.
	FrontendURL string `yaml:"frontend_url" json:"frontend_url"`

	PasswordMinLength  int `yaml:"password_min_length" json:"password_min_length"`
	PasswordMinClasses int `yaml:"password_min_classes" json:"password_min_classes"`
	BcryptCost         int `yaml:"bcrypt_cost" json:"bcrypt_cost"`

	// HashWorkers bounds how many bcrypt computations may run at once so a
	// burst of logins cannot monopolize every scheduler thread.
	HashWorkers int `yaml:"hash_workers" json:"hash_workers"`

	Cors string `yaml:"cors" json:"cors"`

	LogSamplingTickMs  int `yaml:"log_sampling_tick_ms" json:"log_sampling_tick_ms"`
	LogSamplingAfterMs int `yaml:"log_sampling_after_ms" json:"log_sampling_after_ms"`
}

// Defaults fills zero values in-place. Call it exactly once, right after
// decoding the config file.
func (c *Config) Defaults() {
	if c.Port == 0 {
		c.Port = 8000
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "hawiya.db"
	}
	if c.FrontendURL == "" {
		c.FrontendURL = "http://localhost:3000"
	}
	if c.PasswordMinLength == 0 {
		c.PasswordMinLength = 8
	}
	if c.PasswordMinClasses == 0 {
		c.PasswordMinClasses = 4
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = bcrypt.DefaultCost
	}
	if c.HashWorkers == 0 {
		c.HashWorkers = 4
	}
	if c.Cors == "" {
		c.Cors = "*"
	}
}

// Policy derives the password policy from the configured thresholds.
func (c Config) Policy() PasswordPolicy {
	return PasswordPolicy{MinLength: c.PasswordMinLength, MinClasses: c.PasswordMinClasses}
}
