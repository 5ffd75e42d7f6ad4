package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

type Neo4jConfig struct {
	URI                       string `toml:"uri"`
	User                      string `toml:"user"`
	Password                  string `toml:"password"`
	Database                  string `toml:"database"`
	MaxConnectionPoolSize     int    `toml:"max_connection_pool_size"`
	AcquisitionTimeoutSeconds int    `toml:"acquisition_timeout_seconds"`
}

type ServerConfig struct {
	Port string `toml:"port"`
	// Mode is passed to gin.SetMode: debug, release or test.
	Mode string `toml:"mode"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // console or json
}

type RecommendConfig struct {
	// CandidatePool bounds each hybrid branch before merging.
	CandidatePool int `toml:"candidate_pool"`
}

type BreakerConfig struct {
	Enabled          bool   `toml:"enabled"`
	FailureThreshold uint32 `toml:"failure_threshold"`
	OpenSeconds      int    `toml:"open_seconds"`
}

type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

type ExplainPrompts struct {
	// Recommendations is a fmt template taking the reader description and
	// the numbered book list, in that order.
	Recommendations string `toml:"recommendations"`
}

type Config struct {
	Neo4j     Neo4jConfig     `toml:"neo4j"`
	Server    ServerConfig    `toml:"server"`
	Log       LogConfig       `toml:"log"`
	Recommend RecommendConfig `toml:"recommend"`
	Breaker   BreakerConfig   `toml:"breaker"`
	LLM       LLMConfig       `toml:"llm"`
	Explain   ExplainPrompts  `toml:"explain"`
}

func Default() *Config {
	return &Config{
		Neo4j: Neo4jConfig{
			URI:                       "bolt://localhost:7687",
			User:                      "neo4j",
			MaxConnectionPoolSize:     10,
			AcquisitionTimeoutSeconds: 30,
		},
		Server:    ServerConfig{Port: "8080", Mode: "release"},
		Log:       LogConfig{Level: "info", Format: "console"},
		Recommend: RecommendConfig{CandidatePool: 500},
		Breaker:   BreakerConfig{Enabled: true, FailureThreshold: 5, OpenSeconds: 30},
	}
}

// Load reads a TOML file over Default(). Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault behaves like Load but falls back to Default() when the file
// does not exist. Parse errors are still returned.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// ApplyEnv overrides file values with environment variables when present.
func (c *Config) ApplyEnv() {
	setString(&c.Neo4j.URI, "NEO4J_URI")
	setString(&c.Neo4j.User, "NEO4J_USER")
	setString(&c.Neo4j.Password, "NEO4J_PASSWORD")
	setString(&c.Neo4j.Database, "NEO4J_DATABASE")
	setInt(&c.Neo4j.MaxConnectionPoolSize, "NEO4J_MAX_POOL_SIZE")
	setString(&c.Server.Port, "PORT")
	setString(&c.Server.Mode, "GIN_MODE")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")
	setInt(&c.Recommend.CandidatePool, "RECOMMEND_CANDIDATE_POOL")
	setString(&c.LLM.Provider, "LLM_PROVIDER")
	setString(&c.LLM.Model, "LLM_MODEL")
	setString(&c.LLM.APIKey, "LLM_API_KEY")
	setString(&c.LLM.BaseURL, "LLM_BASE_URL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
