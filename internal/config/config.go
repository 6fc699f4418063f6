package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full pipeline configuration. It is loaded once at startup
// and passed by value to constructors; nothing mutates it after load.
type Config struct {
	Env         string `mapstructure:"env"`
	LogLevel    string `mapstructure:"log_level"`
	ServiceName string `mapstructure:"service_name"`

	ESPN      ESPNConfig      `mapstructure:"espn"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Swap      SwapConfig      `mapstructure:"swap"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
}

// ESPNConfig carries credentials and identifiers for the ESPN fantasy API.
// ESPN_S2 and SWID are optional for public leagues.
type ESPNConfig struct {
	S2             string        `mapstructure:"s2"`
	SWID           string        `mapstructure:"swid"`
	LeagueID       int           `mapstructure:"league_id"`
	TeamID         int           `mapstructure:"team_id"`
	Season         int           `mapstructure:"season"`
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	FreeAgentLimit int           `mapstructure:"free_agent_limit"`
}

// OpenAIConfig configures the narrative generation client.
type OpenAIConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	Model          string        `mapstructure:"model"`
	MaxTokens      int           `mapstructure:"max_tokens"`
	Temperature    float64       `mapstructure:"temperature"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// TopInsights bounds how many top-ranked recommendations receive
	// narrative commentary per run.
	TopInsights int `mapstructure:"top_insights"`
}

// RedisConfig configures the optional response/snapshot cache.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	Enabled  bool   `mapstructure:"enabled"`
	DB       int    `mapstructure:"db"`
}

// StorageConfig configures the snapshot directories and retention policy.
type StorageConfig struct {
	DataDir       string `mapstructure:"data_dir"`
	OutputDir     string `mapstructure:"output_dir"`
	ReportsDir    string `mapstructure:"reports_dir"`
	AllStarFile   string `mapstructure:"all_star_file"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// AnalysisConfig carries ranking settings and the value-score weights.
type AnalysisConfig struct {
	MaxRecommendations int                `mapstructure:"max_recommendations"`
	ValueWeights       ValueWeights       `mapstructure:"value_weights"`
	PositionMultiplier map[string]float64 `mapstructure:"position_multiplier"`
}

// ValueWeights is the named weight set for the composite value score.
type ValueWeights struct {
	FantasyPointsPerGame float64 `mapstructure:"fantasy_points_per_game"`
	Consistency          float64 `mapstructure:"consistency"`
	Upside               float64 `mapstructure:"upside"`
	PositionScarcity     float64 `mapstructure:"position_scarcity"`
	InjuryRisk           float64 `mapstructure:"injury_risk"`
}

// ScoringConfig maps stat categories to league point values.
type ScoringConfig struct {
	Categories map[string]float64 `mapstructure:"categories"`
}

// SwapConfig carries the swap evaluator classification thresholds.
type SwapConfig struct {
	MustSwapScore     float64 `mapstructure:"must_swap_score"`
	ConsiderSwapScore float64 `mapstructure:"consider_swap_score"`
	MaxTargets        int     `mapstructure:"max_targets"`
}

// PipelineConfig bounds a run and configures the scheduler.
type PipelineConfig struct {
	RunTimeout       time.Duration `mapstructure:"run_timeout"`
	FullAnalysisCron string        `mapstructure:"full_analysis_cron"`
	QuickCheckCron   string        `mapstructure:"quick_check_cron"`
	CleanupCron      string        `mapstructure:"cleanup_cron"`
	QuickCheckLimit  int           `mapstructure:"quick_check_limit"`
}

// DashboardConfig configures the read-only HTTP API.
type DashboardConfig struct {
	Port string `mapstructure:"port"`
}

// LoadConfig reads configuration from environment variables and an optional
// YAML file (FHP_CONFIG_FILE or ./config.yaml), applying defaults for
// everything not set explicitly.
func LoadConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("FHP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile := v.GetString("config_file"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env and defaults cover everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the invariants a run depends on.
func (c *Config) Validate() error {
	if c.ESPN.LeagueID == 0 {
		return fmt.Errorf("espn.league_id is required")
	}
	if c.ESPN.Season == 0 {
		return fmt.Errorf("espn.season is required")
	}
	if c.Analysis.MaxRecommendations <= 0 {
		return fmt.Errorf("analysis.max_recommendations must be positive")
	}
	if len(c.Scoring.Categories) == 0 {
		return fmt.Errorf("scoring.categories must not be empty")
	}
	return nil
}

// IsDevelopment reports whether the pipeline runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("service_name", "fantasy-hockey-pipeline")

	// Credentials and identifiers default empty so the env bindings are
	// registered; Validate catches the genuinely required ones.
	v.SetDefault("espn.s2", "")
	v.SetDefault("espn.swid", "")
	v.SetDefault("espn.league_id", 0)
	v.SetDefault("espn.team_id", 0)
	v.SetDefault("openai.api_key", "")
	v.SetDefault("redis.password", "")

	v.SetDefault("espn.base_url", "https://lm-api-reads.fantasy.espn.com")
	v.SetDefault("espn.season", 2026)
	v.SetDefault("espn.request_timeout", 30*time.Second)
	v.SetDefault("espn.free_agent_limit", 500)

	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "gpt-3.5-turbo")
	v.SetDefault("openai.max_tokens", 200)
	v.SetDefault("openai.temperature", 0.7)
	v.SetDefault("openai.request_timeout", 60*time.Second)
	v.SetDefault("openai.top_insights", 5)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 4)

	v.SetDefault("storage.data_dir", "data")
	v.SetDefault("storage.output_dir", "output")
	v.SetDefault("storage.reports_dir", "reports")
	v.SetDefault("storage.all_star_file", "data/all_star_appearances.json")
	v.SetDefault("storage.retention_days", 7)

	v.SetDefault("analysis.max_recommendations", 15)
	v.SetDefault("analysis.value_weights.fantasy_points_per_game", 0.4)
	v.SetDefault("analysis.value_weights.consistency", 0.25)
	v.SetDefault("analysis.value_weights.upside", 0.25)
	v.SetDefault("analysis.value_weights.position_scarcity", 0.1)
	v.SetDefault("analysis.value_weights.injury_risk", 0.1)
	v.SetDefault("analysis.position_multiplier", map[string]float64{
		"Goalie":     0.6,
		"Defense":    1.15,
		"Center":     1.0,
		"Left Wing":  1.0,
		"Right Wing": 1.0,
	})

	// League scoring settings: skater categories first, goaltender after.
	v.SetDefault("scoring.categories", map[string]float64{
		"goals":              2.0,
		"assists":            1.0,
		"powerplay_points":   0.5,
		"shorthanded_points": 0.5,
		"shots_on_goal":      0.2,
		"hits":               0.4,
		"blocks":             0.8,
		"wins":               4.0,
		"goals_against":      -1.0,
		"saves":              0.2,
		"shutouts":           3.0,
		"overtime_losses":    1.0,
	})

	v.SetDefault("swap.must_swap_score", 15.0)
	v.SetDefault("swap.consider_swap_score", 5.0)
	v.SetDefault("swap.max_targets", 3)

	v.SetDefault("pipeline.run_timeout", 10*time.Minute)
	v.SetDefault("pipeline.full_analysis_cron", "0 12 * * 1")
	v.SetDefault("pipeline.quick_check_cron", "0 9 * * *")
	v.SetDefault("pipeline.cleanup_cron", "0 23 * * 0")
	v.SetDefault("pipeline.quick_check_limit", 5)

	v.SetDefault("dashboard.port", "8050")
}
