package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"paperlens/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	Paths    PathsConfig
	Prompts  PromptsConfig
	Outputs  OutputsConfig
	LLM      LLMConfig
	Pipeline PipelineConfig
	Pacing   PacingConfig
	S3       S3Config
	Log      LogConfig
}

// PathsConfig holds the working directories of the pipeline.
type PathsConfig struct {
	InputPDFs      string `mapstructure:"input_pdfs"`
	Texts          string `mapstructure:"texts"`
	ProcessedTexts string `mapstructure:"processed_texts"`
	UsedPDFs       string `mapstructure:"used_pdfs"`
}

// All returns every working directory in creation order.
func (p *PathsConfig) All() []string {
	return []string{p.InputPDFs, p.Texts, p.ProcessedTexts, p.UsedPDFs}
}

// PromptsConfig holds the instruction prompt file locations.
type PromptsConfig struct {
	System     string `mapstructure:"system"`
	Validation string `mapstructure:"validation"`
	Quality    string `mapstructure:"quality"`
	Content    string `mapstructure:"content"`
	Cache      bool   `mapstructure:"cache"`
}

// OutputsConfig holds the CSV destinations, one pair per step family.
type OutputsConfig struct {
	Assessment domain.OutputPair
	Quality    domain.OutputPair
	Content    domain.OutputPair
	Workbook   string `mapstructure:"workbook"`
}

// ForStrategy returns the output pairs written by the given strategy, keyed by sheet name.
func (o *OutputsConfig) ForStrategy(name domain.StrategyName) map[string]domain.OutputPair {
	if name == domain.StrategyDual {
		return map[string]domain.OutputPair{
			string(domain.StepQuality): o.Quality,
			string(domain.StepContent): o.Content,
		}
	}
	return map[string]domain.OutputPair{string(domain.StepAssessment): o.Assessment}
}

// Files returns every configured output file path.
func (o *OutputsConfig) Files() []string {
	return []string{
		o.Assessment.Formatted, o.Assessment.Unformatted,
		o.Quality.Formatted, o.Quality.Unformatted,
		o.Content.Formatted, o.Content.Unformatted,
		o.Workbook,
	}
}

// LLMConfig holds settings for the model provider.
type LLMConfig struct {
	Provider        string `mapstructure:"provider"`
	APIKey          string `mapstructure:"api_key"`
	Model           string `mapstructure:"model"`
	BaseURL         string `mapstructure:"base_url"`
	ThinkingBudget  int    `mapstructure:"thinking_budget"`
	IncludeThoughts bool   `mapstructure:"include_thoughts"`
	TimeoutSecs     int    `mapstructure:"timeout_secs"`
}

// Timeout returns the per-call timeout; zero means the transport default.
func (l *LLMConfig) Timeout() time.Duration {
	return time.Duration(l.TimeoutSecs) * time.Second
}

// PipelineConfig selects the processing strategy.
type PipelineConfig struct {
	Strategy          domain.StrategyName `mapstructure:"strategy"`
	ValidationEnabled bool                `mapstructure:"validation_enabled"`
}

// PacingConfig holds the delay inserted between LLM calls and documents.
type PacingConfig struct {
	Mode      string `mapstructure:"mode"`
	DelaySecs int    `mapstructure:"delay_secs"`
}

// Delay returns the configured delay as a duration.
func (p *PacingConfig) Delay() time.Duration {
	return time.Duration(p.DelaySecs) * time.Second
}

// S3Config holds AWS S3 settings for archiving run outputs.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// Enabled reports whether result archiving is configured.
func (s *S3Config) Enabled() bool {
	return s.Bucket != ""
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Debug reports whether debug logging is on.
func (l *LogConfig) Debug() bool {
	return strings.EqualFold(l.Level, "debug")
}

const (
	PacingModeSleep   = "sleep"
	PacingModeLimiter = "limiter"
)

// Validate checks the settings that would otherwise fail late in a run.
func (c *Config) Validate() error {
	if !c.Pipeline.Strategy.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownStrategy, c.Pipeline.Strategy)
	}
	switch c.Pacing.Mode {
	case PacingModeSleep, PacingModeLimiter:
	default:
		return fmt.Errorf("unknown pacing mode: %q", c.Pacing.Mode)
	}
	if c.Pacing.DelaySecs < 0 {
		return fmt.Errorf("pacing delay must not be negative: %d", c.Pacing.DelaySecs)
	}
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return domain.ErrEmptyAPIKey
	}
	return nil
}

// Load reads configuration from an optional .env file, an optional config file named by
// PAPERLENS_CONFIG_FILE, and environment variables with the PAPERLENS_ prefix.
func Load() (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("PAPERLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path := os.Getenv("PAPERLENS_CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	// Bind environment variables explicitly for nested keys
	for _, key := range v.AllKeys() {
		env := "PAPERLENS_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, env)
	}

	return fromViper(v), nil
}

func setDefaults(v *viper.Viper) {
	// Paths relative to the working directory, as the batch scripts have always used them
	v.SetDefault("paths.input_pdfs", "../new_pdf")
	v.SetDefault("paths.texts", "../generated_texts")
	v.SetDefault("paths.processed_texts", "../used_texts")
	v.SetDefault("paths.used_pdfs", "../used_pdf")

	// Prompt defaults
	v.SetDefault("prompts.system", "../system_prompt.txt")
	v.SetDefault("prompts.validation", "../validation_prompt.txt")
	v.SetDefault("prompts.quality", "../quality_prompt.txt")
	v.SetDefault("prompts.content", "../content_prompt.txt")
	v.SetDefault("prompts.cache", false)

	// Output defaults
	v.SetDefault("outputs.assessment.formatted", "./GeminiOutput.csv")
	v.SetDefault("outputs.assessment.unformatted", "./GeminiOutput_unformatted.csv")
	v.SetDefault("outputs.quality.formatted", "./Quality_Output.csv")
	v.SetDefault("outputs.quality.unformatted", "./Quality_Output_unformatted.csv")
	v.SetDefault("outputs.content.formatted", "./Content_Output.csv")
	v.SetDefault("outputs.content.unformatted", "./Content_Output_unformatted.csv")
	v.SetDefault("outputs.workbook", "./Results.xlsx")

	// LLM defaults
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gemini-2.5-pro")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.thinking_budget", 5120)
	v.SetDefault("llm.include_thoughts", true)
	v.SetDefault("llm.timeout_secs", 0)

	// Pipeline defaults
	v.SetDefault("pipeline.strategy", string(domain.StrategyValidated))
	v.SetDefault("pipeline.validation_enabled", true)

	// Pacing defaults
	v.SetDefault("pacing.mode", PacingModeSleep)
	v.SetDefault("pacing.delay_secs", 30)

	// S3 defaults (archiving disabled while bucket is empty)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.prefix", "paperlens")

	// Log defaults
	v.SetDefault("log.level", "info")
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Paths = PathsConfig{
		InputPDFs:      v.GetString("paths.input_pdfs"),
		Texts:          v.GetString("paths.texts"),
		ProcessedTexts: v.GetString("paths.processed_texts"),
		UsedPDFs:       v.GetString("paths.used_pdfs"),
	}
	cfg.Prompts = PromptsConfig{
		System:     v.GetString("prompts.system"),
		Validation: v.GetString("prompts.validation"),
		Quality:    v.GetString("prompts.quality"),
		Content:    v.GetString("prompts.content"),
		Cache:      v.GetBool("prompts.cache"),
	}
	cfg.Outputs = OutputsConfig{
		Assessment: domain.OutputPair{
			Formatted:   v.GetString("outputs.assessment.formatted"),
			Unformatted: v.GetString("outputs.assessment.unformatted"),
		},
		Quality: domain.OutputPair{
			Formatted:   v.GetString("outputs.quality.formatted"),
			Unformatted: v.GetString("outputs.quality.unformatted"),
		},
		Content: domain.OutputPair{
			Formatted:   v.GetString("outputs.content.formatted"),
			Unformatted: v.GetString("outputs.content.unformatted"),
		},
		Workbook: v.GetString("outputs.workbook"),
	}
	cfg.LLM = LLMConfig{
		Provider:        v.GetString("llm.provider"),
		APIKey:          v.GetString("llm.api_key"),
		Model:           v.GetString("llm.model"),
		BaseURL:         v.GetString("llm.base_url"),
		ThinkingBudget:  v.GetInt("llm.thinking_budget"),
		IncludeThoughts: v.GetBool("llm.include_thoughts"),
		TimeoutSecs:     v.GetInt("llm.timeout_secs"),
	}
	cfg.Pipeline = PipelineConfig{
		Strategy:          domain.StrategyName(strings.ToLower(v.GetString("pipeline.strategy"))),
		ValidationEnabled: v.GetBool("pipeline.validation_enabled"),
	}
	cfg.Pacing = PacingConfig{
		Mode:      strings.ToLower(v.GetString("pacing.mode")),
		DelaySecs: v.GetInt("pacing.delay_secs"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
		Prefix:    v.GetString("s3.prefix"),
	}
	cfg.Log = LogConfig{
		Level: v.GetString("log.level"),
	}
	return cfg
}
