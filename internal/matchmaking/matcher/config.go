package matcher

import (
	"time"

	"pet-matchmaker/internal/common/config"
)

type Config struct {
	Timeout            time.Duration
	MinScore           int
	Temperature        float64
	MaxTokens          int
	CareAdviceCacheTTL time.Duration
}

func LoadConfig(llm config.LLMConfig, matching config.MatchingConfig) *Config {
	return &Config{
		Timeout:            config.GetDuration(llm.Timeout),
		MinScore:           matching.MinScore,
		Temperature:        llm.Temperature,
		MaxTokens:          llm.MaxTokens,
		CareAdviceCacheTTL: config.GetDuration(matching.CareAdviceCacheTTL),
	}
}

func (c *Config) withDefaults() *Config {
	out := *c
	if out.Timeout <= 0 {
		out.Timeout = 60 * time.Second
	}
	if out.MinScore <= 0 {
		out.MinScore = 60
	}
	if out.CareAdviceCacheTTL <= 0 {
		out.CareAdviceCacheTTL = 24 * time.Hour
	}
	return &out
}
