package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// RecommenderConfig describes the external recommendation and analytics
// integration. Kept in a TOML file so deployments can repoint the upstream
// without rebuilding.
type RecommenderConfig struct {
	Recommender RecommenderEndpoints `toml:"recommender"`
	Timeouts    TimeoutConfig        `toml:"timeouts"`
}

// RecommenderEndpoints contains the upstream service URLs.
type RecommenderEndpoints struct {
	SuggestionURL string `toml:"suggestion_url"`
	AnalyticsURL  string `toml:"analytics_url"`
}

// TimeoutConfig bounds the external calls so they never hang a request path.
type TimeoutConfig struct {
	FetchSeconds   int `toml:"fetch_seconds"`
	RefreshSeconds int `toml:"refresh_seconds"`
}

// LoadRecommenderConfig loads the integration config from a TOML file,
// falling back to defaults when the file is absent.
func LoadRecommenderConfig(filename string) (*RecommenderConfig, error) {
	config := defaultRecommenderConfig()
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return config, nil
	}
	if _, err := toml.DecodeFile(filename, config); err != nil {
		return nil, fmt.Errorf("failed to load recommender config: %w", err)
	}
	if config.Timeouts.FetchSeconds <= 0 {
		config.Timeouts.FetchSeconds = 5
	}
	if config.Timeouts.RefreshSeconds <= 0 {
		config.Timeouts.RefreshSeconds = 10
	}
	return config, nil
}

func defaultRecommenderConfig() *RecommenderConfig {
	return &RecommenderConfig{
		Recommender: RecommenderEndpoints{
			SuggestionURL: "http://127.0.0.1:8000/receive-business",
			AnalyticsURL:  "http://127.0.0.1:8000",
		},
		Timeouts: TimeoutConfig{
			FetchSeconds:   5,
			RefreshSeconds: 10,
		},
	}
}
