// Package config loads the optional YAML configuration file that backs
// cmd/retrievalcore's flags, grounded on the teacher's single-file
// FileConfig/config_file.go schema.
package config

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the on-disk schema; every field is optional and, when
// zero-valued, leaves the corresponding flag/env default untouched.
type FileConfig struct {
	Topic        string  `yaml:"topic"`
	ArtifactsDir string  `yaml:"artifactsDir"`
	RecencyHours float64 `yaml:"recencyHours"`

	Retrieval struct {
		MinAccepted        int     `yaml:"minAccepted"`
		MaxAttempts        int     `yaml:"maxAttempts"`
		GlobalConcurrency  int     `yaml:"globalConcurrency"`
		PerHostConcurrency int     `yaml:"perHostConcurrency"`
		FetchTimeoutMs     int     `yaml:"fetchTimeoutMs"`
		TotalBudgetMs      int     `yaml:"totalBudgetMs"`
		MaxCandidates      int     `yaml:"maxCandidates"`
		ClusterThreshold   float64 `yaml:"clusterThreshold"`
		AttachThreshold    float64 `yaml:"attachThreshold"`
		MaxClusters        int     `yaml:"maxClusters"`
		UserAgent          string  `yaml:"userAgent"`
	} `yaml:"retrieval"`

	WebSearch struct {
		Enabled  bool   `yaml:"enabled"`
		APIKey   string `yaml:"key"`
		CX       string `yaml:"cx"`
		NewsOnly *bool  `yaml:"newsOnly"`
	} `yaml:"websearch"`

	WebNewsRSS struct {
		FeedURL string `yaml:"feedUrl"`
	} `yaml:"webnewsrss"`

	NewsAPI struct {
		Enabled bool   `yaml:"enabled"`
		APIKey  string `yaml:"key"`
	} `yaml:"newsapi"`

	EventRegistry struct {
		Enabled bool   `yaml:"enabled"`
		APIKey  string `yaml:"key"`
	} `yaml:"eventregistry"`

	MetricsPort int `yaml:"metricsPort"`
}

// LoadFile reads and parses a YAML config file. A missing path is not an
// error — callers treat a nil FileConfig as "use flag/env defaults".
func LoadFile(path string) (*FileConfig, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return &cfg, nil
}
