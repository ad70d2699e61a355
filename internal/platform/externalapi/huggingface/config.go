// Package huggingface provides a client for the Hugging Face datasets-server rows API.
package huggingface

import "time"

const (
	DefaultBaseURL = "https://datasets-server.huggingface.co"
	DefaultDataset = "mexwell/5m-trees-dataset"
)

// Config holds configuration for the datasets-server client.
type Config struct {
	BaseURL string        // e.g. "https://datasets-server.huggingface.co"
	Dataset string        // dataset id, e.g. "mexwell/5m-trees-dataset"
	Config  string        // dataset config name, usually "default"
	Split   string        // dataset split, usually "train"
	Token   string        // optional access token for gated datasets
	Timeout time.Duration // HTTP request timeout
}

// withDefaults fills empty fields with the public dataset settings.
func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Dataset == "" {
		c.Dataset = DefaultDataset
	}
	if c.Config == "" {
		c.Config = "default"
	}
	if c.Split == "" {
		c.Split = "train"
	}
	return c
}
