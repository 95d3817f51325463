package filler

import (
	"encoding/json"
	"errors"
	"os"
)

// Config holds the Google credentials and optional integrations.
type Config struct {
	// CredentialsFile is a service account key or an authorized user JSON file.
	CredentialsFile string `json:"credentials_file"`
	// ImageFolderID is the Drive folder temporary images are uploaded to.
	ImageFolderID string     `json:"image_folder_id,omitempty"`
	LLM           *LLMConfig `json:"llm,omitempty"`
	ServerAddr    string     `json:"server_addr,omitempty"`
}

// LLMConfig configures the model used for {prompt: ...} values (optional).
type LLMConfig struct {
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
	APIKey   string `json:"api_key,omitempty"`
	BaseURL  string `json:"base_url,omitempty"`
}

// LoadConfig reads JSON config from disk.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if cfg.CredentialsFile == "" {
		return Config{}, errors.New("config must include credentials_file")
	}
	return cfg, nil
}
