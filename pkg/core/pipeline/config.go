package pipeline

import (
	"log"
	"os"

	"gopkg.in/yaml.v2"
)

// Config is the runtime configuration read from config/pipeline.yaml.
// Credentials never live here; those come from the environment.
type Config struct {
	Provider string `yaml:"provider"`  // classification collaborator backend
	Model    string `yaml:"model"`     // optional model override
	Workers  int    `yaml:"workers"`   // parallel stage width
	CacheDir string `yaml:"cache_dir"` // file fallback for the classification cache
}

// LoadConfig reads a YAML config file. A missing file yields the defaults;
// a malformed one is logged and also yields the defaults.
func LoadConfig(path string) Config {
	cfg := Config{
		Provider: "gemini",
		Workers:  defaultExtractWorkers,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Printf("[Config] %s unparseable, using defaults: %v", path, err)
		return Config{Provider: "gemini", Workers: defaultExtractWorkers}
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultExtractWorkers
	}
	return cfg
}
