package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvDSN            = "DATABASE_DESTINO_URL"
	EnvDumpPath       = "GRUPOS_DUMP_PATH"
	EnvTable          = "GRUPOS_TABLE"
	EnvStorageKind    = "GRUPOS_STORAGE_KIND"
	EnvBatchSize      = "GRUPOS_BATCH_SIZE"
	EnvMetricsBackend = "METRICS_BACKEND"
	EnvPushgatewayURL = "PUSHGATEWAY_URL"
	EnvDatadogAddr    = "DD_AGENT_ADDR"
	EnvLogLevel       = "LOG_LEVEL"
)

// LoadOptions controls Load.
type LoadOptions struct {
	// ConfigPath is an optional JSON (.json) or YAML (.yaml, .yml) file.
	ConfigPath string

	// DotEnvPath is an optional .env file. A missing file is ignored.
	DotEnvPath string

	// LookupEnv reads the process environment. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Load builds a Pipeline from defaults, the config file and the
// environment. Values in the process environment win over the .env file.
// CLI flags are applied by the caller on the returned value.
func Load(opts LoadOptions) (Pipeline, error) {
	p := Default()

	if opts.ConfigPath != "" {
		if err := decodeFile(opts.ConfigPath, &p); err != nil {
			return Pipeline{}, err
		}
	}

	dotenv, err := readDotEnv(opts.DotEnvPath)
	if err != nil {
		return Pipeline{}, err
	}
	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	env := func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	if err := ApplyEnv(&p, env); err != nil {
		return Pipeline{}, err
	}
	return p, nil
}

// decodeFile overlays the file's values onto p; absent keys keep p's values.
func decodeFile(path string, p *Pipeline) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, p); err != nil {
			return fmt.Errorf("config: decode yaml %s: %w", path, err)
		}
	case ".json", "":
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(p); err != nil {
			return fmt.Errorf("config: decode json %s: %w", path, err)
		}
	default:
		return fmt.Errorf("config: unsupported config extension %q (want .json, .yaml or .yml)", filepath.Ext(path))
	}
	return nil
}

func readDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	m, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return m, nil
}

// ApplyEnv overrides p with the environment variables that are set.
func ApplyEnv(p *Pipeline, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str(EnvDSN, &p.Storage.DB.DSN)
	str(EnvTable, &p.Storage.DB.Table)
	str(EnvStorageKind, &p.Storage.Kind)
	str(EnvMetricsBackend, &p.Metrics.Backend)
	str(EnvPushgatewayURL, &p.Metrics.PushgatewayURL)
	str(EnvDatadogAddr, &p.Metrics.DatadogAddr)
	str(EnvLogLevel, &p.Log.Level)

	if v, ok := lookup(EnvDumpPath); ok && strings.TrimSpace(v) != "" {
		p.Source.Kind = "file"
		p.Source.File.Path = strings.TrimSpace(v)
	}

	if v, ok := lookup(EnvBatchSize); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvBatchSize, err)
		}
		p.Runtime.BatchSize = n
	}
	return nil
}
