package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type BatchCfg struct {
	ChunkSize       int  `yaml:"chunk_size" json:"chunk_size"`
	Workers         int  `yaml:"workers" json:"workers"`
	PreserveColumns bool `yaml:"preserve_columns" json:"preserve_columns"`
	MaxRequestRows  int  `yaml:"max_request_rows" json:"max_request_rows"`
}

type CacheCfg struct {
	Enabled    bool `yaml:"enabled" json:"enabled"`
	TTLSeconds int  `yaml:"ttl_seconds" json:"ttl_seconds"`
	L1Size     int  `yaml:"l1_size" json:"l1_size"`
}

type PipelineCfg struct {
	UseLibpostal bool     `yaml:"use_libpostal" json:"use_libpostal"`
	Batch        BatchCfg `yaml:"batch" json:"batch"`
	Cache        CacheCfg `yaml:"cache" json:"cache"`
}

var C = PipelineCfg{
	Batch: BatchCfg{ChunkSize: 500, Workers: 4, MaxRequestRows: 20000},
	Cache: CacheCfg{Enabled: true, TTLSeconds: 3600, L1Size: 10000},
}

func Load(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, &C); err != nil {
		return err
	}
	// ENV overrides
	switch os.Getenv("USE_LIBPOSTAL") {
	case "0":
		C.UseLibpostal = false
	case "1":
		C.UseLibpostal = true
	}
	if v := os.Getenv("BATCH_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			C.Batch.Workers = n
		}
	}
	return nil
}

func CacheTTL() time.Duration { return time.Duration(C.Cache.TTLSeconds) * time.Second }

func RequestTimeout() time.Duration { return 1500 * time.Millisecond }
