// Package config loads the settings of the parbench command.
package config

import (
	"time"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/exascience/parbench"
	"github.com/exascience/parbench/parallel"
)

type (
	// Config holds the worker pool settings shared by all exercises, and
	// the batch sizes of the individual exercises.
	Config struct {
		// Workers is the pool size; 0 selects runtime.GOMAXPROCS(0).
		Workers     int           `json:",default=0,range=[0:]"`
		Mode        string        `json:",default=cpu,options=cpu|io"`
		Schedule    string        `json:",default=dynamic,options=dynamic|static"`
		ItemTimeout time.Duration `json:",optional"`
		Tolerance   float64       `json:",default=0.000001"`
		Seed        uint64        `json:",default=42"`

		Images  ImagesConf
		Vectors VectorsConf
		Search  SearchConf
		Fall    FallConf

		Log logx.LogConf
	}

	// ImagesConf configures the grayscale exercise. If OutputDir is set,
	// converted images are written there.
	ImagesConf struct {
		Count     int    `json:",default=4,range=[0:]"`
		Width     int    `json:",default=512,range=[1:]"`
		Height    int    `json:",default=512,range=[1:]"`
		OutputDir string `json:",optional"`
	}

	// VectorsConf configures the vector sum exercise.
	VectorsConf struct {
		Count  int `json:",default=8,range=[0:]"`
		Size   int `json:",default=200000,range=[0:]"`
		Rounds int `json:",default=20,range=[0:]"`
	}

	// SearchConf configures the linear search exercise. One benchmark is
	// run per target; an empty Targets selects 42, 100, 999, and 1.
	SearchConf struct {
		Count   int   `json:",default=8,range=[0:]"`
		Size    int   `json:",default=1000000,range=[0:]"`
		Targets []int `json:",optional"`
	}

	// FallConf configures the fall simulation exercise.
	FallConf struct {
		Count   int     `json:",default=10,range=[0:]"`
		Step    float64 `json:",default=0.001"`
		MaxTime float64 `json:",default=100"`
	}
)

// DefaultTargets are the search targets used when none are configured.
var DefaultTargets = []int{42, 100, 999, 1}

// Load reads the configuration file at path. The format follows the file
// extension (.json, .yaml, .yml, or .toml); ${VAR} references are
// expanded from the environment.
func Load(path string) (Config, error) {
	var c Config
	if err := conf.Load(path, &c, conf.UseEnv()); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Default returns the configuration used when no file is given.
func Default() Config {
	var c Config
	if err := conf.LoadFromJsonBytes([]byte("{}"), &c); err != nil {
		panic(err)
	}
	return c
}

// Pool returns the worker pool settings described by c.
func (c Config) Pool() (parallel.Config, error) {
	mode, err := parbench.ParseMode(c.Mode)
	if err != nil {
		return parallel.Config{}, err
	}
	schedule, err := parbench.ParseSchedule(c.Schedule)
	if err != nil {
		return parallel.Config{}, err
	}
	return parallel.Config{
		Workers:     c.Workers,
		Mode:        mode,
		Schedule:    schedule,
		ItemTimeout: c.ItemTimeout,
	}, nil
}

// SearchTargets returns the configured search targets, or DefaultTargets.
func (c Config) SearchTargets() []int {
	if len(c.Search.Targets) == 0 {
		return DefaultTargets
	}
	return c.Search.Targets
}
