package main

import (
	"github.com/bastiangx/nextword/internal/observe"
	"github.com/bastiangx/nextword/internal/utils"
	"github.com/bastiangx/nextword/pkg/config"
	"github.com/bastiangx/nextword/pkg/ngram"
	"github.com/bastiangx/nextword/pkg/predict"
	"github.com/bastiangx/nextword/pkg/suggest"
	"github.com/charmbracelet/log"
)

// app is the wired prediction stack shared by serve and cli.
type app struct {
	cfg         *config.Config
	configPath  string
	datasetPath string
	store       *ngram.Store
	service     *suggest.Service
	provider    *observe.Provider
}

// newApp loads config and dataset and wires the predictor behind the
// caching facade. Metrics are exported only when withMetrics is set; any
// failure there falls back to a no-op recorder.
func newApp(opts *rootOptions, datasetOverride string, withMetrics bool) *app {
	cfg, configPath := config.LoadConfigWithPriority(opts.configPath)
	log.Debugf("Using config: %s", config.GetActiveConfigPath(configPath))

	dataset := cfg.Model.Dataset
	if datasetOverride != "" {
		dataset = datasetOverride
	}
	dataset = utils.NewPathResolver().ResolveDataset(dataset)

	a := &app{
		cfg:         cfg,
		configPath:  configPath,
		datasetPath: dataset,
		store:       ngram.Load(dataset),
	}

	metrics := observe.Noop()
	if withMetrics {
		provider, err := observe.InitProvider()
		if err != nil {
			log.Warnf("Metrics disabled: %v", err)
		} else if m, err := observe.NewMetrics(provider.MeterProvider); err != nil {
			log.Warnf("Metrics disabled: %v", err)
		} else {
			a.provider = provider
			metrics = m
		}
	}

	predictor := predict.New(a.store,
		predict.WithBigramWeight(cfg.Model.BigramWeight),
		predict.WithUnigramWeight(cfg.Model.UnigramWeight),
	)
	a.service = suggest.New(predictor,
		suggest.WithCapacity(cfg.Cache.Capacity),
		suggest.WithMetrics(metrics),
	)
	return a
}
