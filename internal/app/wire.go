package app

import (
	"os/exec"

	"constellation/internal/audius"
	"constellation/internal/catalog"
	"constellation/internal/config"
	"constellation/internal/playback"

	"go.uber.org/zap"
)

// NewSource returns the dataset source cfg selects: the local directory
// when one is set, the remote host otherwise.
func NewSource(cfg *config.Config) catalog.Source {
	if cfg.Data.Dir != "" {
		return &catalog.DirSource{Dir: cfg.Data.Dir}
	}
	return catalog.NewHTTPSource(cfg.Data.BaseURL, cfg.Catalog.Timeout)
}

// NewCatalog builds the catalog service client from cfg.
func NewCatalog(cfg *config.Config, log *zap.SugaredLogger) *audius.Client {
	return audius.New(audius.Options{
		BaseURL:           cfg.Catalog.BaseURL,
		AppName:           cfg.Catalog.AppName,
		APIKey:            cfg.Catalog.APIKey,
		RequestsPerSecond: cfg.Catalog.RequestsPerSecond,
		Burst:             cfg.Catalog.Burst,
		Timeout:           cfg.Catalog.Timeout,
		Logger:            log,
	})
}

// NewSink returns the audio sink for cfg at the given volume, or nil when
// audio is disabled. A missing player binary degrades to a silent sink so
// the rest of the playback path still runs.
func NewSink(cfg *config.Config, volume float64, log *zap.SugaredLogger) playback.Sink {
	if !cfg.Features.Audio {
		return nil
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if _, err := exec.LookPath(cfg.Playback.Command); err != nil {
		log.Warnw("audio player not found, playback is silent", "command", cfg.Playback.Command)
		return &playback.NopSink{}
	}
	return playback.NewExecSink(cfg.Playback.Command, volume, log)
}
