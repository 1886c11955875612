// Package main provides the entry point for the Constellation star chart.
package main

import (
	"os"

	"constellation/internal/app"
	"constellation/internal/config"
	"constellation/internal/logger"
	"constellation/internal/version"
	"constellation/ui/mainwindow"
	"constellation/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

const appID = "co.audius.constellation"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "constellation",
	Short: "Interactive star chart of artist clusters",
	Long: `Constellation draws artist clusters as a star chart.

Hover a star to preview the artist and hear their most played track,
click a cluster to open it, and search for an artist to jump to the
cluster they belong to.

Configuration is read from --config, or from
$XDG_CONFIG_HOME/constellation/config.toml when present, with
CONSTELLATION_* environment overrides (e.g. CONSTELLATION_DATA_DIR).`,
	Version:      version.Version,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (TOML)")
	rootCmd.SetVersionTemplate(version.String() + "\n")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := logger.Initialize(cfg.Log.JSON, cfg.Log.Level); err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	defer logger.Sync()
	log := logger.Named("main")
	log.Infow("starting", "version", version.Version, "root", cfg.Data.RootCluster)

	p := prefs.Load()
	volume := p.Float(prefs.KeyVolume, cfg.Playback.Volume)

	state := app.NewState(cfg,
		app.NewSource(cfg),
		app.NewCatalog(cfg, logger.Named("catalog")),
		app.NewSink(cfg, volume, logger.Named("playback")),
		logger.Named("app"),
	)
	defer func() {
		if err := state.Close(); err != nil {
			log.Warnw("shutdown", logger.FieldError, err)
		}
	}()
	if err := state.StartWatching(); err != nil {
		log.Warnw("dataset watcher unavailable", logger.FieldError, err)
	}

	a := fyneapp.NewWithID(appID)
	a.Settings().SetTheme(&app.ConstellationTheme{})

	win := mainwindow.New(a, state, cfg, p, logger.Named("ui"))
	state.Start()
	win.ShowAndRun()
	return nil
}
