package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/abelbrown/spotlight/internal/api"
	"github.com/abelbrown/spotlight/internal/auth"
	"github.com/abelbrown/spotlight/internal/config"
	"github.com/abelbrown/spotlight/internal/coord"
	"github.com/abelbrown/spotlight/internal/logging"
	"github.com/abelbrown/spotlight/internal/otel"
	"github.com/abelbrown/spotlight/internal/store"
	"github.com/abelbrown/spotlight/internal/ui"
)

// ringSize is how many recent events the debug overlay can show.
const ringSize = 512

var rootCmd = &cobra.Command{
	Use:          "spotlight",
	Short:        "Send and answer signals",
	Long:         "Spotlight is a terminal client for exchanging signals: proposals, wishes, plans and plain nudges.",
	SilenceUsage: true,
	RunE:         runTUI,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default .spotlight.toml)")
	pf.String("data-dir", "", "directory for logs and the event log (default ~/.spotlight)")
	pf.Bool("debug", false, "debug logging")

	f := rootCmd.Flags()
	f.Int("fps", 0, "animation frame rate")
	f.String("user", "", "user ID to run as")
	f.Float64("latency-scale", 1, "multiplier for simulated network latency (0 disables it)")

	_ = viper.BindPFlag("data_dir", pf.Lookup("data-dir"))
	_ = viper.BindPFlag("debug", pf.Lookup("debug"))
	_ = viper.BindPFlag("fps", f.Lookup("fps"))
	_ = viper.BindPFlag("user_id", f.Lookup("user"))
	_ = viper.BindPFlag("latency_scale", f.Lookup("latency-scale"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if err := config.Init(cfgFile); err != nil {
		// Logging is not up yet; the TUI has not taken the terminal.
		fmt.Fprintf(os.Stderr, "warning: %v (using defaults)\n", err)
	}
}

func runTUI(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := logging.Init(cfg.LogDir(), cfg.Debug); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logging.Close()

	events, err := otel.OpenFile(cfg.EventsPath())
	if err != nil {
		return err
	}
	defer events.Close()
	ring := otel.NewRingBuffer(ringSize)
	events.SetRingBuffer(ring)
	events.Emit(otel.Event{Kind: otel.KindStartup, Level: otel.LevelInfo, Comp: "main", Msg: "user " + cfg.UserID})

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.Open(":memory:")
	if err != nil {
		return err
	}
	defer st.Close()
	n, err := st.Seed(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("seed store: %w", err)
	}
	logging.Info("store seeded", "signals", n)

	mutations := rate.Inf
	if cfg.MutationRate > 0 {
		mutations = rate.Limit(cfg.MutationRate)
	}
	client := api.New(st,
		api.WithLatency(api.DefaultLatency.Scale(cfg.LatencyScale)),
		api.WithMutationRate(mutations, cfg.MutationBurst),
	)

	app := ui.NewApp(ui.Options{
		Backend: client,
		User:    auth.Current(cfg.UserID),
		Timings: cfg.TransitionTimings(),
		Spring:  cfg.SpringConfig(),
		FPS:     cfg.FPS,
		Events:  events,
		Ring:    ring,
	})
	program := tea.NewProgram(app, tea.WithAltScreen())

	refresher := coord.NewRefresher(client, events, cfg.RefreshInterval, cfg.PrefetchConcurrency)
	refresher.Start(ctx, program)

	_, runErr := program.Run()

	cancel()
	refresher.Wait()

	events.Emit(otel.Event{Kind: otel.KindShutdown, Level: otel.LevelInfo, Comp: "main", Count: int(events.Dropped())})
	if runErr != nil {
		logging.Error("program exited", "err", runErr)
		return fmt.Errorf("run: %w", runErr)
	}
	return nil
}
