package main

import (
	"flag"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/pkg/profile"

	"github.com/milk9111/slotengine/common"
	"github.com/milk9111/slotengine/config"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults apply when empty)")
	profileMode := flag.String("profile", "", "write a cpu or mem profile to the working directory")
	watch := flag.Bool("watch", false, "reload the config file when it changes")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLog := common.NewLogger("info", true)
		bootLog.Fatal().Err(err).Str("path", *configPath).Msg("load config")
	}
	log := common.NewLogger(cfg.Log.Level, cfg.Log.Pretty)

	switch *profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	default:
		log.Error().Str("mode", *profileMode).Msg("unknown profile mode")
		os.Exit(2)
	}

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)

	game, err := NewGame(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("build demo scene")
	}
	defer game.Close()

	if *watch && *configPath != "" {
		if err := game.Watch(*configPath); err != nil {
			log.Warn().Err(err).Msg("config watch disabled")
		}
	}

	if err := ebiten.RunGame(game); err != nil && err != ebiten.Termination {
		log.Error().Err(err).Msg("game exited")
	}
}
