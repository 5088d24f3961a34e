package main

import (
	"context"
	"strings"

	"github.com/joho/godotenv"

	"blocksd/internal/app"
	"blocksd/pkg/config"
	"blocksd/pkg/logger"
	"blocksd/pkg/shutdown"
)

// build metadata - set via ldflags during build/release
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	_ = godotenv.Load(".env")
	flags := config.ParseConfigFlags()

	cfgPath := config.ResolveConfigPath(flags.Config, flags.Set["config"])
	cfg, envUsed, err := config.LoadEffective(cfgPath)
	if err != nil {
		shutdown.Abort("failed to load config", err, "", 0)
	}

	// flags explicitly set win over env/config
	addr := cfg.Addr()
	if flags.Set["addr"] {
		addr = flags.Addr
	}
	if flags.Set["db"] || cfg.Server.DBPath == "" {
		cfg.Server.DBPath = flags.DB
	}

	logger.InitWithLevel(cfg.Logging.Level)

	srcs := []string{}
	if len(flags.Set) > 0 {
		srcs = append(srcs, "flags")
	}
	if envUsed {
		srcs = append(srcs, "env")
	}
	if _, err := config.Load(cfgPath); err == nil {
		srcs = append(srcs, "config")
	}

	a, err := app.New(cfg, addr, strings.Join(srcs, ", "), version, commit, buildDate)
	if err != nil {
		shutdown.Abort("startup failed", err, cfg.Server.DBPath, 0)
	}

	ctx, cancel := shutdown.SetupSignalHandler(context.Background())
	defer cancel()

	if err := a.Run(ctx); err != nil {
		shutdown.Abort("server exited", err, cfg.Server.DBPath, 0)
	}
	logger.Info("shutdown_complete")
}
