package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"DocVault/internal/cli/commands"
	"DocVault/internal/cli/crypto"
	"DocVault/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	// Load unified config (env + flags)
	cfg := config.NewConfig()

	if cfg.Version {
		printVersion()
		return
	}

	// предупреждения крипто-слоя уходят в stderr, обычный вывод команд не засоряем
	if log, err := zap.NewDevelopment(zap.IncreaseLevel(zapcore.WarnLevel)); err == nil {
		crypto.SetLogger(log.Sugar())
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// dispatcher
	exitCode := commands.Dispatch(ctx, cfg, flag.Args())
	if exitCode == 0 {
		return
	}
	os.Exit(exitCode)
}

func printVersion() {
	fmt.Printf("DocVault CLI\nVersion: %s\nBuild date: %s\n", version, buildDate)
}
