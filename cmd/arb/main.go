package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/uhyunpark/hyperarb/params"
	"github.com/uhyunpark/hyperarb/pkg/api"
	"github.com/uhyunpark/hyperarb/pkg/client"
	"github.com/uhyunpark/hyperarb/pkg/crypto"
	"github.com/uhyunpark/hyperarb/pkg/exchange"
	"github.com/uhyunpark/hyperarb/pkg/market"
	"github.com/uhyunpark/hyperarb/pkg/metrics"
	"github.com/uhyunpark/hyperarb/pkg/storage"
	"github.com/uhyunpark/hyperarb/pkg/strategy"
	"github.com/uhyunpark/hyperarb/pkg/util"
)

func main() {
	envPath := flag.String("env", "", "path to .env file (default: ./.env)")
	once := flag.Bool("once", false, "run a single cycle and exit")
	flag.Parse()

	os.Exit(run(*envPath, *once))
}

// run returns the process exit code so deferred cleanup always runs first.
func run(envPath string, once bool) int {
	// Load config from .env file and environment variables
	cfg := params.LoadFromEnv(envPath)

	level, err := util.ParseLevel(cfg.Node.LogLevel)
	if err != nil {
		log.Printf("logger: %v", err)
		return 1
	}
	logger, err := util.NewLoggerWithFile(cfg.Node.LogFile, level)
	if err != nil {
		log.Printf("logger: %v", err)
		return 1
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	sugar.Infow("logger_initialized", "log_file", cfg.Node.LogFile, "level", level.String())

	if err := cfg.Validate(); err != nil {
		sugar.Errorw("config_invalid", "err", err)
		return 1
	}

	signer, err := crypto.AddressFromKeyHex(cfg.Account.PrivateKey)
	if err != nil {
		sugar.Errorw("private_key_invalid", "err", err)
		return 1
	}
	wallet := cfg.Wallet()
	if signer != wallet {
		// Agent keys sign for a different wallet; that is allowed but worth seeing.
		sugar.Infow("agent_signer", "signer", signer.Hex(), "wallet", wallet.Hex())
	}

	// ---- Nonces ----
	store, err := storage.NewPebbleStore(cfg.Node.NonceDBPath, signer)
	if err != nil {
		sugar.Errorw("nonce_store_open_failed", "path", cfg.Node.NonceDBPath, "err", err)
		return 1
	}
	defer store.Close()

	clock := util.RealClock{}
	nonces, err := exchange.NewNonceManager(clock, store, cfg.Exchange.ExpiryWindow)
	if err != nil {
		sugar.Errorw("nonce_manager_failed", "err", err)
		return 1
	}
	sugar.Infow("nonce_restored", "last", nonces.Last())

	// ---- Exchange plumbing ----
	registry := market.DefaultRegistry()
	hl := client.New(cfg.Exchange.BaseURL, client.WithLogger(sugar))
	builder := exchange.NewBuilder(cfg.Slippage())

	// ---- API Server ----
	apiServer := api.NewServer(api.Config{
		Addr:         cfg.Node.APIAddr,
		Wallet:       wallet,
		Signer:       signer,
		Source:       cfg.Exchange.Source,
		DryRun:       cfg.Strategy.DryRun,
		Vault:        cfg.Vault(),
		ExpiryWindow: cfg.Exchange.ExpiryWindow,
	}, registry, builder, nonces, nil, clock, sugar)

	executor := strategy.NewExecutor(strategy.ExecutorConfig{
		PrivateKey: cfg.Account.PrivateKey,
		Source:     cfg.Exchange.Source,
		Vault:      cfg.Vault(),
		DryRun:     cfg.Strategy.DryRun,
	}, builder, nonces, hl, apiServer.Hub(), sugar)

	runner := strategy.NewRunner(strategy.RunnerConfig{
		Wallet:       wallet,
		PollInterval: cfg.Strategy.PollInterval,
		MinTrade:     cfg.Strategy.MinTradeUSD,
	}, registry, hl, executor, clock, apiServer.Hub(), sugar)
	apiServer.SetCycleSource(runner)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sugar.Infow("arb_starting",
		"wallet", wallet.Hex(),
		"source", cfg.Exchange.Source,
		"dry_run", cfg.Strategy.DryRun,
		"pairs", len(registry.Pairs()),
		"poll_interval_ms", cfg.Strategy.PollInterval.Milliseconds(),
		"min_trade_usd", cfg.Strategy.MinTradeUSD.String())

	if once {
		sum := runner.Cycle(ctx)
		sugar.Infow("single_cycle_done", "result", sum.Result, "orders", sum.Orders)
		if sum.Result == metrics.CycleError {
			return 1
		}
		return 0
	}

	go func() {
		if err := apiServer.Start(); err != nil {
			sugar.Errorw("api_server_failed", "err", err)
			stop()
		}
	}()

	if err := runner.Run(ctx); err != nil && ctx.Err() == nil {
		sugar.Errorw("runner_failed", "err", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		sugar.Warnw("api_shutdown_failed", "err", err)
	}
	sugar.Info("arb_stopped")
	return 0
}
