package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"hdgold/audit"
	"hdgold/config"
	"hdgold/core"
	"hdgold/crypto"
	"hdgold/observability/logging"
	"hdgold/observability/metrics"
	"hdgold/rpc"
	"hdgold/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger := logging.Setup("hdgoldd", cfg.Environment, cfg.LogFile)

	genesis, err := buildGenesis(cfg)
	if err != nil {
		logger.Error("Invalid genesis configuration", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		panic(fmt.Sprintf("Failed to open database: %v", err))
	}
	defer db.Close()

	node, err := core.NewNode(db, genesis)
	if err != nil {
		logger.Error("Failed to initialise node", slog.Any("error", err))
		os.Exit(1)
	}

	auditLog, err := audit.Open(cfg.AuditLogPath)
	if err != nil {
		logger.Error("Failed to open audit log", slog.Any("error", err))
		os.Exit(1)
	}
	defer auditLog.Close()
	node.AddSink(auditLog)

	registry := prometheus.NewRegistry()
	node.AddSink(metrics.New(registry))

	server := rpc.NewServer(node, rpc.Options{
		Logger:        logger,
		StaticToken:   cfg.RPCToken,
		JWTSecret:     []byte(cfg.JWTSecret),
		RatePerMinute: cfg.RateLimitPerMinute,
		RateBurst:     cfg.RateLimitBurst,
		Registry:      registry,
	})
	node.AddSink(server.EventSink())

	if err := server.Start(cfg.RPCAddress); err != nil {
		logger.Error("RPC server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func buildGenesis(cfg *config.Config) (core.Genesis, error) {
	owner, err := crypto.DecodeAddress(cfg.OwnerAddress)
	if err != nil {
		return core.Genesis{}, fmt.Errorf("owner address: %w", err)
	}
	feeder, err := crypto.DecodeAddress(cfg.FeederAddress)
	if err != nil {
		return core.Genesis{}, fmt.Errorf("feeder address: %w", err)
	}
	genesis := core.Genesis{Owner: owner.Array(), Feeder: feeder.Array()}
	if strings.TrimSpace(cfg.InitialXAUUSD) != "" {
		xau, err := parsePrice(cfg.InitialXAUUSD)
		if err != nil {
			return core.Genesis{}, fmt.Errorf("initial XAU/USD price: %w", err)
		}
		vnd, err := parsePrice(cfg.InitialUSDVND)
		if err != nil {
			return core.Genesis{}, fmt.Errorf("initial USD/VND price: %w", err)
		}
		genesis.InitialXAUUSD = xau
		genesis.InitialUSDVND = vnd
	}
	return genesis, nil
}

func parsePrice(value string) (*big.Int, error) {
	price, ok := new(big.Int).SetString(strings.TrimSpace(value), 10)
	if !ok {
		return nil, fmt.Errorf("invalid decimal string %q", value)
	}
	if price.Sign() <= 0 {
		return nil, fmt.Errorf("price must be positive")
	}
	return price, nil
}
