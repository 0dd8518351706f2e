package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/sponsorworks/ideaforge/internal/api"
	"github.com/sponsorworks/ideaforge/internal/common"
	"github.com/sponsorworks/ideaforge/internal/llm"
	"github.com/sponsorworks/ideaforge/internal/store"
)

func main() {
	logger := common.Logger()

	if err := godotenv.Load(); err != nil {
		logger.Warn("ideaforge: .env file not loaded", "error", err)
	} else {
		logger.Info("ideaforge: environment loaded from .env")
	}

	addr := flag.String("addr", ":8080", "listen address")
	dbPath := flag.String("db", defaultDBPath(), "path to the SQLite database")
	blobRoot := flag.String("blobs", "", "directory for uploaded files (default data/blobs)")
	tokenTTL := flag.String("token-ttl", "", "bearer token lifetime (e.g. 12h, 30m)")
	flag.Parse()

	logger.Info("ideaforge: startup initiated", "addr", *addr, "db", *dbPath)

	storeCfg, err := store.LoadConfig()
	if err != nil {
		logger.Error("ideaforge: store config load failed", "error", err)
		fmt.Println("store config error:", err)
		os.Exit(1)
	}
	if trimmed := strings.TrimSpace(*dbPath); trimmed != "" {
		storeCfg.Path = trimmed
	}
	st, err := store.OpenWithConfig(storeCfg)
	if err != nil {
		logger.Error("ideaforge: store open failed", "error", err)
		fmt.Println("store error:", err)
		os.Exit(1)
	}
	defer st.Close()

	models := llm.NewRouter(llm.LoadConfig())
	caps := models.Capabilities()
	if !caps.Claude && !caps.Writer && !caps.Gemini {
		logger.Warn("ideaforge: no model backend configured, generation requests will fail")
	}

	cfg := api.DefaultConfig()
	if trimmed := strings.TrimSpace(*blobRoot); trimmed != "" {
		cfg.BlobRoot = trimmed
	}
	if trimmed := strings.TrimSpace(*tokenTTL); trimmed != "" {
		dur, err := time.ParseDuration(trimmed)
		if err != nil {
			logger.Error("ideaforge: invalid token ttl", "value", trimmed, "error", err)
			fmt.Println("token ttl error:", err)
			os.Exit(1)
		}
		cfg.TokenTTL = dur
	}

	server, err := api.NewServer(st, models, &cfg)
	if err != nil {
		logger.Error("ideaforge: server construction failed", "error", err)
		fmt.Println("server error:", err)
		os.Exit(1)
	}

	logger.Info("ideaforge: server listening", "addr", *addr, "ui", "/ui/", "health", "/healthz")
	fmt.Printf("Serving on %s\n", *addr)
	reachable := *addr
	if strings.HasPrefix(reachable, ":") {
		reachable = "localhost" + reachable
	}
	logger.Info("ideaforge: verify reachability", "suggestion", fmt.Sprintf("curl http://%s/healthz", reachable))
	if err := http.ListenAndServe(*addr, server); err != nil {
		logger.Error("ideaforge: server stopped", "error", err)
		fmt.Println("server stopped:", err)
	}
}

func defaultDBPath() string {
	return filepath.Join("data", "ideaforge.db")
}
