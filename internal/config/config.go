package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

type Config struct {
	Port           string
	MaxUploadBytes int64
	WorkDir        string
	RenderDPI      int
	SofficeBin     string
	GhostscriptBin string
	PdftoppmBin    string
	WkhtmltopdfBin string
}

func LoadConfig() (Config, error) {
	cfg := Config{}

	cfg.Port = envOrDefault("PORT", "8080")
	cfg.WorkDir = envOrDefault("WORK_DIR", filepath.Join(os.TempDir(), "docforge"))
	cfg.SofficeBin = envOrDefault("SOFFICE_BIN", "soffice")
	cfg.GhostscriptBin = envOrDefault("GS_BIN", "gs")
	cfg.PdftoppmBin = envOrDefault("PDFTOPPM_BIN", "pdftoppm")
	cfg.WkhtmltopdfBin = envOrDefault("WKHTMLTOPDF_BIN", "wkhtmltopdf")

	maxUploadMB, err := parseIntEnv("MAX_UPLOAD_MB", 50)
	if err != nil {
		return Config{}, fmt.Errorf("parse MAX_UPLOAD_MB: %w", err)
	}
	cfg.MaxUploadBytes = maxUploadMB * 1024 * 1024

	renderDPI, err := parseIntEnv("RENDER_DPI", 150)
	if err != nil {
		return Config{}, fmt.Errorf("parse RENDER_DPI: %w", err)
	}
	cfg.RenderDPI = int(renderDPI)

	absWorkDir, err := filepath.Abs(cfg.WorkDir)
	if err != nil {
		return Config{}, fmt.Errorf("resolve work dir: %w", err)
	}
	cfg.WorkDir = absWorkDir

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseIntEnv(key string, fallback int64) (int64, error) {
	value := envOrDefault(key, "")
	if value == "" {
		return fallback, nil
	}

	num, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, err
	}
	return num, nil
}
