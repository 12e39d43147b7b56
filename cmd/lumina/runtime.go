package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pkt.systems/lumina"
	"pkt.systems/lumina/core"
	"pkt.systems/lumina/httpapi"
	"pkt.systems/lumina/internal/appconfig"
	"pkt.systems/lumina/internal/assistant"
	"pkt.systems/lumina/internal/render"
	"pkt.systems/lumina/schema"
	"pkt.systems/pslog"
)

// buildServer wires the render surface and assistant named by cfg into a
// lumina server. The surface is closed when the server stops.
func buildServer(ctx context.Context, cfg appconfig.Config, opts ...lumina.ServerOption) (lumina.Server, error) {
	logger := pslog.Ctx(ctx)
	serviceCfg, err := cfg.ServiceConfig()
	if err != nil {
		return nil, err
	}
	driver, err := render.ParseDriver(cfg.Render.Driver)
	if err != nil {
		return nil, err
	}
	logger.Info("render surface start", "driver", driver, "headless", cfg.Render.Headless)
	surface, err := render.New(ctx, render.Config{
		Driver:     driver,
		Headless:   cfg.Render.Headless,
		ChromePath: cfg.Render.ChromePath,
		Timeout:    cfg.Render.Timeout(),
		Delay:      cfg.Render.Delay(),
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("start render surface: %w", err)
	}

	deps := core.ServiceDeps{Surface: surface, Logger: logger}
	asst, err := buildAssistant(ctx, cfg.Assistant)
	switch {
	case errors.Is(err, schema.ErrAssistantUnavailable):
		logger.Warn("assistant disabled", "provider", cfg.Assistant.Provider, "reason", err)
	case err != nil:
		_ = surface.Close()
		return nil, err
	default:
		deps.Assistant = asst
	}

	srv, err := lumina.New(lumina.ServerConfig{
		Service:    serviceCfg,
		HTTP:       toHTTPConfig(cfg.HTTP),
		HubHistory: cfg.HTTP.StreamHistory,
	}, lumina.ServerDeps{
		ServiceDeps: deps,
		Closers:     []func() error{surface.Close},
	}, opts...)
	if err != nil {
		_ = surface.Close()
		return nil, err
	}
	return srv, nil
}

// buildAssistant returns schema.ErrAssistantUnavailable when chat should fall
// back to the canned reply.
func buildAssistant(ctx context.Context, cfg appconfig.AssistantConfig) (core.Assistant, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case appconfig.AssistantNone:
		return nil, fmt.Errorf("provider none: %w", schema.ErrAssistantUnavailable)
	case appconfig.AssistantGemini, "":
		return assistant.NewGemini(ctx, assistant.Config{
			APIKey:  cfg.ResolveAPIKey(),
			Model:   cfg.Model,
			Timeout: cfg.Timeout(),
			Logger:  pslog.Ctx(ctx),
		})
	default:
		return nil, fmt.Errorf("unsupported assistant.provider %q: %w", cfg.Provider, schema.ErrInvalidConfig)
	}
}

func toHTTPConfig(cfg appconfig.HTTPConfig) httpapi.Config {
	return httpapi.Config{
		Addr:          cfg.Addr,
		BasePath:      cfg.BasePath,
		StreamHistory: cfg.StreamHistory,
	}
}
