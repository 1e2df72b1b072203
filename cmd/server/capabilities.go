package main

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentSandbox/internal/domain/capability"
	"github.com/GriffinCanCode/AgentSandbox/internal/infrastructure/logging"
)

const maxFetchBodyBytes = 256 * 1024

// buildRegistry composes the capability surface this deployment exposes.
// Capabilities live here, at composition time; the sandbox core never knows
// how they are implemented.
func buildRegistry(logger *logging.Logger) *capability.Registry {
	registry := capability.NewRegistry()

	register := func(h capability.Handle) {
		if err := registry.Register(h); err != nil {
			logger.Fatal("Failed to register capability", zap.String("name", h.Name), zap.Error(err))
		}
	}

	register(capability.New("echo", func(_ context.Context, args []capability.Value) (capability.Value, error) {
		if len(args) == 0 {
			return nil, nil
		}
		return args[0], nil
	}).WithDescription("Returns its first argument unchanged"))

	register(capability.New("now", func(_ context.Context, _ []capability.Value) (capability.Value, error) {
		return time.Now().UTC().Format(time.RFC3339), nil
	}).WithDescription("Returns the current UTC time as RFC 3339"))

	httpClient := resty.New().
		SetTimeout(10 * time.Second).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))

	register(capability.New("http_get", func(ctx context.Context, args []capability.Value) (capability.Value, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("http_get requires a URL argument")
		}
		url, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("http_get URL must be a string")
		}

		resp, err := httpClient.R().SetContext(ctx).Get(url)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}

		body := resp.String()
		truncated := false
		if len(body) > maxFetchBodyBytes {
			body = body[:maxFetchBodyBytes]
			truncated = true
		}
		return map[string]capability.Value{
			"status":    float64(resp.StatusCode()),
			"body":      body,
			"truncated": truncated,
		}, nil
	}).WithDescription("Fetches a URL and returns status and body"))

	return registry
}
