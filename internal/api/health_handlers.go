package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

// ComponentHealth is the result of probing one dependency.
type ComponentHealth struct {
	Status  string `json:"status" enum:"healthy,degraded,unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Time the probe took"`
	Message string `json:"message,omitempty"`
}

// HealthResponse aggregates the component probes. The overall status is the
// worst component status.
type HealthResponse struct {
	Status     string                     `json:"status" enum:"healthy,degraded,unhealthy"`
	Version    string                     `json:"version"`
	Components map[string]ComponentHealth `json:"components"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Probes the database and the search index.",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	resp := HealthResponse{
		Status:  statusHealthy,
		Version: s.config.Version,
		Components: map[string]ComponentHealth{
			"database": s.checkDatabase(ctx),
			"search":   s.checkSearchIndex(),
		},
	}
	for _, c := range resp.Components {
		if severity(c.Status) > severity(resp.Status) {
			resp.Status = c.Status
		}
	}
	return &HealthOutput{Body: resp}, nil
}

func severity(status string) int {
	switch status {
	case statusUnhealthy:
		return 2
	case statusDegraded:
		return 1
	default:
		return 0
	}
}

// probe times fn and reports unhealthy with failMsg when it errors.
func probe(failMsg string, fn func() (string, error)) ComponentHealth {
	start := time.Now()
	msg, err := fn()
	latency := time.Since(start).String()
	if err != nil {
		return ComponentHealth{Status: statusUnhealthy, Latency: latency, Message: failMsg}
	}
	return ComponentHealth{Status: statusHealthy, Latency: latency, Message: msg}
}

func (s *Server) checkDatabase(ctx context.Context) ComponentHealth {
	if s.store == nil {
		return ComponentHealth{Status: statusDegraded, Message: "database not configured"}
	}
	return probe("database ping failed", func() (string, error) {
		return "", s.store.Ping(ctx)
	})
}

// checkSearchIndex reports degraded when search is switched off.
func (s *Server) checkSearchIndex() ComponentHealth {
	if s.services == nil || !s.services.Search.Enabled() {
		return ComponentHealth{Status: statusDegraded, Message: "search disabled"}
	}
	return probe("search index unreachable", func() (string, error) {
		count, err := s.services.Search.DocumentCount()
		return fmt.Sprintf("%d posts indexed", count), err
	})
}
