package preflight

import (
	"context"
	"fmt"

	"recognizer/internal/config"
	"recognizer/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name" yaml:"name"`
	Passed bool   `json:"passed" yaml:"passed"`
	Detail string `json:"detail" yaml:"detail"`
}

// RunAll executes every preflight check for cfg.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("Data directory", cfg.Paths.DataDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	results = append(results, CheckDirectoryAccess("Attachment storage", cfg.StorageDir()))

	for _, status := range CheckSystemDeps(ctx, cfg) {
		results = append(results, fromDependency(status))
	}

	results = append(results, CheckService(ctx, "Recognition service", cfg.Recognition.ServiceURL, cfg.ConnectivityTimeout()))
	results = append(results, CheckService(ctx, "Crossref", cfg.Lookup.CrossrefBaseURL, cfg.ConnectivityTimeout()))
	results = append(results, CheckService(ctx, "Open Library", cfg.Lookup.OpenLibraryBaseURL, cfg.ConnectivityTimeout()))
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

func fromDependency(status deps.Status) Result {
	if !status.Available {
		detail := status.Detail
		if status.Description != "" {
			detail = fmt.Sprintf("%s (%s)", detail, status.Description)
		}
		return Result{Name: status.Name, Passed: status.Optional, Detail: detail}
	}
	detail := status.Path
	if status.Version != "" {
		detail = fmt.Sprintf("%s (%s)", status.Path, status.Version)
	}
	return Result{Name: status.Name, Passed: true, Detail: detail}
}
