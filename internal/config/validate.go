package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateExtractor(); err != nil {
		return err
	}
	if err := c.validateEndpoints(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if _, err := language.Parse(c.Messages.Language); err != nil {
		return fmt.Errorf("messages.language: %w", err)
	}
	return nil
}

func (c *Config) validateExtractor() error {
	if c.Extractor.PageLimit < 1 {
		return errors.New("extractor.page_limit must be positive")
	}
	if c.Extractor.TimeoutSeconds < 0 {
		return errors.New("extractor.timeout_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateEndpoints() error {
	endpoints := []struct {
		key   string
		value string
	}{
		{"recognition.service_url", c.Recognition.ServiceURL},
		{"lookup.crossref_base_url", c.Lookup.CrossrefBaseURL},
		{"lookup.openlibrary_base_url", c.Lookup.OpenLibraryBaseURL},
		{"workflow.connectivity_url", c.Workflow.ConnectivityURL},
	}
	for _, endpoint := range endpoints {
		parsed, err := url.Parse(endpoint.value)
		if err != nil {
			return fmt.Errorf("%s: %w", endpoint.key, err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("%s must be an http(s) URL, got %q", endpoint.key, endpoint.value)
		}
	}
	if c.Recognition.TimeoutSeconds < 0 || c.Lookup.TimeoutSeconds < 0 {
		return errors.New("request timeouts must not be negative")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.OfflineBackoffSeconds <= 0 {
		return errors.New("workflow.offline_backoff_seconds must be positive")
	}
	if c.Workflow.ConnectivityTimeoutSeconds <= 0 {
		return errors.New("workflow.connectivity_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
