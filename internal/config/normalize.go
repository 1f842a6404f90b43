package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeLibrary(); err != nil {
		return err
	}
	c.normalizeExtractor()
	c.normalizeRecognition()
	c.normalizeLookup()
	c.normalizeWorkflow()
	c.normalizeLogging()
	c.normalizeMessages()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.DataDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	if c.Paths.APIToken == "" {
		if value, ok := os.LookupEnv("RECOGNIZER_API_TOKEN"); ok {
			c.Paths.APIToken = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizeLibrary() error {
	if strings.TrimSpace(c.Library.DBPath) == "" {
		c.Library.DBPath = filepath.Join(c.Paths.DataDir, "library.db")
	}
	var err error
	if c.Library.DBPath, err = expandPath(c.Library.DBPath); err != nil {
		return fmt.Errorf("library.db_path: %w", err)
	}
	if c.Library.LibraryID == 0 {
		c.Library.LibraryID = defaultLibraryID
	}
	return nil
}

func (c *Config) normalizeExtractor() {
	c.Extractor.Pdftotext = strings.TrimSpace(c.Extractor.Pdftotext)
	if c.Extractor.Pdftotext == "" {
		c.Extractor.Pdftotext = defaultPdftotext
	}
	if c.Extractor.PageLimit == 0 {
		c.Extractor.PageLimit = defaultPageLimit
	}
	if c.Extractor.TimeoutSeconds == 0 {
		c.Extractor.TimeoutSeconds = defaultExtractorTimeoutSeconds
	}
}

func (c *Config) normalizeRecognition() {
	c.Recognition.ServiceURL = strings.TrimSpace(c.Recognition.ServiceURL)
	if value, ok := os.LookupEnv("RECOGNIZER_SERVICE_URL"); ok && strings.TrimSpace(value) != "" {
		c.Recognition.ServiceURL = strings.TrimSpace(value)
	}
	if c.Recognition.ServiceURL == "" {
		c.Recognition.ServiceURL = defaultRecognitionServiceURL
	}
	if c.Recognition.TimeoutSeconds == 0 {
		c.Recognition.TimeoutSeconds = defaultRecognitionTimeoutSeconds
	}
}

func (c *Config) normalizeLookup() {
	c.Lookup.CrossrefBaseURL = strings.TrimRight(strings.TrimSpace(c.Lookup.CrossrefBaseURL), "/")
	if c.Lookup.CrossrefBaseURL == "" {
		c.Lookup.CrossrefBaseURL = defaultCrossrefBaseURL
	}
	c.Lookup.OpenLibraryBaseURL = strings.TrimRight(strings.TrimSpace(c.Lookup.OpenLibraryBaseURL), "/")
	if c.Lookup.OpenLibraryBaseURL == "" {
		c.Lookup.OpenLibraryBaseURL = defaultOpenLibraryBaseURL
	}
	c.Lookup.Mailto = strings.TrimSpace(c.Lookup.Mailto)
	if c.Lookup.Mailto == "" {
		if value, ok := os.LookupEnv("RECOGNIZER_MAILTO"); ok {
			c.Lookup.Mailto = strings.TrimSpace(value)
		}
	}
	if c.Lookup.TimeoutSeconds == 0 {
		c.Lookup.TimeoutSeconds = defaultLookupTimeoutSeconds
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.OfflineBackoffSeconds == 0 {
		c.Workflow.OfflineBackoffSeconds = defaultOfflineBackoffSeconds
	}
	c.Workflow.ConnectivityURL = strings.TrimSpace(c.Workflow.ConnectivityURL)
	if c.Workflow.ConnectivityURL == "" {
		c.Workflow.ConnectivityURL = c.Recognition.ServiceURL
	}
	if c.Workflow.ConnectivityTimeoutSeconds == 0 {
		c.Workflow.ConnectivityTimeoutSeconds = defaultConnectivityTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if format == "" {
		format = defaultLogFormat
	}
	c.Logging.Format = format

	if value, ok := os.LookupEnv("RECOGNIZER_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	c.Logging.Level = level
}

func (c *Config) normalizeMessages() {
	c.Messages.Language = strings.TrimSpace(c.Messages.Language)
	if c.Messages.Language == "" {
		c.Messages.Language = defaultLanguage
	}
}
