package config

const (
	defaultConfigPath                 = "~/.config/recognizer/config.toml"
	defaultDataDir                    = "~/.local/share/recognizer"
	defaultLogDir                     = "~/.local/share/recognizer/logs"
	defaultAPIBind                    = "127.0.0.1:7491"
	defaultLibraryID                  = 1
	defaultPdftotext                  = "pdftotext"
	defaultPageLimit                  = 5
	defaultExtractorTimeoutSeconds    = 60
	defaultRecognitionServiceURL      = "http://127.0.0.1:8089/recognize"
	defaultRecognitionTimeoutSeconds  = 30
	defaultCrossrefBaseURL            = "https://api.crossref.org"
	defaultOpenLibraryBaseURL         = "https://openlibrary.org"
	defaultLookupTimeoutSeconds       = 15
	defaultOfflineBackoffSeconds      = 60
	defaultConnectivityTimeoutSeconds = 5
	defaultLogFormat                  = "console"
	defaultLogLevel                   = "info"
	defaultLanguage                   = "en"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Library: Library{
			LibraryID: defaultLibraryID,
		},
		Extractor: Extractor{
			Pdftotext:      defaultPdftotext,
			PageLimit:      defaultPageLimit,
			TimeoutSeconds: defaultExtractorTimeoutSeconds,
		},
		Recognition: Recognition{
			ServiceURL:     defaultRecognitionServiceURL,
			TimeoutSeconds: defaultRecognitionTimeoutSeconds,
		},
		Lookup: Lookup{
			CrossrefBaseURL:    defaultCrossrefBaseURL,
			OpenLibraryBaseURL: defaultOpenLibraryBaseURL,
			TimeoutSeconds:     defaultLookupTimeoutSeconds,
		},
		Workflow: Workflow{
			OfflineBackoffSeconds:      defaultOfflineBackoffSeconds,
			ConnectivityTimeoutSeconds: defaultConnectivityTimeoutSeconds,
			WatchNetworkEvents:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Messages: Messages{
			Language: defaultLanguage,
		},
	}
}
