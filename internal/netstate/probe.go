package netstate

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"recognizer/internal/logging"
)

// Probe checks reachability of a single URL.
type Probe struct {
	url     string
	client  *http.Client
	timeout time.Duration
	logger  *slog.Logger

	mu   sync.Mutex
	last *bool
}

// NewProbe returns a probe against url. A zero timeout defaults to five seconds.
func NewProbe(url string, timeout time.Duration, client *http.Client, logger *slog.Logger) *Probe {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if client == nil {
		client = &http.Client{}
	}
	return &Probe{
		url:     url,
		client:  client,
		timeout: timeout,
		logger:  logging.NewComponentLogger(logger, "netstate"),
	}
}

// Online reports whether the URL answered with any HTTP status.
func (p *Probe) Online(ctx context.Context) bool {
	if p == nil || p.url == "" {
		return true
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.url, nil)
	if err != nil {
		p.record(false, err)
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		p.record(false, err)
		return false
	}
	_ = resp.Body.Close()
	p.record(true, nil)
	return true
}

// record logs transitions only, so a long outage produces one warning.
func (p *Probe) record(online bool, err error) {
	p.mu.Lock()
	changed := p.last == nil || *p.last != online
	p.last = &online
	p.mu.Unlock()
	if !changed {
		return
	}
	if online {
		p.logger.Info("recognition service reachable",
			logging.String(logging.FieldEventType, "connectivity_online"),
			logging.String("url", p.url),
		)
		return
	}
	logging.WarnWithContext(p.logger, "recognition service unreachable", "connectivity_offline",
		logging.String("url", p.url),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check network connectivity and recognition.service_url"),
		logging.String(logging.FieldImpact, "queued documents wait until the service is reachable"),
	)
}
