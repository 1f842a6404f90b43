package recognition

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"recognizer/internal/extract"
	"recognizer/internal/logging"
	"recognizer/internal/services"
)

//go:embed response.schema.json
var responseSchema []byte

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 1 << 20

// Request is the JSON body posted to the recognition service.
type Request struct {
	RequestID string         `json:"requestId"`
	FileName  string         `json:"fileName"`
	Pages     []extract.Page `json:"pages"`
}

// Recognizer is the contract the pipeline depends on.
type Recognizer interface {
	Recognize(ctx context.Context, fileName string, doc *extract.Document) (*Result, error)
}

// Client posts extracted text to the recognition endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	schema     *jsonschema.Schema
	logger     *slog.Logger
}

var _ Recognizer = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a recognition client for endpoint. A zero timeout uses 30s.
func New(endpoint string, timeout time.Duration, opts ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("recognition service url required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	client := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		schema:     schema,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("response.schema.json", bytes.NewReader(responseSchema)); err != nil {
		return nil, fmt.Errorf("add recognition schema: %w", err)
	}
	schema, err := compiler.Compile("response.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile recognition schema: %w", err)
	}
	return schema, nil
}

// Recognize posts the document text and returns the candidate, or nil when the
// service found nothing. Every transport, status, or decoding problem is
// returned as an ErrTransient-marked request error.
func (c *Client) Recognize(ctx context.Context, fileName string, doc *extract.Document) (*Result, error) {
	if doc == nil {
		return nil, errors.New("recognize: nil document")
	}
	reqID := uuid.NewString()
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		reqID = rid
	}
	body, err := json.Marshal(Request{RequestID: reqID, FileName: filepath.Base(fileName), Pages: doc.Pages})
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "recognize", "encode", "encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "recognize", "build request", c.endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "recognize", "post", fmt.Sprintf("request failed (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "recognize", "read", "read response", err)
	}
	c.logger.Debug("recognition response",
		logging.String("request_url", c.endpoint),
		logging.Int("http_status", resp.StatusCode),
		logging.Int("response_bytes", len(raw)),
		logging.Duration("request_latency", latency),
	)
	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrTransient, "recognize", "post",
			"service returned "+strconv.Itoa(resp.StatusCode), nil)
	}

	return c.decode(raw)
}

func (c *Client) decode(raw []byte) (*Result, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var generic any
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return nil, services.Wrap(services.ErrTransient, "recognize", "decode", "invalid json", err)
	}
	if err := c.schema.Validate(generic); err != nil {
		return nil, services.Wrap(services.ErrTransient, "recognize", "decode", "response does not match schema", err)
	}
	var wire wireResult
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return nil, services.Wrap(services.ErrTransient, "recognize", "decode", "decode result", err)
	}
	result := wire.result()
	if result.IsEmpty() {
		return nil, nil
	}
	return result, nil
}
