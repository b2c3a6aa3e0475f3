package loki

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

var ErrStopped = errors.New("loki pusher is stopped")

type Logger interface {
	Error(msg string, args ...any)
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {

	// TenantKey and TenantValue form an optional tenant header for multi-tenant Loki installations.
	TenantKey   string
	TenantValue string

	// Url of the push endpoint, e.g. https://example-prod.grafana.net/loki/api/v1/push
	Url string `validate:"required,url"`

	// BatchMaxSize is the maximum number of lines sent in one request.
	BatchMaxSize int `validate:"gte=1"`

	// BatchMaxWait is the maximum time a line waits in the batch.
	BatchMaxWait time.Duration `validate:"gte=1"`

	// Labels are attached to every stream.
	Labels map[string]string

	// Username and Password enable basic authentication when both are set.
	Username string
	Password string
}

func (cfg *Config) setDefaults() {
	if cfg.BatchMaxSize == 0 {
		cfg.BatchMaxSize = 1000
	}
	if cfg.BatchMaxWait == 0 {
		cfg.BatchMaxWait = 5 * time.Second
	}
	if cfg.Labels == nil {
		cfg.Labels = map[string]string{}
	}
}

// LogEntry is one line. Level and ErrorType become stream labels, the rest is the line body.
type LogEntry struct {
	Level     string         `json:"level"`
	ErrorType string         `json:"-"`
	Message   string         `json:"msg"`
	Caller    string         `json:"caller,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
	Time      time.Time      `json:"-"`
}

type pushRequest struct {
	Streams []stream `json:"streams"`
}

type stream struct {
	Stream map[string]string `json:"stream"`
	Values [][2]string       `json:"values"`
}

type streamKey struct {
	level     string
	errorType string
}

type Pusher struct {
	config  Config
	client  HTTPClient
	logger  Logger
	entries chan LogEntry
	quit    chan struct{}
	done    chan struct{}
	once    sync.Once
	ctx     context.Context

	batch   map[streamKey][][2]string
	pending int
}

func New(ctx context.Context, cfg Config, logger Logger) (*Pusher, error) {
	return NewWithClient(ctx, cfg, logger, &http.Client{Timeout: 10 * time.Second})
}

func NewWithClient(ctx context.Context, cfg Config, logger Logger, client HTTPClient) (*Pusher, error) {

	cfg.setDefaults()
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid loki config: %w", err)
	}

	p := &Pusher{
		config:  cfg,
		client:  client,
		logger:  logger,
		entries: make(chan LogEntry, cfg.BatchMaxSize),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		ctx:     ctx,
		batch:   make(map[streamKey][][2]string),
	}

	go p.run()
	return p, nil
}

// Push queues the entry. It blocks while the queue is full and fails once the pusher is stopped.
func (p *Pusher) Push(e LogEntry) error {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	select {
	case <-p.done:
		return ErrStopped
	default:
	}
	select {
	case <-p.done:
		return ErrStopped
	case p.entries <- e:
		return nil
	}
}

// Stop flushes queued lines and waits for the last request to finish.
func (p *Pusher) Stop() {
	p.once.Do(func() { close(p.quit) })
	<-p.done
}

func (p *Pusher) run() {
	ticker := time.NewTicker(p.config.BatchMaxWait)
	defer ticker.Stop()
	defer close(p.done)

	for {
		select {
		case <-p.ctx.Done():
			p.drain()
			return
		case <-p.quit:
			p.drain()
			return
		case entry := <-p.entries:
			p.add(entry)
			if p.pending >= p.config.BatchMaxSize {
				p.flush()
			}
		case <-ticker.C:
			p.flush()
		}
	}
}

func (p *Pusher) drain() {
	for {
		select {
		case entry := <-p.entries:
			p.add(entry)
		default:
			p.flush()
			return
		}
	}
}

func (p *Pusher) add(entry LogEntry) {
	line, err := json.Marshal(entry)
	if err != nil {
		p.logger.Error("failed to encode log line", "error", err)
		return
	}
	key := streamKey{level: entry.Level, errorType: entry.ErrorType}
	p.batch[key] = append(p.batch[key], [2]string{strconv.FormatInt(entry.Time.UnixNano(), 10), string(line)})
	p.pending++
}

func (p *Pusher) flush() {
	if p.pending == 0 {
		return
	}
	if err := p.send(p.streams()); err != nil {
		p.logger.Error("failed to send logs", "error", err, "lines", p.pending)
	}
	p.batch = make(map[streamKey][][2]string)
	p.pending = 0
}

func (p *Pusher) streams() []stream {
	streams := make([]stream, 0, len(p.batch))
	for key, values := range p.batch {
		labels := make(map[string]string, len(p.config.Labels)+2)
		for k, v := range p.config.Labels {
			labels[k] = v
		}
		labels["level"] = key.level
		if key.errorType != "" {
			labels["error_type"] = key.errorType
		}
		streams = append(streams, stream{Stream: labels, Values: values})
	}
	return streams
}

func (p *Pusher) send(streams []stream) error {
	buf := &bytes.Buffer{}
	gz := gzip.NewWriter(buf)

	if err := json.NewEncoder(gz).Encode(pushRequest{Streams: streams}); err != nil {
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}

	// the pusher context may already be canceled while flushing on shutdown
	ctx, cancel := context.WithTimeout(context.WithoutCancel(p.ctx), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.Url, buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "gzip")
	if p.config.TenantKey != "" {
		req.Header.Set(p.config.TenantKey, p.config.TenantValue)
	}
	if p.config.Username != "" && p.config.Password != "" {
		req.SetBasicAuth(p.config.Username, p.config.Password)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected response from loki: %s, body: %s", resp.Status, string(body))
	}

	return nil
}
