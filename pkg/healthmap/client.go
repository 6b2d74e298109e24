// Package healthmap is a typed client for the HealthMap backend REST API.
package healthmap

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/healthmap-cli/internal/fetcher"
	"github.com/sells-group/healthmap-cli/internal/model"
)

// DefaultBaseURL is the backend address used when none is configured.
const DefaultBaseURL = "http://localhost:8080"

var (
	// ErrSubmitFailed is returned for any failed create. Callers show its
	// message to the user and never retry automatically.
	ErrSubmitFailed = errors.New("Failed to create health signal. Please try again.") //nolint:staticcheck

	// ErrNotFound is returned when the backend has no record for an id.
	ErrNotFound = errors.New("healthmap: not found")
)

// Client reads from and submits to the HealthMap backend.
type Client interface {
	// ListAssessments returns every assessment.
	ListAssessments(ctx context.Context) ([]model.Assessment, error)

	// GetAssessment returns one assessment by id.
	GetAssessment(ctx context.Context, id int64) (*model.Assessment, error)

	// RecentAssessments returns the backend's most recent assessments.
	RecentAssessments(ctx context.Context) ([]model.Assessment, error)

	// PriorityAssessments returns assessments in backend priority order.
	PriorityAssessments(ctx context.Context) ([]model.Assessment, error)

	// CreateAssessment submits a new assessment.
	CreateAssessment(ctx context.Context, req model.AssessmentRequest) (*model.Assessment, error)

	// ListHealthSignals returns every health signal.
	ListHealthSignals(ctx context.Context) ([]model.HealthSignal, error)

	// RecentHealthSignals returns signals from the last days days.
	RecentHealthSignals(ctx context.Context, days int) ([]model.HealthSignal, error)

	// HealthSignalsByArea returns the signals reported for one area.
	HealthSignalsByArea(ctx context.Context, areaID string) ([]model.HealthSignal, error)

	// HealthSignalStats returns the backend's signal aggregates.
	HealthSignalStats(ctx context.Context) (*model.HealthSignalStats, error)

	// CreateHealthSignal submits a new health signal.
	CreateHealthSignal(ctx context.Context, req model.HealthSignalRequest) (*model.HealthSignal, error)

	// Stats returns the backend's assessment aggregates.
	Stats(ctx context.Context) (*model.Stats, error)

	// FileURL returns the URL an uploaded file is served from.
	FileURL(filename string) string

	// DownloadFile saves an uploaded file to path. Returns bytes written.
	DownloadFile(ctx context.Context, filename, path string) (int64, error)
}

// Option configures the client.
type Option func(*client)

// WithFetcher sets the transport used for every request.
func WithFetcher(f fetcher.Fetcher) Option {
	return func(c *client) {
		c.fetcher = f
	}
}

// WithHTTPOptions builds the transport from the given options.
func WithHTTPOptions(opts fetcher.HTTPOptions) Option {
	return func(c *client) {
		c.fetcher = fetcher.NewHTTPFetcher(opts)
	}
}

type client struct {
	baseURL string
	fetcher fetcher.Fetcher
	log     *zap.Logger
}

// NewClient creates a Client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &client{
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     zap.L().With(zap.String("component", "healthmap")),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.fetcher == nil {
		c.fetcher = fetcher.NewHTTPFetcher(fetcher.HTTPOptions{})
	}
	return c
}

func (c *client) url(path string) string {
	return c.baseURL + path
}

func (c *client) ListAssessments(ctx context.Context) ([]model.Assessment, error) {
	var out []model.Assessment
	if err := c.fetcher.GetJSON(ctx, c.url("/api/assessments"), &out); err != nil {
		return nil, eris.Wrap(err, "healthmap: list assessments")
	}
	return out, nil
}

func (c *client) GetAssessment(ctx context.Context, id int64) (*model.Assessment, error) {
	var out model.Assessment
	err := c.fetcher.GetJSON(ctx, c.url("/api/assessments/"+strconv.FormatInt(id, 10)), &out)
	if err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, eris.Wrapf(ErrNotFound, "assessment %d", id)
		}
		return nil, eris.Wrapf(err, "healthmap: get assessment %d", id)
	}
	return &out, nil
}

func (c *client) RecentAssessments(ctx context.Context) ([]model.Assessment, error) {
	var out []model.Assessment
	if err := c.fetcher.GetJSON(ctx, c.url("/api/assessments/recent"), &out); err != nil {
		return nil, eris.Wrap(err, "healthmap: recent assessments")
	}
	return out, nil
}

func (c *client) PriorityAssessments(ctx context.Context) ([]model.Assessment, error) {
	var out []model.Assessment
	if err := c.fetcher.GetJSON(ctx, c.url("/api/assessments/priorities"), &out); err != nil {
		return nil, eris.Wrap(err, "healthmap: priority assessments")
	}
	return out, nil
}

func (c *client) CreateAssessment(ctx context.Context, req model.AssessmentRequest) (*model.Assessment, error) {
	var out model.Assessment
	if err := c.fetcher.PostJSON(ctx, c.url("/api/assessments"), req, &out); err != nil {
		c.log.Error("create assessment failed", zap.Error(err))
		return nil, eris.Wrap(ErrSubmitFailed, "create assessment")
	}
	return &out, nil
}

func (c *client) ListHealthSignals(ctx context.Context) ([]model.HealthSignal, error) {
	var out []model.HealthSignal
	if err := c.fetcher.GetJSON(ctx, c.url("/api/health-signals"), &out); err != nil {
		return nil, eris.Wrap(err, "healthmap: list health signals")
	}
	return out, nil
}

func (c *client) RecentHealthSignals(ctx context.Context, days int) ([]model.HealthSignal, error) {
	if days <= 0 {
		days = 7
	}
	var out []model.HealthSignal
	u := c.url("/api/health-signals/recent?days=" + strconv.Itoa(days))
	if err := c.fetcher.GetJSON(ctx, u, &out); err != nil {
		return nil, eris.Wrap(err, "healthmap: recent health signals")
	}
	return out, nil
}

func (c *client) HealthSignalsByArea(ctx context.Context, areaID string) ([]model.HealthSignal, error) {
	var out []model.HealthSignal
	u := c.url("/api/health-signals/area/" + url.PathEscape(areaID))
	if err := c.fetcher.GetJSON(ctx, u, &out); err != nil {
		return nil, eris.Wrapf(err, "healthmap: health signals for area %s", areaID)
	}
	return out, nil
}

func (c *client) HealthSignalStats(ctx context.Context) (*model.HealthSignalStats, error) {
	var out model.HealthSignalStats
	if err := c.fetcher.GetJSON(ctx, c.url("/api/health-signals/stats"), &out); err != nil {
		return nil, eris.Wrap(err, "healthmap: health signal stats")
	}
	return &out, nil
}

func (c *client) CreateHealthSignal(ctx context.Context, req model.HealthSignalRequest) (*model.HealthSignal, error) {
	var out model.HealthSignal
	if err := c.fetcher.PostJSON(ctx, c.url("/api/health-signals"), req, &out); err != nil {
		c.log.Error("create health signal failed",
			zap.String("area_id", req.AreaID),
			zap.Error(err),
		)
		return nil, eris.Wrap(ErrSubmitFailed, "create health signal")
	}
	return &out, nil
}

func (c *client) Stats(ctx context.Context) (*model.Stats, error) {
	var out model.Stats
	if err := c.fetcher.GetJSON(ctx, c.url("/api/stats"), &out); err != nil {
		return nil, eris.Wrap(err, "healthmap: stats")
	}
	return &out, nil
}

func (c *client) FileURL(filename string) string {
	return c.url("/api/files/" + url.PathEscape(filename))
}

func (c *client) DownloadFile(ctx context.Context, filename, path string) (int64, error) {
	n, err := c.fetcher.DownloadToFile(ctx, c.FileURL(filename), path)
	if err != nil {
		return n, eris.Wrapf(err, "healthmap: download file %s", filename)
	}
	return n, nil
}

func isStatus(err error, code int) bool {
	var se *fetcher.StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
