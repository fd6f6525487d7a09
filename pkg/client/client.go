package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// ErrNotFound is returned when the registry has no component with the given id.
var ErrNotFound = errors.New("component not found")

// APIError is returned for any non-2xx response other than 404.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("registry error %d: %s", e.StatusCode, e.Message)
}

// CustodyEvent is one handling record in a component's custody chain.
type CustodyEvent struct {
	Stage      string    `json:"stage"`
	Handler    string    `json:"handler"`
	Timestamp  time.Time `json:"timestamp"`
	Location   string    `json:"location"`
	Action     string    `json:"action"`
	VerifiedBy string    `json:"verified_by"`
	Signature  string    `json:"signature"`
}

// Component is a registered component with its full custody chain.
type Component struct {
	ID                  string         `json:"component_id"`
	Name                string         `json:"component_name"`
	Manufacturer        string         `json:"manufacturer"`
	ManufacturingDate   string         `json:"manufacturing_date"`
	BatchID             string         `json:"batch_id"`
	VerificationHash    string         `json:"verification_hash"`
	DigitalSignature    string         `json:"digital_signature"`
	RegisteredAt        time.Time      `json:"registered_at"`
	CustodyChain        []CustodyEvent `json:"custody_chain"`
	IndigenousCertified bool           `json:"indigenous_certification"`
	SecurityClearance   string         `json:"security_clearance"`
}

// RegisterRequest is the payload for Register.
type RegisterRequest struct {
	ID                  string `json:"component_id"`
	Name                string `json:"component_name"`
	Manufacturer        string `json:"manufacturer"`
	ManufacturingDate   string `json:"manufacturing_date"`
	BatchID             string `json:"batch_id"`
	IndigenousCertified bool   `json:"indigenous_certification"`
	SecurityClearance   string `json:"security_clearance"`
}

// EventRequest is the payload for AppendEvent. A nil Timestamp lets the
// registry stamp the event.
type EventRequest struct {
	Stage      string     `json:"stage"`
	Handler    string     `json:"handler"`
	Location   string     `json:"location"`
	Action     string     `json:"action"`
	VerifiedBy string     `json:"verified_by,omitempty"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
}

// VerificationResult is the verdict returned by Verify.
type VerificationResult struct {
	ComponentID          string   `json:"component_id"`
	ComponentName        string   `json:"component_name,omitempty"`
	Manufacturer         string   `json:"manufacturer,omitempty"`
	ManufacturerLocation string   `json:"manufacturer_location,omitempty"`
	Status               string   `json:"verification_status"`
	Authentic            bool     `json:"authentic"`
	Indigenous           bool     `json:"indigenous"`
	ChainIntegrity       bool     `json:"chain_integrity"`
	HashValid            bool     `json:"hash_verification"`
	ManufacturerValid    bool     `json:"manufacturer_verified"`
	FailedChecks         []string `json:"failed_checks,omitempty"`
	SecurityClearance    string   `json:"security_clearance,omitempty"`
	CustodyEvents        int      `json:"custody_events"`
	ManufacturingDate    string   `json:"manufacturing_date,omitempty"`
	BatchID              string   `json:"batch_id,omitempty"`
	LastUpdate           string   `json:"last_update,omitempty"`
	HashPreview          string   `json:"verification_hash,omitempty"`
	Error                string   `json:"error,omitempty"`
}

// Report is the fleet-wide summary returned by Report.
type Report struct {
	ReportID    string    `json:"report_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Summary     struct {
		TotalComponents      int    `json:"total_components"`
		VerifiedComponents   int    `json:"verified_components"`
		IndigenousComponents int    `json:"indigenous_components"`
		VerificationRate     string `json:"verification_rate"`
		IndigenousRate       string `json:"indigenous_rate"`
	} `json:"summary"`
	ManufacturerBreakdown         map[string]int `json:"manufacturer_breakdown"`
	SecurityClearanceDistribution map[string]int `json:"security_clearance_distribution"`
	ChainIntegrity                string         `json:"chain_integrity"`
	ComplianceStatus              string         `json:"compliance_status"`
}

// SimulationResult is returned by Simulate.
type SimulationResult struct {
	Processed      int      `json:"processed"`
	EventsAppended int      `json:"events_appended"`
	Skipped        []string `json:"skipped,omitempty"`
}

// LedgerOverview is returned by Ledger.
type LedgerOverview struct {
	Entries int    `json:"entries"`
	Root    string `json:"root"`
}

// ListFilter narrows List. Zero values match everything.
type ListFilter struct {
	Manufacturer string
	MinClearance string
}

// Client is the custody registry SDK entry point.
type Client struct {
	registryBase string
	httpClient   *http.Client
	bearerToken  string
	cache        *verdictCache
}

// Option is a functional option for configuring a Client.
type Option func(*Client) error

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		c.httpClient = hc
		return nil
	}
}

// WithBearerToken attaches an operator token to every request.
func WithBearerToken(token string) Option {
	return func(c *Client) error {
		c.bearerToken = token
		return nil
	}
}

// WithCacheTTL enables in-memory caching of verification results.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) error {
		if ttl <= 0 {
			return fmt.Errorf("cache TTL must be positive, got %s", ttl)
		}
		c.cache = newVerdictCache(ttl)
		return nil
	}
}

// New creates a Client connected to registryBase.
func New(registryBase string, opts ...Option) (*Client, error) {
	if registryBase == "" {
		return nil, errors.New("registry base URL is required")
	}
	c := &Client{
		registryBase: registryBase,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		if err := o(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustNew is like New but panics on error.
func MustNew(registryBase string, opts ...Option) *Client {
	c, err := New(registryBase, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Register posts a new component and returns the stored record, including
// its fingerprints and genesis custody event.
func (c *Client) Register(ctx context.Context, reg RegisterRequest) (*Component, error) {
	var resp struct {
		Component Component `json:"component"`
	}
	if err := c.call(ctx, http.MethodPost, "/api/v1/components", reg, &resp); err != nil {
		return nil, err
	}
	return &resp.Component, nil
}

// AppendEvent records a custody event and returns the new chain length.
func (c *Client) AppendEvent(ctx context.Context, id string, ev EventRequest) (int, error) {
	var resp struct {
		CustodyEvents int `json:"custody_events"`
	}
	path := "/api/v1/components/" + url.PathEscape(id) + "/events"
	if err := c.call(ctx, http.MethodPost, path, ev, &resp); err != nil {
		return 0, err
	}
	if c.cache != nil {
		c.cache.drop(id)
	}
	return resp.CustodyEvents, nil
}

// Get returns one component with its full custody chain.
func (c *Client) Get(ctx context.Context, id string) (*Component, error) {
	var resp struct {
		Component Component `json:"component"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/v1/components/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Component, nil
}

// List returns registered components in registration order.
func (c *Client) List(ctx context.Context, f ListFilter) ([]Component, error) {
	q := url.Values{}
	if f.Manufacturer != "" {
		q.Set("manufacturer", f.Manufacturer)
	}
	if f.MinClearance != "" {
		q.Set("min_clearance", f.MinClearance)
	}
	path := "/api/v1/components"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp struct {
		Components []Component `json:"components"`
	}
	if err := c.call(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Components, nil
}

// Verify returns the verdict for id. An unregistered id is not an error: the
// result carries status COMPONENT_NOT_FOUND.
func (c *Client) Verify(ctx context.Context, id string) (*VerificationResult, error) {
	if c.cache != nil {
		if res, ok := c.cache.get(id); ok {
			return res, nil
		}
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/components/"+url.PathEscape(id)+"/verify", nil)
	if err != nil {
		return nil, err
	}
	status, body, err := c.doStatusBody(req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK && status != http.StatusNotFound {
		return nil, apiError(status, body)
	}

	var res VerificationResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("decode verification: %w", err)
	}
	if c.cache != nil && status == http.StatusOK {
		c.cache.set(id, &res)
	}
	return &res, nil
}

// Report fetches a freshly computed fleet report.
func (c *Client) Report(ctx context.Context) (*Report, error) {
	var rep Report
	if err := c.call(ctx, http.MethodGet, "/api/v1/report", nil, &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

// Simulate runs the four-stage deployment simulation over every registered
// component.
func (c *Client) Simulate(ctx context.Context) (*SimulationResult, error) {
	var res SimulationResult
	if err := c.call(ctx, http.MethodPost, "/api/v1/simulate/deployment", nil, &res); err != nil {
		return nil, err
	}
	if c.cache != nil {
		c.cache.flush()
	}
	return &res, nil
}

// Ledger returns the trust ledger length and tip hash.
func (c *Client) Ledger(ctx context.Context) (*LedgerOverview, error) {
	var ov LedgerOverview
	if err := c.call(ctx, http.MethodGet, "/api/v1/ledger", nil, &ov); err != nil {
		return nil, err
	}
	return &ov, nil
}

// LedgerVerify asks the registry to re-walk its trust ledger. A broken chain
// is reported as (false, reason, nil).
func (c *Client) LedgerVerify(ctx context.Context) (bool, string, error) {
	var resp struct {
		Valid bool   `json:"valid"`
		Error string `json:"error"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/v1/ledger/verify", nil, &resp); err != nil {
		return false, "", err
	}
	return resp.Valid, resp.Error, nil
}

// call marshals reqBody (if any), executes the request and decodes the JSON
// response into respBody (if any).
func (c *Client) call(ctx context.Context, method, path string, reqBody, respBody any) error {
	req, err := c.newRequest(ctx, method, path, reqBody)
	if err != nil {
		return err
	}
	body, err := c.do(req)
	if err != nil {
		return err
	}
	if respBody != nil && len(body) > 0 {
		if err := json.Unmarshal(body, respBody); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, reqBody any) (*http.Request, error) {
	var bodyReader io.Reader
	if reqBody != nil {
		b, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.registryBase+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do executes an HTTP request, attaching the Bearer token if present.
func (c *Client) do(req *http.Request) ([]byte, error) {
	status, body, err := c.doStatusBody(req)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, req.URL.Path)
	}
	if status >= 300 {
		return nil, apiError(status, body)
	}
	return body, nil
}

// doStatusBody returns (statusCode, body, error) without failing on 4xx
// responses. The caller interprets the status code.
func (c *Client) doStatusBody(req *http.Request) (int, []byte, error) {
	if c.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func apiError(status int, body []byte) error {
	var payload struct {
		Error string `json:"error"`
	}
	msg := string(body)
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}
	return &APIError{StatusCode: status, Message: msg}
}

// --- simple in-memory verdict cache ---

type cacheEntry struct {
	result    *VerificationResult
	expiresAt time.Time
}

type verdictCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	ttl     time.Duration
}

func newVerdictCache(ttl time.Duration) *verdictCache {
	return &verdictCache{entries: make(map[string]*cacheEntry), ttl: ttl}
}

func (vc *verdictCache) get(id string) (*VerificationResult, bool) {
	vc.mu.RLock()
	defer vc.mu.RUnlock()
	e, ok := vc.entries[id]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.result, true
}

func (vc *verdictCache) set(id string, res *VerificationResult) {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	vc.entries[id] = &cacheEntry{result: res, expiresAt: time.Now().Add(vc.ttl)}
}

func (vc *verdictCache) drop(id string) {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	delete(vc.entries, id)
}

func (vc *verdictCache) flush() {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	vc.entries = make(map[string]*cacheEntry)
}
