package dexcom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mstat/metastat/defs"

	"go.uber.org/zap"
)

const (
	appID            = "d89443d2-327c-4a6f-89e5-496bbb0317db"
	baseUrl          = "https://shareous1.dexcom.com/ShareWebServices/Services"
	loginEndpoint    = "General/LoginPublisherAccountByName"
	readingsEndpoint = "Publisher/ReadPublisherLatestGlucoseValues"

	// Source names imported readings like the exported health log does.
	Source = "Glucose"

	// One day's worth.
	MinuteLimit = 1440
	CountLimit  = 288
)

type Client struct {
	client      *http.Client
	logger      *zap.Logger
	accountName string
	password    string
	sessionID   string
}

// SampleSource produces continuous glucose samples.
type SampleSource interface {
	Readings(ctx context.Context, minutes, maxCount int) ([]defs.Sample, error)
}

type LoginRequest struct {
	AccountName   string `json:"accountName"`
	Password      string `json:"password"`
	ApplicationID string `json:"applicationId"`
}

type Reading struct {
	WT          string  `json:"WT"`
	SystemTime  string  `json:"ST"`
	DisplayTime string  `json:"DT"`
	Value       float64 `json:"Value"`
	Trend       string  `json:"Trend"`
}

func New(cfg defs.DexcomConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		client:      &http.Client{Timeout: 10 * time.Second},
		logger:      logger,
		accountName: cfg.Account,
		password:    cfg.Password,
	}
}

// Readings fetches the latest readings from Dexcom's Share API as samples in
// mg/dL, oldest first. A new session is created when the current one expired.
func (c *Client) Readings(ctx context.Context, minutes, maxCount int) ([]defs.Sample, error) {
	ss, err := c.readings(ctx, minutes, maxCount)
	if err == nil {
		return ss, nil
	}
	c.logger.Debug("retrying readings with a new session", zap.Error(err))

	if _, err := c.CreateSession(ctx); err != nil {
		return nil, err
	}
	return c.readings(ctx, minutes, maxCount)
}

func (c *Client) CreateSession(ctx context.Context) (string, error) {
	lreq := &LoginRequest{
		AccountName:   c.accountName,
		Password:      c.password,
		ApplicationID: appID,
	}

	b, err := json.Marshal(lreq)
	if err != nil {
		return "", err
	}

	c.logger.Debug("making login request for sessionID",
		zap.String("account", c.accountName),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseUrl+"/"+loginEndpoint, bytes.NewBuffer(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("unable to login: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unable to login: status %d: %s", resp.StatusCode, body)
	}
	c.sessionID = strings.Trim(string(body), "\"")

	c.logger.Debug("successfully obtained sessionID",
		zap.String("sessionID", c.sessionID),
	)

	return c.sessionID, nil
}

func (c *Client) readings(ctx context.Context, minutes, maxCount int) ([]defs.Sample, error) {
	if minutes > MinuteLimit || maxCount > CountLimit {
		return nil, fmt.Errorf("window too large: minutes %d, maxCount %d", minutes, maxCount)
	}

	params := url.Values{
		"sessionId": {c.sessionID},
		"minutes":   {strconv.Itoa(minutes)},
		"maxCount":  {strconv.Itoa(maxCount)},
	}

	c.logger.Debug("making fetch request",
		zap.String("sessionID", c.sessionID),
		zap.Int("minutes", minutes),
		zap.Int("maximum count", maxCount),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseUrl+"/"+readingsEndpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unable to fetch readings: status %d", resp.StatusCode)
	}

	var readings []*Reading
	if err := json.NewDecoder(resp.Body).Decode(&readings); err != nil {
		c.logger.Debug("failed to decode readings response")
		return nil, err
	}

	c.logger.Debug("received readings from share API",
		zap.Int("count", len(readings)),
	)

	// Share lists the newest reading first.
	ss := make([]defs.Sample, len(readings))
	for i, r := range readings {
		s, err := transform(r)
		if err != nil {
			return nil, err
		}
		ss[len(readings)-1-i] = s
	}

	return ss, nil
}

func transform(r *Reading) (defs.Sample, error) {
	if len(r.WT) < 5 {
		return defs.Sample{}, fmt.Errorf("unexpected reading time: %q", r.WT)
	}
	parsedTime := strings.Trim(r.WT[4:], "()")
	unix, err := strconv.ParseInt(parsedTime, 10, 64)
	if err != nil {
		return defs.Sample{}, err
	}

	return defs.Sample{
		Time:     time.UnixMilli(unix),
		Category: defs.ContinuousGlucose,
		Source:   Source,
		Value:    r.Value,
	}, nil
}
