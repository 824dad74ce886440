package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"greenkart/internal/config"

	"github.com/rs/zerolog"
)

// SessionItem is one order line forwarded to the gateway.
type SessionItem struct {
	ID       string `json:"id"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
}

// SessionRequest describes a hosted-payment session to create.
type SessionRequest struct {
	SessionID     string
	GrossAmount   int64
	Items         []SessionItem
	CustomerName  string
	CustomerEmail string
}

// Session is the gateway's handle for one payment attempt.
type Session struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// SessionStatus is the gateway-reported status tuple for a session.
type SessionStatus struct {
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	StatusCode        string `json:"status_code"`
}

// Client is the thin RPC wrapper around the payment gateway. Both calls are
// idempotent from the engine's point of view: repeated status queries return
// the same terminal status once settled.
type Client interface {
	// CreateSession creates a hosted-payment session for an order.
	CreateSession(ctx context.Context, req *SessionRequest) (*Session, error)

	// QueryStatus polls the current status of a previously created session.
	QueryStatus(ctx context.Context, sessionID string) (*SessionStatus, error)
}

// snapClient implements Client against the Midtrans Snap and Core APIs.
type snapClient struct {
	httpClient *http.Client
	snapURL    string
	apiURL     string
	authHeader string
	logger     zerolog.Logger
}

// NewClient creates a Midtrans-backed gateway client with bounded timeouts.
func NewClient(cfg config.MidtransConfig, logger zerolog.Logger) Client {
	return &snapClient{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		snapURL:    cfg.SnapURL,
		apiURL:     strings.TrimRight(cfg.APIURL, "/"),
		authHeader: "Basic " + base64.StdEncoding.EncodeToString([]byte(cfg.ServerKey+":")),
		logger:     logger.With().Str("client", "midtrans").Logger(),
	}
}

// snapRequest is the Snap API payload.
type snapRequest struct {
	TransactionDetails struct {
		OrderID     string `json:"order_id"`
		GrossAmount int64  `json:"gross_amount"`
	} `json:"transaction_details"`
	ItemDetails     []SessionItem `json:"item_details"`
	CustomerDetails struct {
		FirstName string `json:"first_name"`
		Email     string `json:"email,omitempty"`
	} `json:"customer_details"`
}

type snapErrorResponse struct {
	ErrorMessages []string `json:"error_messages"`
}

func (c *snapClient) CreateSession(ctx context.Context, req *SessionRequest) (*Session, error) {
	var body snapRequest
	body.TransactionDetails.OrderID = req.SessionID
	body.TransactionDetails.GrossAmount = req.GrossAmount
	body.ItemDetails = req.Items
	body.CustomerDetails.FirstName = req.CustomerName
	body.CustomerDetails.Email = req.CustomerEmail

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.snapURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build session request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", c.authHeader)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error().Err(err).Str("session_id", req.SessionID).Msg("session creation request failed")
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr snapErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		c.logger.Error().
			Int("status", resp.StatusCode).
			Strs("error_messages", apiErr.ErrorMessages).
			Str("session_id", req.SessionID).
			Msg("gateway rejected session creation")
		return nil, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, strings.Join(apiErr.ErrorMessages, ", "))
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode session response: %w", err)
	}

	c.logger.Debug().Str("session_id", req.SessionID).Msg("payment session created")
	return &session, nil
}

func (c *snapClient) QueryStatus(ctx context.Context, sessionID string) (*SessionStatus, error) {
	url := fmt.Sprintf("%s/v2/%s/status", c.apiURL, sessionID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build status request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", c.authHeader)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error().Err(err).Str("session_id", sessionID).Msg("status query failed")
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("session_id", sessionID).
			Msg("gateway rejected status query")
		return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var status SessionStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode status response: %w", err)
	}

	return &status, nil
}
