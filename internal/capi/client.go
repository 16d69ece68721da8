// Package capi talks to the Meta Conversions API: it shapes inbound
// funnel events into the provider's event record and POSTs them to the
// pixel's events endpoint.
package capi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/wederfonseca/achadinhododia/internal/config"
	"github.com/wederfonseca/achadinhododia/internal/models"
)

// actionSource marks every event as originating from the website funnel.
const actionSource = "website"

const defaultBaseURL = "https://graph.facebook.com"

// UserData is the provider's user_data block. IP and user agent are
// emitted as explicit nulls when unknown, matching what the provider
// expects; the browser identifiers are omitted entirely when absent.
type UserData struct {
	ClientIPAddress *string  `json:"client_ip_address"`
	ClientUserAgent *string  `json:"client_user_agent"`
	FBP             string   `json:"fbp,omitempty"`
	FBC             string   `json:"fbc,omitempty"`
	ExternalID      []string `json:"external_id,omitempty"`
}

// Event is a single provider-shaped event record.
type Event struct {
	EventName      string                 `json:"event_name"`
	EventTime      int64                  `json:"event_time"`
	EventID        string                 `json:"event_id"`
	EventSourceURL string                 `json:"event_source_url"`
	ActionSource   string                 `json:"action_source"`
	UserData       UserData               `json:"user_data"`
	CustomData     map[string]interface{} `json:"custom_data"`
}

// payload wraps events in the provider's single-batch envelope.
type payload struct {
	Data          []Event `json:"data"`
	TestEventCode string  `json:"test_event_code,omitempty"`
}

// Result captures the provider's answer. Body is kept for debug logging
// only and is never parsed for control flow.
type Result struct {
	Status int
	Body   string
}

// Client posts events to one pixel's Conversions API endpoint.
// BaseURL and HTTPClient are exported so tests can point the client at
// a local server.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	pixelID       string
	accessToken   string
	apiVersion    string
	testEventCode string
}

// New builds a client from the loaded configuration.
func New(cfg config.Config) *Client {
	return &Client{
		BaseURL:       defaultBaseURL,
		HTTPClient:    &http.Client{Timeout: 10 * time.Second},
		pixelID:       cfg.MetaPixelID,
		accessToken:   cfg.MetaAccessToken,
		apiVersion:    cfg.MetaAPIVersion,
		testEventCode: cfg.MetaTestEventCode,
	}
}

// BuildEvent derives the provider event record from the inbound body
// plus request-derived signals. Empty ip/ua become JSON nulls.
func BuildEvent(ev models.InboundEvent, defaultName, clientIP, userAgent string, now time.Time) Event {
	userData := UserData{
		ClientIPAddress: nullable(clientIP),
		ClientUserAgent: nullable(userAgent),
		FBP:             ev.FBP,
		FBC:             ev.FBC,
	}
	if ev.ExternalID != "" {
		// Provider convention: external_id travels as a one-element list.
		userData.ExternalID = []string{ev.ExternalID}
	}

	name := ev.EventName
	if name == "" {
		name = defaultName
	}

	customData := ev.CustomData
	if customData == nil {
		customData = map[string]interface{}{}
	}

	return Event{
		EventName:      name,
		EventTime:      now.Unix(),
		EventID:        ev.EventID,
		EventSourceURL: ev.EventSourceURL,
		ActionSource:   actionSource,
		UserData:       userData,
		CustomData:     customData,
	}
}

// Send posts one event to the pixel's events endpoint. Single attempt,
// no retry; a non-2xx status is reported in Result, not as an error.
func (c *Client) Send(ctx context.Context, event Event) (Result, error) {
	body, err := json.Marshal(payload{
		Data:          []Event{event},
		TestEventCode: c.testEventCode,
	})
	if err != nil {
		return Result{}, errors.Wrap(err, "marshal capi payload")
	}

	url := fmt.Sprintf("%s/%s/%s/events?access_token=%s", c.BaseURL, c.apiVersion, c.pixelID, c.accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{}, errors.Wrap(err, "build capi request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return Result{}, errors.Wrap(err, "post capi event")
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return Result{Status: resp.StatusCode, Body: string(respBody)}, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
