package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Status mirrors the /data body of the controller.
type Status struct {
	Temp  float64 `json:"temp"`
	Hum   float64 `json:"hum"`
	Fan   bool    `json:"fan"`
	Lamp  bool    `json:"lamp"`
	Valid *bool   `json:"valid,omitempty"`
}

// SensorOK reports whether the reading is real rather than the -99 sentinel.
func (s Status) SensorOK() bool {
	if s.Valid != nil {
		return *s.Valid
	}
	return s.Temp != -99 || s.Hum != -99
}

// Actuator names the device an override targets.
type Actuator string

const (
	Fan  Actuator = "fan"
	Lamp Actuator = "lamp"
)

// Client calls a running climate controller.
type Client struct {
	rc *resty.Client
}

// New returns a client for the controller at baseURL (e.g. http://192.168.4.1).
func New(baseURL string, timeout time.Duration) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{rc: rc}
}

// Status fetches the current reading and actuator state.
func (c *Client) Status(ctx context.Context) (Status, error) {
	resp, err := c.rc.R().SetContext(ctx).Get("/data")
	if err != nil {
		return Status{}, fmt.Errorf("get /data: %w", err)
	}
	if resp.IsError() {
		return Status{}, fmt.Errorf("get /data: unexpected status %s", resp.Status())
	}

	var status Status
	if err := json.Unmarshal(resp.Body(), &status); err != nil {
		return Status{}, fmt.Errorf("decode /data: %w", err)
	}
	return status, nil
}

// Set sends an override and returns the state observed right after it.
// Automatic rules may immediately undo an override (a hot reading forces the lamp off).
func (c *Client) Set(ctx context.Context, actuator Actuator, on bool) (Status, error) {
	path, err := overridePath(actuator, on)
	if err != nil {
		return Status{}, err
	}

	resp, err := c.rc.R().SetContext(ctx).SetHeader("Accept", "text/html").Get(path)
	if err != nil {
		return Status{}, fmt.Errorf("get %s: %w", path, err)
	}
	if resp.IsError() {
		return Status{}, fmt.Errorf("get %s: unexpected status %s", path, resp.Status())
	}
	return c.Status(ctx)
}

func overridePath(actuator Actuator, on bool) (string, error) {
	suffix := "Off"
	if on {
		suffix = "On"
	}
	switch actuator {
	case Fan, Lamp:
		return "/" + string(actuator) + suffix, nil
	default:
		return "", fmt.Errorf("unknown actuator %q", actuator)
	}
}
