// Package smartthings 设备平台 REST 适配器：读取能力状态、下发能力命令。
package smartthings

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taoyao-code/zwave-configurator/internal/httpclient"
	"github.com/taoyao-code/zwave-configurator/internal/metrics"
	"github.com/taoyao-code/zwave-configurator/internal/zwave"
)

var (
	ErrDeviceNotFound = errors.New("device not found")
	// ErrCommandRejected 平台返回的命令状态不是 ACCEPTED/COMPLETED
	ErrCommandRejected = errors.New("command rejected")
)

// 命令结果状态
const (
	StatusAccepted  = "ACCEPTED"
	StatusCompleted = "COMPLETED"
)

// RequestIDHeader 请求关联 ID 头
const RequestIDHeader = "X-Request-Id"

// DefaultComponent 默认组件
const DefaultComponent = "main"

// Client 平台 REST 客户端
type Client struct {
	baseURL string
	http    *httpclient.Client
	limiter *RateLimiter
	logger  *zap.Logger
	metrics *metrics.AppMetrics
}

// New 创建客户端，token 以 Bearer 方式附加到所有请求
func New(baseURL, token string, hc *httpclient.Client, limiter *RateLimiter, logger *zap.Logger, m *metrics.AppMetrics) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limiter == nil {
		limiter = NewRateLimiter(0, 0)
	}
	if token != "" {
		hc.Header.Set("Authorization", "Bearer "+token)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
		limiter: limiter,
		logger:  logger,
		metrics: m,
	}
}

// Limiter 返回限流器（统计用）
func (c *Client) Limiter() *RateLimiter { return c.limiter }

func component(id string) string {
	if id == "" {
		return DefaultComponent
	}
	return id
}

// DeviceState 读取 Z-Wave 配置能力的全部属性
// GET /devices/{id}/components/{component}/capabilities/{capability}/status
func (c *Client) DeviceState(ctx context.Context, deviceID, componentID string) (*zwave.DeviceState, error) {
	u := fmt.Sprintf("%s/devices/%s/components/%s/capabilities/%s/status",
		c.baseURL, url.PathEscape(deviceID), url.PathEscape(component(componentID)), url.PathEscape(zwave.CapabilityID))

	attrs := map[string]zwave.Attribute{}
	if err := c.http.GetJSON(ctx, u, &attrs); err != nil {
		if httpclient.IsStatus(err, http.StatusNotFound) {
			return nil, fmt.Errorf("device %s: %w", deviceID, ErrDeviceNotFound)
		}
		return nil, fmt.Errorf("read device %s status: %w", deviceID, err)
	}
	return &zwave.DeviceState{DeviceID: deviceID, Attributes: attrs}, nil
}

type deviceCommand struct {
	Component  string `json:"component"`
	Capability string `json:"capability"`
	Command    string `json:"command"`
	Arguments  []any  `json:"arguments,omitempty"`
}

type commandsRequest struct {
	Commands []deviceCommand `json:"commands"`
}

type commandsResponse struct {
	Results []struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"results"`
}

// ExecuteCommand 下发能力命令 POST /devices/{id}/commands
func (c *Client) ExecuteCommand(ctx context.Context, deviceID, componentID string, cmd zwave.Command) error {
	started := time.Now()
	err := c.execute(ctx, deviceID, componentID, cmd)
	c.metrics.ObserveDispatch(cmd.Name, started, err)
	return err
}

func (c *Client) execute(ctx context.Context, deviceID, componentID string, cmd zwave.Command) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	requestID := uuid.NewString()
	body := commandsRequest{Commands: []deviceCommand{{
		Component:  component(componentID),
		Capability: zwave.CapabilityID,
		Command:    cmd.Name,
		Arguments:  cmd.Arguments,
	}}}
	u := fmt.Sprintf("%s/devices/%s/commands", c.baseURL, url.PathEscape(deviceID))

	var resp commandsResponse
	err := c.http.PostJSON(ctx, u, body, &resp, http.Header{RequestIDHeader: {requestID}})
	if err != nil {
		if httpclient.IsStatus(err, http.StatusNotFound) {
			return fmt.Errorf("device %s: %w", deviceID, ErrDeviceNotFound)
		}
		c.logger.Warn("device command failed",
			zap.String("request_id", requestID),
			zap.String("device_id", deviceID),
			zap.String("command", cmd.Name),
			zap.Error(err))
		return fmt.Errorf("execute %s on %s: %w", cmd.Name, deviceID, err)
	}

	if len(resp.Results) > 0 {
		status := resp.Results[0].Status
		if status != "" && status != StatusAccepted && status != StatusCompleted {
			return fmt.Errorf("execute %s on %s: %w: %s", cmd.Name, deviceID, ErrCommandRejected, status)
		}
	}
	c.logger.Debug("device command sent",
		zap.String("request_id", requestID),
		zap.String("device_id", deviceID),
		zap.String("command", cmd.Name),
		zap.Any("arguments", cmd.Arguments))
	return nil
}
