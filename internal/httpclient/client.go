// Package httpclient 带重试的 JSON HTTP 客户端，供产品库与设备平台适配器共用。
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// StatusError 非 2xx 响应
type StatusError struct {
	Code int
	Body []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Code, truncate(e.Body, 256))
}

// IsStatus 判断错误是否为指定状态码
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

// Client HTTP 请求封装：5xx 与网络错误按退避重试，4xx 直接返回
type Client struct {
	HTTP    *http.Client
	Retries int
	Backoff []time.Duration
	// Header 每个请求附加的固定头（如 Authorization）
	Header http.Header
	Logger *zap.Logger
}

// New 创建客户端，timeout<=0 时使用 5 秒
func New(timeout time.Duration, retries int, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if retries < 0 {
		retries = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		HTTP:    &http.Client{Timeout: timeout},
		Retries: retries,
		Backoff: []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 500 * time.Millisecond, time.Second, 2 * time.Second},
		Header:  http.Header{},
		Logger:  logger,
	}
}

// ExponentialBackoff 以 base 起步、逐次翻倍的 n 级退避序列
func ExponentialBackoff(base time.Duration, n int) []time.Duration {
	if base <= 0 || n <= 0 {
		return nil
	}
	out := make([]time.Duration, n)
	for i := range out {
		out[i] = base << i
	}
	return out
}

// Do 发送请求；body 非 nil 时编码为 JSON。返回 2xx 响应体，否则返回 *StatusError 或网络错误。
func (c *Client) Do(ctx context.Context, method, url string, body any, header http.Header) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.Retries; attempt++ {
		respBody, code, err := c.once(ctx, method, url, payload, header)
		switch {
		case err != nil:
			lastErr = err
		case code >= 200 && code < 300:
			return respBody, nil
		case code < 500:
			return nil, &StatusError{Code: code, Body: respBody}
		default:
			lastErr = &StatusError{Code: code, Body: respBody}
		}
		if attempt == c.Retries {
			break
		}
		var backoff time.Duration
		if len(c.Backoff) > 0 {
			backoff = c.Backoff[min(attempt, len(c.Backoff)-1)]
		}
		c.Logger.Debug("http request retry",
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", backoff),
			zap.Error(lastErr))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
	return nil, lastErr
}

// GetJSON GET 并解码 JSON 响应
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	data, err := c.Do(ctx, http.MethodGet, url, nil, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// PostJSON POST JSON 并解码响应，out 为 nil 时忽略响应体
func (c *Client) PostJSON(ctx context.Context, url string, in, out any, header http.Header) error {
	data, err := c.Do(ctx, http.MethodPost, url, in, header)
	if err != nil {
		return err
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) once(ctx context.Context, method, url string, payload []byte, header http.Header) ([]byte, int, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	// 每次重试重新构造请求，避免请求体被消费
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range c.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return data, resp.StatusCode, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
