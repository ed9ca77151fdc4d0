// Package algoclient 访问外部排课服务（/v1/algo/schedule/all-data/:id）。
// 排课算法本身由外部服务负责，这里只拉取其结果。
package algoclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

var (
	// ErrNotFound 外部服务返回 404
	ErrNotFound = errors.New("algoclient: schedule not found")
	// ErrUpstream 外部服务返回非 2xx 或网络错误
	ErrUpstream = errors.New("algoclient: upstream failure")
)

const maxResponseBytes = 8 << 20

// Client 外部排课服务客户端，出站请求按 rps 限速
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// New 创建客户端；rps<=0 时不限速
func New(baseURL string, timeout time.Duration, rps float64) *Client {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// FetchSchedule 拉取指定 id 的完整排课数据，原样返回 JSON
func (c *Client) FetchSchedule(ctx context.Context, id string) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := c.baseURL + "/v1/algo/schedule/all-data/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("构造请求失败: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: invalid json", ErrUpstream)
	}
	return json.RawMessage(body), nil
}
