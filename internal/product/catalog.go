package product

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/taoyao-code/zwave-configurator/internal/httpclient"
	"github.com/taoyao-code/zwave-configurator/internal/metrics"
)

// Catalog 产品元数据查询
type Catalog interface {
	Product(ctx context.Context, id int) (*Info, error)
}

// AllianceClient 通过 HTTP 访问 Z-Wave Alliance 产品库
type AllianceClient struct {
	baseURL string
	http    *httpclient.Client
	logger  *zap.Logger
	metrics *metrics.AppMetrics
}

var _ Catalog = (*AllianceClient)(nil)

// NewAllianceClient 创建产品库客户端，baseURL 形如 https://products.z-wavealliance.org
func NewAllianceClient(baseURL string, client *httpclient.Client, logger *zap.Logger, m *metrics.AppMetrics) *AllianceClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AllianceClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    client,
		logger:  logger,
		metrics: m,
	}
}

// Product GET <base>/products/<id>/JSON，404 映射为 ErrProductNotFound
func (c *AllianceClient) Product(ctx context.Context, id int) (*Info, error) {
	if id <= 0 {
		return nil, fmt.Errorf("product %d: %w", id, ErrProductNotFound)
	}
	url := fmt.Sprintf("%s/products/%d/JSON", c.baseURL, id)

	var info Info
	if err := c.http.GetJSON(ctx, url, &info); err != nil {
		c.metrics.ProductLookup("catalog", metrics.ResultError)
		if httpclient.IsStatus(err, http.StatusNotFound) {
			return nil, fmt.Errorf("product %d: %w", id, ErrProductNotFound)
		}
		c.logger.Warn("product lookup failed", zap.Int("product_id", id), zap.Error(err))
		return nil, fmt.Errorf("fetch product %d: %w", id, err)
	}
	if info.ID == 0 {
		info.ID = id
	}
	c.metrics.ProductLookup("catalog", metrics.ResultOK)
	return &info, nil
}
