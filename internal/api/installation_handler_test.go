package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taoyao-code/zwave-configurator/internal/api/middleware"
	"github.com/taoyao-code/zwave-configurator/internal/product"
	"github.com/taoyao-code/zwave-configurator/internal/service"
	"github.com/taoyao-code/zwave-configurator/internal/storage"
	"github.com/taoyao-code/zwave-configurator/internal/zwave"
)

// fakeConfigurator 各方法可按需覆盖，未设置时返回零值
type fakeConfigurator struct {
	InstallFunc       func(ctx context.Context, inst *storage.Installation) error
	SelectProductFunc func(ctx context.Context, id string, productID int) error
	OverviewFunc      func(ctx context.Context, id string) (*service.Overview, error)
	DescribeFunc      func(ctx context.Context, id string, number int, sub zwave.Submission) (zwave.Resolution, error)
	GroupFunc         func(ctx context.Context, id string, group int, sub zwave.Submission) (*service.GroupView, error)
	ApplyFunc         func(ctx context.Context, id string, sub zwave.Submission, refresh bool) (*service.ApplyReport, error)

	events []zwave.Manufacturer
}

func (f *fakeConfigurator) Install(ctx context.Context, inst *storage.Installation) error {
	if f.InstallFunc != nil {
		return f.InstallFunc(ctx, inst)
	}
	return nil
}

func (f *fakeConfigurator) Uninstall(ctx context.Context, id string) error { return nil }

func (f *fakeConfigurator) SelectProduct(ctx context.Context, id string, productID int) error {
	if f.SelectProductFunc != nil {
		return f.SelectProductFunc(ctx, id, productID)
	}
	return nil
}

func (f *fakeConfigurator) HandleManufacturerEvent(ctx context.Context, id string, m zwave.Manufacturer) {
	f.events = append(f.events, m)
}

func (f *fakeConfigurator) Overview(ctx context.Context, id string) (*service.Overview, error) {
	if f.OverviewFunc != nil {
		return f.OverviewFunc(ctx, id)
	}
	return &service.Overview{InstalledAppID: id}, nil
}

func (f *fakeConfigurator) DescribeParameter(ctx context.Context, id string, number int, sub zwave.Submission) (zwave.Resolution, error) {
	if f.DescribeFunc != nil {
		return f.DescribeFunc(ctx, id, number, sub)
	}
	return zwave.Resolution{Parameter: number}, nil
}

func (f *fakeConfigurator) DescribeAssociationGroup(ctx context.Context, id string, group int, sub zwave.Submission) (*service.GroupView, error) {
	if f.GroupFunc != nil {
		return f.GroupFunc(ctx, id, group, sub)
	}
	return &service.GroupView{}, nil
}

func (f *fakeConfigurator) ApplyConfiguration(ctx context.Context, id string, sub zwave.Submission, refresh bool) (*service.ApplyReport, error) {
	if f.ApplyFunc != nil {
		return f.ApplyFunc(ctx, id, sub, refresh)
	}
	return &service.ApplyReport{InstalledAppID: id}, nil
}

func newTestRouter(svc Configurator, auth middleware.AuthConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, svc, auth, zap.NewNop())
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) StandardResponse {
	t.Helper()
	var resp StandardResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestInstallRoute(t *testing.T) {
	t.Run("安装成功", func(t *testing.T) {
		var got *storage.Installation
		svc := &fakeConfigurator{InstallFunc: func(ctx context.Context, inst *storage.Installation) error {
			got = inst
			return nil
		}}
		r := newTestRouter(svc, middleware.AuthConfig{})

		rr := doJSON(t, r, http.MethodPost, "/api/installations/app-1", gin.H{"device_id": "dev-1"}, nil)
		assert.Equal(t, http.StatusCreated, rr.Code)
		require.NotNil(t, got)
		assert.Equal(t, "app-1", got.InstalledAppID)
		assert.Equal(t, "dev-1", got.DeviceID)
		assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("缺少设备ID", func(t *testing.T) {
		r := newTestRouter(&fakeConfigurator{}, middleware.AuthConfig{})
		rr := doJSON(t, r, http.MethodPost, "/api/installations/app-1", gin.H{}, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"安装不存在", fmt.Errorf("%w: app-1", service.ErrInstallationNotFound), http.StatusNotFound},
		{"产品不存在", fmt.Errorf("load: %w", product.ErrProductNotFound), http.StatusNotFound},
		{"厂商不一致", service.ErrProductMismatch, http.StatusConflict},
		{"未选择产品", service.ErrProductNotSelected, http.StatusConflict},
		{"平台错误", fmt.Errorf("%w: timeout", service.ErrGateway), http.StatusBadGateway},
		{"未知错误", fmt.Errorf("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeConfigurator{SelectProductFunc: func(ctx context.Context, id string, productID int) error {
				return tt.err
			}}
			r := newTestRouter(svc, middleware.AuthConfig{})
			rr := doJSON(t, r, http.MethodPut, "/api/installations/app-1/product", gin.H{"zwave_product_id": 3600}, nil)
			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.status, decode(t, rr).Code)
		})
	}
}

func TestSelectProductValidation(t *testing.T) {
	r := newTestRouter(&fakeConfigurator{}, middleware.AuthConfig{})
	rr := doJSON(t, r, http.MethodPut, "/api/installations/app-1/product", gin.H{"zwave_product_id": 0}, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestManufacturerEventRoute(t *testing.T) {
	svc := &fakeConfigurator{}
	r := newTestRouter(svc, middleware.AuthConfig{})

	body := gin.H{"manufacturerId": 0x86, "productTypeId": 3, "productId": 0x60}
	rr := doJSON(t, r, http.MethodPost, "/api/installations/app-1/events/manufacturer", body, nil)
	assert.Equal(t, http.StatusAccepted, rr.Code)
	require.Len(t, svc.events, 1)
	assert.Equal(t, zwave.Manufacturer{ManufacturerID: 0x86, ProductTypeID: 3, ProductID: 0x60}, svc.events[0])
}

func TestResolveParameterRoute(t *testing.T) {
	t.Run("请求体可为空", func(t *testing.T) {
		var gotSub zwave.Submission
		svc := &fakeConfigurator{DescribeFunc: func(ctx context.Context, id string, number int, sub zwave.Submission) (zwave.Resolution, error) {
			gotSub = sub
			return zwave.Resolution{Parameter: number}, nil
		}}
		r := newTestRouter(svc, middleware.AuthConfig{})

		rr := doJSON(t, r, http.MethodPost, "/api/installations/app-1/parameters/5/resolve", nil, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Nil(t, gotSub)

		data, ok := decode(t, rr).Data.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, float64(5), data["parameter"])
	})

	t.Run("传入已提交配置", func(t *testing.T) {
		var gotSub zwave.Submission
		svc := &fakeConfigurator{DescribeFunc: func(ctx context.Context, id string, number int, sub zwave.Submission) (zwave.Resolution, error) {
			gotSub = sub
			return zwave.Resolution{}, nil
		}}
		r := newTestRouter(svc, middleware.AuthConfig{})

		body := gin.H{"config": gin.H{"parameter5Enum": 0}}
		rr := doJSON(t, r, http.MethodPost, "/api/installations/app-1/parameters/5/resolve", body, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		n, ok := gotSub.Number("parameter5Enum")
		assert.True(t, ok)
		assert.Equal(t, 0, n)
	})

	t.Run("参数号非法", func(t *testing.T) {
		r := newTestRouter(&fakeConfigurator{}, middleware.AuthConfig{})
		rr := doJSON(t, r, http.MethodPost, "/api/installations/app-1/parameters/abc/resolve", nil, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("参数不存在", func(t *testing.T) {
		svc := &fakeConfigurator{DescribeFunc: func(ctx context.Context, id string, number int, sub zwave.Submission) (zwave.Resolution, error) {
			return zwave.Resolution{}, product.ErrParameterNotFound
		}}
		r := newTestRouter(svc, middleware.AuthConfig{})
		rr := doJSON(t, r, http.MethodPost, "/api/installations/app-1/parameters/9/resolve", nil, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestResolveAssociationGroupRoute(t *testing.T) {
	var gotGroup int
	svc := &fakeConfigurator{GroupFunc: func(ctx context.Context, id string, group int, sub zwave.Submission) (*service.GroupView, error) {
		gotGroup = group
		return &service.GroupView{Configurable: true}, nil
	}}
	r := newTestRouter(svc, middleware.AuthConfig{})
	rr := doJSON(t, r, http.MethodPost, "/api/installations/app-1/association-groups/2/resolve", nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 2, gotGroup)
}

func TestApplyConfigurationRoute(t *testing.T) {
	t.Run("提交配置", func(t *testing.T) {
		var gotRefresh bool
		svc := &fakeConfigurator{ApplyFunc: func(ctx context.Context, id string, sub zwave.Submission, refresh bool) (*service.ApplyReport, error) {
			gotRefresh = refresh
			return &service.ApplyReport{InstalledAppID: id, Parameters: []service.ParameterResult{
				{Parameter: 5, Status: service.StatusApplied},
			}}, nil
		}}
		r := newTestRouter(svc, middleware.AuthConfig{})

		body := gin.H{"config": gin.H{"parameter5Number": 42}, "refresh": true}
		rr := doJSON(t, r, http.MethodPost, "/api/installations/app-1/configuration", body, nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, gotRefresh)
	})

	t.Run("缺少配置", func(t *testing.T) {
		r := newTestRouter(&fakeConfigurator{}, middleware.AuthConfig{})
		rr := doJSON(t, r, http.MethodPost, "/api/installations/app-1/configuration", gin.H{"refresh": true}, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestOverviewRoute(t *testing.T) {
	svc := &fakeConfigurator{OverviewFunc: func(ctx context.Context, id string) (*service.Overview, error) {
		return nil, service.ErrProductNotSelected
	}}
	r := newTestRouter(svc, middleware.AuthConfig{})
	rr := doJSON(t, r, http.MethodGet, "/api/installations/app-1", nil, nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestAPIKeyAuth(t *testing.T) {
	auth := middleware.AuthConfig{Enabled: true, APIKeys: []string{"sk_test_123456789"}}
	r := newTestRouter(&fakeConfigurator{}, auth)

	t.Run("缺少API Key", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodGet, "/api/installations/app-1", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("无效API Key", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodGet, "/api/installations/app-1", nil, map[string]string{"X-API-Key": "wrong"})
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("Header携带API Key", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodGet, "/api/installations/app-1", nil, map[string]string{"X-API-Key": "sk_test_123456789"})
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Bearer格式", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodGet, "/api/installations/app-1", nil, map[string]string{"Authorization": "Bearer sk_test_123456789"})
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}
