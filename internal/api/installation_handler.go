package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/zwave-configurator/internal/service"
	"github.com/taoyao-code/zwave-configurator/internal/storage"
	"github.com/taoyao-code/zwave-configurator/internal/zwave"
)

// Configurator 处理器依赖的业务接口（service.Configurator 实现）
type Configurator interface {
	Install(ctx context.Context, inst *storage.Installation) error
	Uninstall(ctx context.Context, installedAppID string) error
	SelectProduct(ctx context.Context, installedAppID string, productID int) error
	HandleManufacturerEvent(ctx context.Context, installedAppID string, m zwave.Manufacturer)
	Overview(ctx context.Context, installedAppID string) (*service.Overview, error)
	DescribeParameter(ctx context.Context, installedAppID string, number int, sub zwave.Submission) (zwave.Resolution, error)
	DescribeAssociationGroup(ctx context.Context, installedAppID string, group int, sub zwave.Submission) (*service.GroupView, error)
	ApplyConfiguration(ctx context.Context, installedAppID string, sub zwave.Submission, refresh bool) (*service.ApplyReport, error)
}

// InstallationHandler 安装实例相关接口
type InstallationHandler struct {
	svc    Configurator
	logger *zap.Logger
}

// NewInstallationHandler 创建处理器
func NewInstallationHandler(svc Configurator, logger *zap.Logger) *InstallationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstallationHandler{svc: svc, logger: logger}
}

// InstallRequest 安装请求
type InstallRequest struct {
	DeviceID    string `json:"device_id" binding:"required"`
	ComponentID string `json:"component_id"`
}

// SelectProductRequest 选择产品请求
type SelectProductRequest struct {
	ZWaveProductID int `json:"zwave_product_id" binding:"required,min=1"`
}

// ResolveRequest 页面解析请求，config 为用户已提交的配置（可省略）
type ResolveRequest struct {
	Config zwave.Submission `json:"config"`
}

// ApplyRequest 配置提交请求
type ApplyRequest struct {
	Config  zwave.Submission `json:"config" binding:"required"`
	Refresh bool             `json:"refresh"`
}

// Install 安装
func (h *InstallationHandler) Install(c *gin.Context) {
	var req InstallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "无效的请求: "+err.Error())
		return
	}
	inst := &storage.Installation{
		InstalledAppID: c.Param("id"),
		DeviceID:       req.DeviceID,
		ComponentID:    req.ComponentID,
	}
	if err := h.svc.Install(c.Request.Context(), inst); err != nil {
		h.fail(c, "install", err)
		return
	}
	respondOK(c, http.StatusCreated, inst)
}

// Uninstall 卸载
func (h *InstallationHandler) Uninstall(c *gin.Context) {
	if err := h.svc.Uninstall(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, "uninstall", err)
		return
	}
	respondOK(c, http.StatusOK, nil)
}

// SelectProduct 选择产品
func (h *InstallationHandler) SelectProduct(c *gin.Context) {
	var req SelectProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "无效的请求: "+err.Error())
		return
	}
	if err := h.svc.SelectProduct(c.Request.Context(), c.Param("id"), req.ZWaveProductID); err != nil {
		h.fail(c, "select product", err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"zwave_product_id": req.ZWaveProductID})
}

// ManufacturerEvent 设备厂商信息事件，处理失败只记录日志
func (h *InstallationHandler) ManufacturerEvent(c *gin.Context) {
	var m zwave.Manufacturer
	if err := c.ShouldBindJSON(&m); err != nil {
		respondError(c, http.StatusBadRequest, "无效的请求: "+err.Error())
		return
	}
	h.svc.HandleManufacturerEvent(c.Request.Context(), c.Param("id"), m)
	respondOK(c, http.StatusAccepted, nil)
}

// Overview 设备主页
func (h *InstallationHandler) Overview(c *gin.Context) {
	ov, err := h.svc.Overview(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "overview", err)
		return
	}
	respondOK(c, http.StatusOK, ov)
}

// ResolveParameter 参数页面
func (h *InstallationHandler) ResolveParameter(c *gin.Context) {
	number, ok := intParam(c, "number")
	if !ok {
		return
	}
	sub, ok := bindSubmission(c)
	if !ok {
		return
	}
	res, err := h.svc.DescribeParameter(c.Request.Context(), c.Param("id"), number, sub)
	if err != nil {
		h.fail(c, "resolve parameter", err)
		return
	}
	respondOK(c, http.StatusOK, res)
}

// ResolveAssociationGroup 关联组页面
func (h *InstallationHandler) ResolveAssociationGroup(c *gin.Context) {
	group, ok := intParam(c, "group")
	if !ok {
		return
	}
	sub, ok := bindSubmission(c)
	if !ok {
		return
	}
	view, err := h.svc.DescribeAssociationGroup(c.Request.Context(), c.Param("id"), group, sub)
	if err != nil {
		h.fail(c, "resolve association group", err)
		return
	}
	respondOK(c, http.StatusOK, view)
}

// ApplyConfiguration 提交配置
func (h *InstallationHandler) ApplyConfiguration(c *gin.Context) {
	var req ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "无效的请求: "+err.Error())
		return
	}
	report, err := h.svc.ApplyConfiguration(c.Request.Context(), c.Param("id"), req.Config, req.Refresh)
	if err != nil {
		h.fail(c, "apply configuration", err)
		return
	}
	respondOK(c, http.StatusOK, report)
}

func (h *InstallationHandler) fail(c *gin.Context, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(op+" failed",
			zap.String("installed_app_id", c.Param("id")),
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err))
	}
	respondError(c, status, err.Error())
}

func intParam(c *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil || n < 0 {
		respondError(c, http.StatusBadRequest, "无效的路径参数: "+name)
		return 0, false
	}
	return n, true
}

// bindSubmission 请求体可为空
func bindSubmission(c *gin.Context) (zwave.Submission, bool) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, "无效的请求: "+err.Error())
		return nil, false
	}
	return req.Config, true
}
