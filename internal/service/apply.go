package service

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/taoyao-code/zwave-configurator/internal/metrics"
	"github.com/taoyao-code/zwave-configurator/internal/product"
	"github.com/taoyao-code/zwave-configurator/internal/storage"
	"github.com/taoyao-code/zwave-configurator/internal/zwave"
)

// ItemStatus 单项处理结果
type ItemStatus string

const (
	StatusApplied ItemStatus = "applied"
	StatusSkipped ItemStatus = "skipped"
	StatusFailed  ItemStatus = "failed"
)

// 跳过/失败原因
const (
	ReasonVirtual         = "virtual device"
	ReasonNothingToDo     = "nothing submitted"
	ReasonNoValue         = "no value resolved"
	ReasonUnchanged       = "unchanged"
	ReasonNotConfigurable = "group not configurable"
	ReasonTooManyNodes    = "too many nodes"
)

// ParameterResult 单个参数的处理结果
type ParameterResult struct {
	Parameter int        `json:"parameter"`
	Status    ItemStatus `json:"status"`
	Reason    string     `json:"reason,omitempty"`
	Value     *int       `json:"value,omitempty"`
	Reset     bool       `json:"reset,omitempty"`
	// Err 失败原因（Reason 为其文本）
	Err error `json:"-"`
}

// AssociationResult 单个关联组的处理结果
type AssociationResult struct {
	Group  int        `json:"group"`
	Status ItemStatus `json:"status"`
	Reason string     `json:"reason,omitempty"`
	Add    []int      `json:"add,omitempty"`
	Remove []int      `json:"remove,omitempty"`
	Err    error      `json:"-"`
}

// ApplyReport 一次配置提交的处理报告（按参数号、组号升序）
type ApplyReport struct {
	InstalledAppID string              `json:"installedAppId"`
	Parameters     []ParameterResult   `json:"parameters"`
	Associations   []AssociationResult `json:"associations"`
}

// Applied 成功下发的命令数
func (r *ApplyReport) Applied() int {
	n := 0
	for _, p := range r.Parameters {
		if p.Status == StatusApplied {
			n++
		}
	}
	for _, a := range r.Associations {
		if a.Status == StatusApplied {
			n++
		}
	}
	return n
}

// applyRun 单次提交的共享只读上下文与结果收集
type applyRun struct {
	s       *Configurator
	inst    *storage.Installation
	info    *product.Info
	snap    snapshot
	refresh bool

	mu     sync.Mutex
	report ApplyReport
}

// ApplyConfiguration 处理一次配置提交：每个参数、每个关联组各一个 goroutine，
// 只下发与设备当前状态不同的项（refresh 时参数强制重发）。
// 单项失败记录在报告中，不影响其他项；只有加载安装、产品或设备快照失败时返回错误。
func (s *Configurator) ApplyConfiguration(ctx context.Context, installedAppID string, sub zwave.Submission, refresh bool) (*ApplyReport, error) {
	inst, info, err := s.selected(ctx, installedAppID)
	if err != nil {
		return nil, err
	}
	snap, err := s.snapshot(ctx, inst.DeviceID, inst.ComponentID)
	if err != nil {
		return nil, err
	}

	run := &applyRun{
		s:       s,
		inst:    inst,
		info:    info,
		snap:    snap,
		refresh: refresh,
		report: ApplyReport{
			InstalledAppID: installedAppID,
			Parameters:     []ParameterResult{},
			Associations:   []AssociationResult{},
		},
	}

	var wg sync.WaitGroup
	for _, c := range zwave.CollectParameterConfigs(sub) {
		wg.Add(1)
		go func(c zwave.ParameterConfig) {
			defer wg.Done()
			run.addParameter(run.parameter(ctx, c))
		}(c)
	}
	for _, sel := range zwave.CollectAssociationSelections(sub) {
		wg.Add(1)
		go func(sel zwave.AssociationSelection) {
			defer wg.Done()
			run.addAssociation(run.association(ctx, sel))
		}(sel)
	}
	wg.Wait()

	sort.Slice(run.report.Parameters, func(i, j int) bool {
		return run.report.Parameters[i].Parameter < run.report.Parameters[j].Parameter
	})
	sort.Slice(run.report.Associations, func(i, j int) bool {
		return run.report.Associations[i].Group < run.report.Associations[j].Group
	})

	s.logger.Info("configuration applied",
		zap.String("installed_app_id", installedAppID),
		zap.Int("parameters", len(run.report.Parameters)),
		zap.Int("associations", len(run.report.Associations)),
		zap.Int("dispatched", run.report.Applied()),
		zap.Bool("refresh", refresh))
	return &run.report, nil
}

func (r *applyRun) parameter(ctx context.Context, c zwave.ParameterConfig) ParameterResult {
	res := ParameterResult{Parameter: c.Parameter}
	if c.Virtual {
		return skipped(res, ReasonVirtual)
	}
	if !c.NeedsUpdate() {
		return skipped(res, ReasonNothingToDo)
	}
	spec, err := r.info.Parameter(c.Parameter)
	if err != nil {
		return r.failed(res, err)
	}
	decision, ok := c.Resolve(spec)
	if !ok {
		return skipped(res, ReasonNoValue)
	}
	res.Value, res.Reset = decision.Value, decision.Reset
	if !zwave.NeedsDispatch(decision, r.snap.configs.Value(c.Parameter), r.refresh) {
		return skipped(res, ReasonUnchanged)
	}
	value, err := zwave.EncodeValueStrict(*decision.Value, spec.Size)
	if err != nil {
		return r.failed(res, err)
	}
	if err := r.s.dispatch(ctx, r.inst, zwave.UpdateConfiguration(c.Parameter, value, decision.Reset)); err != nil {
		return r.failed(res, err)
	}
	res.Status = StatusApplied
	return res
}

func (r *applyRun) association(ctx context.Context, sel zwave.AssociationSelection) AssociationResult {
	res := AssociationResult{Group: sel.Group}
	spec, err := r.info.AssociationGroup(sel.Group)
	if err != nil {
		return r.associationFailed(res, err)
	}
	if !spec.Configurable() {
		res.Status, res.Reason = StatusSkipped, ReasonNotConfigurable
		return res
	}
	current := r.snap.associations[sel.Group]
	if size := zwave.ResultingSize(sel.Nodes, current); size > spec.MaxNodes {
		r.s.logger.Warn("association selection exceeds group capacity",
			zap.String("installed_app_id", r.inst.InstalledAppID),
			zap.Int("group", sel.Group),
			zap.Int("selected", size),
			zap.Int("max_nodes", spec.MaxNodes))
		res.Status, res.Reason = StatusSkipped, ReasonTooManyNodes
		return res
	}
	delta := zwave.Reconcile(sel.Group, sel.Nodes, current)
	res.Add, res.Remove = delta.Add, delta.Remove
	if delta.Empty() {
		res.Status, res.Reason = StatusSkipped, ReasonUnchanged
		return res
	}
	if err := r.s.dispatch(ctx, r.inst, zwave.UpdateAssociations(delta)); err != nil {
		return r.associationFailed(res, err)
	}
	res.Status = StatusApplied
	return res
}

func skipped(res ParameterResult, reason string) ParameterResult {
	res.Status, res.Reason = StatusSkipped, reason
	return res
}

func (r *applyRun) failed(res ParameterResult, err error) ParameterResult {
	r.s.logger.Warn("parameter update failed",
		zap.String("installed_app_id", r.inst.InstalledAppID),
		zap.Int("parameter", res.Parameter),
		zap.Error(err))
	res.Status, res.Reason, res.Err = StatusFailed, err.Error(), err
	return res
}

func (r *applyRun) associationFailed(res AssociationResult, err error) AssociationResult {
	r.s.logger.Warn("association update failed",
		zap.String("installed_app_id", r.inst.InstalledAppID),
		zap.Int("group", res.Group),
		zap.Error(err))
	res.Status, res.Reason, res.Err = StatusFailed, err.Error(), err
	return res
}

func (r *applyRun) addParameter(res ParameterResult) {
	r.s.metrics.ParameterUpdate(metricResult(res.Status))
	r.mu.Lock()
	r.report.Parameters = append(r.report.Parameters, res)
	r.mu.Unlock()
}

func (r *applyRun) addAssociation(res AssociationResult) {
	r.s.metrics.AssociationUpdate(metricResult(res.Status))
	r.mu.Lock()
	r.report.Associations = append(r.report.Associations, res)
	r.mu.Unlock()
}

func metricResult(s ItemStatus) string {
	switch s {
	case StatusApplied:
		return metrics.ResultOK
	case StatusSkipped:
		return metrics.ResultSkipped
	default:
		return metrics.ResultError
	}
}
