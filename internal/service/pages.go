package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/taoyao-code/zwave-configurator/internal/zwave"
)

// ParameterSummary 产品参数列表项
type ParameterSummary struct {
	Number      int    `json:"number"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Size        int    `json:"size"`
	Default     int    `json:"default"`
	Current     *int   `json:"current,omitempty"`
}

// GroupSummary 关联组列表项
type GroupSummary struct {
	zwave.AssociationGroupSpec
	Configurable bool     `json:"configurable"`
	Nodes        []string `json:"nodes"`
}

// Overview 设备主页数据
type Overview struct {
	InstalledAppID     string                 `json:"installedAppId"`
	DeviceID           string                 `json:"deviceId"`
	ProductID          int                    `json:"zwaveProductId"`
	Name               string                 `json:"name"`
	Brand              string                 `json:"brand"`
	Description        string                 `json:"description"`
	Picture            string                 `json:"picture"`
	Manufacturer       zwave.ManufacturerHex  `json:"manufacturer"`
	DeviceManufacturer *zwave.ManufacturerHex `json:"deviceManufacturer,omitempty"`
	Parameters         []ParameterSummary     `json:"parameters"`
	AssociationGroups  []GroupSummary         `json:"associationGroups"`
}

// GroupView 单个关联组的页面数据；Delta 为按用户已提交选择预览的增删集合
type GroupView struct {
	Group        zwave.AssociationGroupSpec `json:"group"`
	Configurable bool                       `json:"configurable"`
	Current      []string                   `json:"current"`
	Desired      []string                   `json:"desired,omitempty"`
	Delta        *zwave.AssociationDelta    `json:"delta,omitempty"`
}

// snapshot 一次请求内的设备快照；设备未上报的属性视为空
type snapshot struct {
	configs      zwave.CurrentConfigurations
	associations map[int][]string
	manufacturer *zwave.ManufacturerHex
}

func decodeSnapshot(state *zwave.DeviceState) (snapshot, error) {
	var snap snapshot
	configs, err := state.CurrentConfigurations()
	if err != nil && !errors.Is(err, zwave.ErrConfigurationNotFound) {
		return snap, err
	}
	snap.configs = configs

	assoc, err := state.CurrentAssociations()
	if err != nil && !errors.Is(err, zwave.ErrAssociationsNotFound) {
		return snap, err
	}
	snap.associations = assoc

	m, err := state.Manufacturer()
	switch {
	case err == nil:
		h := m.Hex()
		snap.manufacturer = &h
	case !errors.Is(err, zwave.ErrManufacturerNotFound):
		return snap, err
	}
	return snap, nil
}

func (s *Configurator) snapshot(ctx context.Context, deviceID, componentID string) (snapshot, error) {
	state, err := s.gateway.DeviceState(ctx, deviceID, componentID)
	if err != nil {
		return snapshot{}, fmt.Errorf("%w: %w", ErrGateway, err)
	}
	snap, err := decodeSnapshot(state)
	if err != nil {
		return snapshot{}, fmt.Errorf("%w: %w", ErrGateway, err)
	}
	return snap, nil
}

// Overview 绑定产品的摘要、参数与关联组列表
func (s *Configurator) Overview(ctx context.Context, installedAppID string) (*Overview, error) {
	inst, info, err := s.selected(ctx, installedAppID)
	if err != nil {
		return nil, err
	}
	snap, err := s.snapshot(ctx, inst.DeviceID, inst.ComponentID)
	if err != nil {
		return nil, err
	}

	out := &Overview{
		InstalledAppID:     inst.InstalledAppID,
		DeviceID:           inst.DeviceID,
		ProductID:          info.ID,
		Name:               info.Name,
		Brand:              info.Brand,
		Description:        info.Description,
		Picture:            info.ProductPicture(s.imageBase),
		Manufacturer:       info.Manufacturer(),
		DeviceManufacturer: snap.manufacturer,
	}
	for _, p := range info.Parameters() {
		out.Parameters = append(out.Parameters, ParameterSummary{
			Number:      p.Number,
			Name:        p.Name,
			Description: p.Description,
			Size:        p.Size,
			Default:     p.Default,
			Current:     snap.configs.Value(p.Number),
		})
	}
	for _, g := range info.AssociationGroups() {
		nodes := snap.associations[g.Number]
		if nodes == nil {
			nodes = []string{}
		}
		out.AssociationGroups = append(out.AssociationGroups, GroupSummary{
			AssociationGroupSpec: g,
			Configurable:         g.Configurable(),
			Nodes:                nodes,
		})
	}
	return out, nil
}

// DescribeParameter 参数页面的控件解析结果；sub 为用户已提交的配置（可为空）
func (s *Configurator) DescribeParameter(ctx context.Context, installedAppID string, number int, sub zwave.Submission) (zwave.Resolution, error) {
	inst, info, err := s.selected(ctx, installedAppID)
	if err != nil {
		return zwave.Resolution{}, err
	}
	spec, err := info.Parameter(number)
	if err != nil {
		return zwave.Resolution{}, err
	}
	snap, err := s.snapshot(ctx, inst.DeviceID, inst.ComponentID)
	if err != nil {
		return zwave.Resolution{}, err
	}
	return zwave.Resolve(spec, zwave.InputFromSubmission(number, snap.configs.Value(number), sub)), nil
}

// DescribeAssociationGroup 关联组页面数据
func (s *Configurator) DescribeAssociationGroup(ctx context.Context, installedAppID string, group int, sub zwave.Submission) (*GroupView, error) {
	inst, info, err := s.selected(ctx, installedAppID)
	if err != nil {
		return nil, err
	}
	spec, err := info.AssociationGroup(group)
	if err != nil {
		return nil, err
	}
	snap, err := s.snapshot(ctx, inst.DeviceID, inst.ComponentID)
	if err != nil {
		return nil, err
	}

	current := snap.associations[group]
	if current == nil {
		current = []string{}
	}
	view := &GroupView{Group: spec, Configurable: spec.Configurable(), Current: current}
	if desired, ok := sub.Strings(zwave.AssociationKey(group)); ok {
		view.Desired = desired
		delta := zwave.Reconcile(group, desired, current)
		view.Delta = &delta
	}
	return view, nil
}
