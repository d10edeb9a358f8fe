// Package zwave 实现 Z-Wave 配置参数与关联组的核心计算：
// 参数值编解码、UI 选项解析、关联组差异计算与参数更新规划。
// 本包不做任何 I/O，所有输入（设备快照、产品元数据）由调用方显式传入。
package zwave

// CapabilityID 平台侧 Z-Wave 配置能力标识
const CapabilityID = "benchlocket65304.zwaveConfiguration"

// ValueRange 参数取值区间（From==To 为离散枚举项，From<To 为连续区间）
type ValueRange struct {
	From  int    `json:"from" yaml:"from"`
	To    int    `json:"to" yaml:"to"`
	Label string `json:"label" yaml:"label"`
}

// Discrete 是否为离散选项
func (r ValueRange) Discrete() bool { return r.From == r.To }

// Contains 闭区间 [From, To] 判定
func (r ValueRange) Contains(v int) bool { return v >= r.From && v <= r.To }

// ParameterSpec 产品元数据中的配置参数定义（只读）
type ParameterSpec struct {
	Number      int          `json:"number"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Size        int          `json:"size"`
	Default     int          `json:"default"`
	Ranges      []ValueRange `json:"ranges"`
}

// DiscreteOptions 返回离散选项（保持元数据顺序）
func (p ParameterSpec) DiscreteOptions() []ValueRange {
	var out []ValueRange
	for _, r := range p.Ranges {
		if r.Discrete() {
			out = append(out, r)
		}
	}
	return out
}

// ContinuousRanges 返回连续区间（保持元数据顺序）
func (p ParameterSpec) ContinuousRanges() []ValueRange {
	var out []ValueRange
	for _, r := range p.Ranges {
		if !r.Discrete() {
			out = append(out, r)
		}
	}
	return out
}

// AssociationGroupSpec 产品元数据中的关联组定义
type AssociationGroupSpec struct {
	Number      int    `json:"number"`
	MaxNodes    int    `json:"maxNodes"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Configurable 最大节点数大于1的关联组才允许用户配置
func (g AssociationGroupSpec) Configurable() bool { return g.MaxNodes > 1 }

// CurrentConfigurations 参数号 -> 已解码的当前值
type CurrentConfigurations map[int]int

// Value 查询参数当前值，未上报时返回 nil
func (c CurrentConfigurations) Value(parameter int) *int {
	v, ok := c[parameter]
	if !ok {
		return nil
	}
	return &v
}

// UpdateDecision 单个参数的最终更新决策
type UpdateDecision struct {
	Parameter int  `json:"parameter"`
	Reset     bool `json:"reset"`
	Value     *int `json:"value,omitempty"`
}

// AssociationDelta 关联组需要增删的节点（Remove 永远不含 lifeline 节点）
type AssociationDelta struct {
	Group  int   `json:"group"`
	Add    []int `json:"add"`
	Remove []int `json:"remove"`
}

// Empty 无需下发命令
func (d AssociationDelta) Empty() bool { return len(d.Add) == 0 && len(d.Remove) == 0 }
