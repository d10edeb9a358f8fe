package zwave

import "sort"

// ParameterConfig 某参数在一次提交中的合并结果
type ParameterConfig struct {
	Parameter int  `json:"parameter"`
	Reset     bool `json:"reset"`
	Virtual   bool `json:"virtual"`
	// Boolean 布尔开关提交为 true；BooleanOff 布尔开关显式提交为 false
	Boolean    bool `json:"boolean"`
	BooleanOff bool `json:"booleanOff"`
	Number     *int `json:"number,omitempty"`
	Enum       *int `json:"enum,omitempty"`
}

// AssociationSelection 用户为某关联组选择的目标节点（十六进制）
type AssociationSelection struct {
	Group int      `json:"group"`
	Nodes []string `json:"nodes"`
}

// fragment 单个 key 贡献的部分配置
func fragment(key ConfigKey, raw string, sub Submission) ParameterConfig {
	c := ParameterConfig{Parameter: key.Parameter}
	switch key.Kind {
	case KindDefault:
		v, _ := sub.Bool(raw)
		c.Reset = v
	case KindVirtual:
		v, _ := sub.Bool(raw)
		c.Virtual = v
	case KindBoolean:
		if v, ok := sub.Bool(raw); ok {
			c.Boolean = v
			c.BooleanOff = !v
		}
	case KindNumber:
		c.Number = sub.NumberPtr(raw)
	case KindEnum:
		c.Enum = sub.NumberPtr(raw)
	}
	return c
}

// merge 合并同一参数的多个片段：布尔标志取逻辑或，数值字段首个已定义者优先。
// 0 是合法数值，不能被当作“未定义”。
func (c *ParameterConfig) merge(o ParameterConfig) {
	c.Reset = c.Reset || o.Reset
	c.Virtual = c.Virtual || o.Virtual
	c.Boolean = c.Boolean || o.Boolean
	c.BooleanOff = c.BooleanOff || o.BooleanOff
	if c.Number == nil {
		c.Number = o.Number
	}
	if c.Enum == nil {
		c.Enum = o.Enum
	}
}

// CollectParameterConfigs 扫描提交中的参数 key，按参数号合并，结果按参数号升序
func CollectParameterConfigs(sub Submission) []ParameterConfig {
	keys := make([]string, 0, len(sub))
	for k := range sub {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	merged := make(map[int]*ParameterConfig)
	for _, raw := range keys {
		key, ok := ParseConfigKey(raw)
		if !ok {
			continue
		}
		f := fragment(key, raw, sub)
		if existing, ok := merged[key.Parameter]; ok {
			existing.merge(f)
			continue
		}
		merged[key.Parameter] = &f
	}

	out := make([]ParameterConfig, 0, len(merged))
	for _, c := range merged {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Parameter < out[j].Parameter })
	return out
}

// CollectAssociationSelections 扫描提交中的关联组 key，结果按组号升序
func CollectAssociationSelections(sub Submission) []AssociationSelection {
	var out []AssociationSelection
	for raw := range sub {
		group, ok := ParseAssociationKey(raw)
		if !ok {
			continue
		}
		nodes, ok := sub.Strings(raw)
		if !ok {
			continue
		}
		out = append(out, AssociationSelection{Group: group, Nodes: nodes})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Group < out[j].Group })
	return out
}

// NeedsUpdate 是否存在需要处理的提交
func (c ParameterConfig) NeedsUpdate() bool {
	return c.Reset || c.Number != nil || c.Enum != nil || c.Boolean || c.BooleanOff
}

// Resolve 结合参数定义计算最终值。优先级：Enum > Number；Boolean=true 取开关对应的离散值；
// Reset 取出厂默认值并覆盖以上所有。无可用值时返回 false。
func (c ParameterConfig) Resolve(spec ParameterSpec) (UpdateDecision, bool) {
	var value *int
	if c.Enum != nil {
		value = intPtr(*c.Enum)
	} else if c.Number != nil {
		value = intPtr(*c.Number)
	}

	on, off, boolean := spec.BooleanShape()
	switch {
	case c.Boolean && boolean:
		value = intPtr(on.From)
	case c.Boolean:
		if discrete := spec.DiscreteOptions(); len(discrete) > 0 {
			value = intPtr(discrete[0].From)
		}
	case c.BooleanOff && off != nil && value == nil:
		value = intPtr(off.From)
	}

	if c.Reset {
		value = intPtr(spec.Default)
	}
	if value == nil {
		return UpdateDecision{}, false
	}
	return UpdateDecision{Parameter: c.Parameter, Reset: c.Reset, Value: value}, true
}

// NeedsDispatch 仅当目标值与设备当前值不同（或强制刷新）时才需要下发
func NeedsDispatch(d UpdateDecision, current *int, refresh bool) bool {
	if refresh {
		return true
	}
	if d.Value == nil {
		return false
	}
	return current == nil || *current != *d.Value
}
