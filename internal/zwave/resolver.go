package zwave

import (
	"fmt"
	"strconv"
)

// ControlKind UI 控件类型
type ControlKind string

const (
	ControlParagraph ControlKind = "paragraph"
	ControlBoolean   ControlKind = "boolean"
	ControlEnum      ControlKind = "enum"
	ControlNumber    ControlKind = "number"
)

const currentMarker = " *"

// Option 离散选项
type Option struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Value   int    `json:"value"`
	Current bool   `json:"current"`
}

// Control 解析后的单个 UI 控件描述（不含渲染）
type Control struct {
	Key            string      `json:"key"`
	Kind           ControlKind `json:"kind"`
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	Options        []Option    `json:"options,omitempty"`
	Min            *int        `json:"min,omitempty"`
	Max            *int        `json:"max,omitempty"`
	Default        *int        `json:"default,omitempty"`
	DefaultBool    *bool       `json:"defaultBool,omitempty"`
	Disabled       bool        `json:"disabled"`
	SubmitOnChange bool        `json:"submitOnChange"`
}

// Note 只读提示
type Note struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ResolveInput 解析输入：设备当前值与用户已提交的选择
type ResolveInput struct {
	// Current 设备当前值，nil 表示设备尚未上报
	Current *int
	// Reset 三态：nil=未提交，false=用户显式关闭，true=用户请求恢复默认
	Reset *bool
	// Virtual 使用虚拟设备配置
	Virtual bool
	// Boolean / Enum 用户已提交的离散选择，nil 表示未提交
	Boolean *bool
	Enum    *int
}

// InputFromSubmission 从提交的配置中读取某参数的解析输入
func InputFromSubmission(parameter int, current *int, sub Submission) ResolveInput {
	in := ResolveInput{
		Current: current,
		Reset:   sub.BoolPtr(ParameterKey(parameter, KindDefault)),
		Boolean: sub.BoolPtr(ParameterKey(parameter, KindBoolean)),
		Enum:    sub.NumberPtr(ParameterKey(parameter, KindEnum)),
	}
	if v, ok := sub.Bool(ParameterKey(parameter, KindVirtual)); ok {
		in.Virtual = v
	}
	return in
}

// Resolution 参数的完整解析结果
type Resolution struct {
	Parameter        int       `json:"parameter"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	EffectiveDefault int       `json:"effectiveDefault"`
	DefaultEnabled   bool      `json:"defaultEnabled"`
	Virtual          bool      `json:"virtual"`
	DiscreteActive   bool      `json:"discreteActive"`
	Controls         []Control `json:"controls"`
	Notes            []Note    `json:"notes,omitempty"`
	ResetToggle      Control   `json:"resetToggle"`
	VirtualToggle    Control   `json:"virtualToggle"`
	// Editable 存在可编辑控件（虚拟设备、无取值范围时为 false）
	Editable bool `json:"editable"`
}

func (r Resolution) editable() bool {
	for _, c := range r.Controls {
		if c.Kind != ControlParagraph {
			return true
		}
	}
	return false
}

// BooleanShape 判断参数是否以单个布尔开关呈现：
// 只有一个离散选项（开 = 该选项），或恰好两个离散选项且其中之一为 0、无连续区间（开 = 非 0 项）。
func (p ParameterSpec) BooleanShape() (on ValueRange, off *ValueRange, ok bool) {
	discrete := p.DiscreteOptions()
	switch {
	case len(discrete) == 1:
		return discrete[0], nil, true
	case len(discrete) == 2 && len(discrete) == len(p.Ranges):
		if discrete[0].From == 0 {
			return discrete[1], &discrete[0], true
		}
		if discrete[1].From == 0 {
			return discrete[0], &discrete[1], true
		}
	}
	return ValueRange{}, nil, false
}

// DefaultEnabled 是否处于“恢复默认”状态：
// 用户显式提交时以提交为准；未提交时，设备当前值等于出厂默认值即视为开启。
func DefaultEnabled(spec ParameterSpec, in ResolveInput) bool {
	if in.Reset != nil {
		return *in.Reset
	}
	return in.Current != nil && *in.Current == spec.Default
}

// Resolve 根据参数定义与设备当前值计算 UI 表示（纯函数，相同输入结果相同）
func Resolve(spec ParameterSpec, in ResolveInput) Resolution {
	res := resolve(spec, in)
	res.Editable = res.editable()
	return res
}

func resolve(spec ParameterSpec, in ResolveInput) Resolution {
	effective := spec.Default
	if in.Current != nil {
		effective = *in.Current
	}

	res := Resolution{
		Parameter:        spec.Number,
		Name:             spec.Name,
		Description:      spec.Description,
		EffectiveDefault: effective,
		DefaultEnabled:   DefaultEnabled(spec, in),
		Virtual:          in.Virtual,
	}
	res.VirtualToggle = Control{
		Key:         ParameterKey(spec.Number, KindVirtual),
		Kind:        ControlBoolean,
		Name:        "Virtual Device",
		Description: "Create a virtual device to use in automations",
		DefaultBool: boolPtr(in.Virtual),
	}
	res.ResetToggle = Control{
		Key:            ParameterKey(spec.Number, KindDefault),
		Kind:           ControlBoolean,
		Name:           "Reset to default",
		Description:    fmt.Sprintf("Update to %d", spec.Default),
		DefaultBool:    boolPtr(res.DefaultEnabled),
		Disabled:       !res.DefaultEnabled && in.Current != nil && *in.Current == spec.Default,
		SubmitOnChange: true,
	}

	if in.Virtual {
		res.Controls = []Control{readOnly(spec)}
		res.Notes = []Note{{
			Key:  "parameterVirtualEnabled",
			Name: "Use the virtual device to configure",
		}}
		return res
	}
	if res.DefaultEnabled || len(spec.Ranges) == 0 {
		res.Controls = []Control{readOnly(spec)}
		return res
	}

	discrete := spec.DiscreteOptions()
	continuous := spec.ContinuousRanges()

	options := make([]Option, 0, len(discrete))
	currentMatches := false
	for _, d := range discrete {
		current := in.Current != nil && *in.Current == d.From
		currentMatches = currentMatches || current
		name := d.Label
		if current {
			name += currentMarker
		}
		options = append(options, Option{
			ID:      strconv.Itoa(d.From),
			Name:    name,
			Value:   d.From,
			Current: current,
		})
	}

	if on, _, ok := spec.BooleanShape(); ok {
		computed := effective == on.From
		res.Controls = append(res.Controls, Control{
			Key:            ParameterKey(spec.Number, KindBoolean),
			Kind:           ControlBoolean,
			Name:           spec.Name,
			Description:    spec.Description,
			Options:        options,
			DefaultBool:    boolPtr(computed),
			SubmitOnChange: true,
		})
		res.DiscreteActive = computed
		if in.Boolean != nil {
			res.DiscreteActive = *in.Boolean
		}
	} else if len(options) > 1 {
		enum := Control{
			Key:            ParameterKey(spec.Number, KindEnum),
			Kind:           ControlEnum,
			Name:           spec.Name,
			Description:    spec.Description,
			Options:        options,
			SubmitOnChange: len(continuous) > 0,
		}
		if currentMatches {
			enum.Default = intPtr(effective)
		}
		res.Controls = append(res.Controls, enum)
		res.DiscreteActive = currentMatches || in.Enum != nil
	}

	for _, r := range continuous {
		number := Control{
			Key:         ParameterKey(spec.Number, KindNumber),
			Kind:        ControlNumber,
			Name:        spec.Name,
			Description: spec.Description,
			Min:         intPtr(r.From),
			Max:         intPtr(r.To),
			Disabled:    res.DiscreteActive,
		}
		if r.Contains(effective) {
			number.Default = intPtr(effective)
		}
		res.Controls = append(res.Controls, number)
	}
	if res.DiscreteActive && len(continuous) > 0 {
		res.Notes = append(res.Notes, Note{
			Key:         "disabledParameter",
			Name:        "Selection disabled",
			Description: "Set to false to specify",
		})
	}
	return res
}

func readOnly(spec ParameterSpec) Control {
	return Control{
		Key:         fmt.Sprintf("parameter%d", spec.Number),
		Kind:        ControlParagraph,
		Name:        spec.Name,
		Description: spec.Description,
	}
}

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }
