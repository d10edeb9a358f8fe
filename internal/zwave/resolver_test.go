package zwave

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func binarySwitch() ParameterSpec {
	return ParameterSpec{
		Number: 3, Name: "LED", Size: 1, Default: 0,
		Ranges: []ValueRange{{From: 0, To: 0, Label: "Off"}, {From: 1, To: 1, Label: "On"}},
	}
}

func dimmerLevel() ParameterSpec {
	return ParameterSpec{
		Number: 5, Name: "Level", Size: 1, Default: 0,
		Ranges: []ValueRange{{From: 0, To: 0, Label: "Off"}, {From: 1, To: 99, Label: "Level"}},
	}
}

func TestResolve_BinarySwitch(t *testing.T) {
	res := Resolve(binarySwitch(), ResolveInput{Current: intPtr(1)})

	require.Len(t, res.Controls, 1)
	c := res.Controls[0]
	assert.Equal(t, ControlBoolean, c.Kind)
	assert.Equal(t, "parameter3Boolean", c.Key)
	require.NotNil(t, c.DefaultBool)
	assert.True(t, *c.DefaultBool)

	require.Len(t, c.Options, 2)
	assert.Equal(t, "Off", c.Options[0].Name)
	assert.Equal(t, "On *", c.Options[1].Name)
	assert.True(t, c.Options[1].Current)
	assert.True(t, res.DiscreteActive)
	assert.False(t, res.DefaultEnabled)
}

func TestResolve_BooleanWithRange(t *testing.T) {
	res := Resolve(dimmerLevel(), ResolveInput{Current: intPtr(50)})

	require.Len(t, res.Controls, 2)
	b := res.Controls[0]
	assert.Equal(t, ControlBoolean, b.Kind)
	require.NotNil(t, b.DefaultBool)
	assert.False(t, *b.DefaultBool, "50 != 0，布尔开关为 false")

	n := res.Controls[1]
	assert.Equal(t, ControlNumber, n.Kind)
	assert.Equal(t, 1, *n.Min)
	assert.Equal(t, 99, *n.Max)
	require.NotNil(t, n.Default)
	assert.Equal(t, 50, *n.Default)
	assert.False(t, n.Disabled)
	assert.Empty(t, res.Notes)
}

func TestResolve_DiscreteDisablesRange(t *testing.T) {
	res := Resolve(dimmerLevel(), ResolveInput{Current: intPtr(7), Boolean: boolPtr(true)})
	require.Len(t, res.Controls, 2)
	assert.True(t, res.DiscreteActive)
	assert.True(t, res.Controls[1].Disabled, "离散选项生效时数值控件必须禁用")
	require.Len(t, res.Notes, 1)
	assert.Equal(t, "disabledParameter", res.Notes[0].Key)
}

func TestResolve_Enum(t *testing.T) {
	spec := ParameterSpec{
		Number: 9, Name: "Mode", Size: 1, Default: 0,
		Ranges: []ValueRange{
			{From: 0, To: 0, Label: "Auto"},
			{From: 2, To: 2, Label: "Manual"},
			{From: 4, To: 4, Label: "Eco"},
			{From: 10, To: 20, Label: "Custom"},
		},
	}

	res := Resolve(spec, ResolveInput{Current: intPtr(4)})
	require.Len(t, res.Controls, 2)
	e := res.Controls[0]
	assert.Equal(t, ControlEnum, e.Kind)
	assert.True(t, e.SubmitOnChange)
	require.NotNil(t, e.Default)
	assert.Equal(t, 4, *e.Default)
	assert.Equal(t, "Eco *", e.Options[2].Name)
	assert.True(t, res.Controls[1].Disabled)
	assert.Nil(t, res.Controls[1].Default, "4 不在连续区间内")

	res = Resolve(spec, ResolveInput{Current: intPtr(15)})
	assert.False(t, res.DiscreteActive)
	assert.Nil(t, res.Controls[0].Default)
	assert.False(t, res.Controls[1].Disabled)
	assert.Equal(t, 15, *res.Controls[1].Default)

	res = Resolve(spec, ResolveInput{Current: intPtr(15), Enum: intPtr(2)})
	assert.True(t, res.DiscreteActive)
	assert.True(t, res.Controls[1].Disabled)
}

func TestResolve_DefaultEnabled(t *testing.T) {
	spec := dimmerLevel()
	spec.Default = 50

	t.Run("未提交时当前值等于默认值即开启", func(t *testing.T) {
		res := Resolve(spec, ResolveInput{Current: intPtr(50)})
		assert.True(t, res.DefaultEnabled)
		require.Len(t, res.Controls, 1)
		assert.Equal(t, ControlParagraph, res.Controls[0].Kind)
		assert.False(t, res.Editable)
		assert.True(t, *res.ResetToggle.DefaultBool)
		assert.False(t, res.ResetToggle.Disabled)
	})

	t.Run("显式提交false覆盖推断", func(t *testing.T) {
		res := Resolve(spec, ResolveInput{Current: intPtr(50), Reset: boolPtr(false)})
		assert.False(t, res.DefaultEnabled)
		assert.True(t, res.Editable)
		assert.True(t, res.ResetToggle.Disabled, "当前值已是默认值，恢复默认无意义")
	})

	t.Run("显式提交true", func(t *testing.T) {
		res := Resolve(spec, ResolveInput{Current: intPtr(10), Reset: boolPtr(true)})
		assert.True(t, res.DefaultEnabled)
		assert.False(t, res.Editable)
	})

	t.Run("提示文案包含默认值", func(t *testing.T) {
		res := Resolve(spec, ResolveInput{Current: intPtr(10)})
		assert.Equal(t, "Update to 50", res.ResetToggle.Description)
	})
}

func TestResolve_EmptyRangesAndVirtual(t *testing.T) {
	spec := ParameterSpec{Number: 12, Name: "Info", Size: 1, Default: 3}
	res := Resolve(spec, ResolveInput{Current: intPtr(1)})
	require.Len(t, res.Controls, 1)
	assert.Equal(t, ControlParagraph, res.Controls[0].Kind)
	assert.Equal(t, "parameter12", res.Controls[0].Key)

	res = Resolve(binarySwitch(), ResolveInput{Current: intPtr(1), Virtual: true})
	assert.True(t, res.Virtual)
	assert.False(t, res.Editable)
	require.Len(t, res.Notes, 1)
	assert.Equal(t, "parameterVirtualEnabled", res.Notes[0].Key)
	assert.True(t, *res.VirtualToggle.DefaultBool)
}

func TestResolve_MissingCurrentUsesDefault(t *testing.T) {
	spec := dimmerLevel()
	spec.Default = 30
	res := Resolve(spec, ResolveInput{})
	assert.Equal(t, 30, res.EffectiveDefault)
	assert.False(t, res.DefaultEnabled)
	require.Len(t, res.Controls, 2)
	assert.Equal(t, 30, *res.Controls[1].Default)
}

func TestResolve_Idempotent(t *testing.T) {
	in := ResolveInput{Current: intPtr(50), Enum: intPtr(0)}
	assert.Equal(t, Resolve(dimmerLevel(), in), Resolve(dimmerLevel(), in))
}

func TestInputFromSubmission(t *testing.T) {
	sub := Submission{
		"parameter5Default": false,
		"parameter5Boolean": []any{true},
		"parameter5Virtual": "true",
	}
	in := InputFromSubmission(5, intPtr(9), sub)
	require.NotNil(t, in.Reset)
	assert.False(t, *in.Reset)
	require.NotNil(t, in.Boolean)
	assert.True(t, *in.Boolean)
	assert.True(t, in.Virtual)
	assert.Nil(t, in.Enum)
	assert.Equal(t, 9, *in.Current)

	in = InputFromSubmission(6, nil, sub)
	assert.Nil(t, in.Reset, "未提交保持三态中的nil")
}

func TestBooleanShape(t *testing.T) {
	on, off, ok := binarySwitch().BooleanShape()
	require.True(t, ok)
	assert.Equal(t, 1, on.From)
	require.NotNil(t, off)
	assert.Equal(t, 0, off.From)

	on, off, ok = dimmerLevel().BooleanShape()
	require.True(t, ok)
	assert.Equal(t, 0, on.From)
	assert.Nil(t, off)

	_, _, ok = ParameterSpec{Ranges: []ValueRange{{From: 1, To: 1}, {From: 2, To: 2}}}.BooleanShape()
	assert.False(t, ok, "两个非0离散项按枚举处理")
}
