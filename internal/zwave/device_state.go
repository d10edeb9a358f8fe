package zwave

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// 能力属性名
const (
	AttributeManufacturer          = "manufacturer"
	AttributeCurrentConfigurations = "currentConfigurations"
	AttributeCurrentAssociations   = "currentAssociations"
)

var (
	ErrConfigurationNotFound = errors.New("configuration not found")
	ErrManufacturerNotFound  = errors.New("manufacturer not found")
	ErrAssociationsNotFound  = errors.New("associations not found")
)

// Attribute 平台返回的能力属性 {value, timestamp}，本包只读取 value
type Attribute struct {
	Value     json.RawMessage `json:"value"`
	Timestamp string          `json:"timestamp,omitempty"`
}

// DeviceState 单次请求获取的设备能力快照（不可变）
type DeviceState struct {
	DeviceID   string               `json:"deviceId"`
	Attributes map[string]Attribute `json:"attributes"`
}

func (d *DeviceState) attribute(name string) (json.RawMessage, bool) {
	if d == nil || d.Attributes == nil {
		return nil, false
	}
	attr, ok := d.Attributes[name]
	if !ok || len(attr.Value) == 0 || string(attr.Value) == "null" {
		return nil, false
	}
	return attr.Value, true
}

// CurrentConfigurations 解码设备上报的所有参数值
// 设备上报格式: {"<参数号>": [b0, b1, ...]}（小端序字节）
func (d *DeviceState) CurrentConfigurations() (CurrentConfigurations, error) {
	raw, ok := d.attribute(AttributeCurrentConfigurations)
	if !ok {
		return nil, ErrConfigurationNotFound
	}
	var values map[string][]int
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("decode %s: %w", AttributeCurrentConfigurations, err)
	}
	out := make(CurrentConfigurations, len(values))
	for key, ints := range values {
		parameter, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		b := make([]byte, len(ints))
		for i, x := range ints {
			b[i] = byte(x)
		}
		out[parameter] = DecodeValue(b)
	}
	return out, nil
}

// Manufacturer 设备上报的厂商信息
func (d *DeviceState) Manufacturer() (Manufacturer, error) {
	raw, ok := d.attribute(AttributeManufacturer)
	if !ok {
		return Manufacturer{}, ErrManufacturerNotFound
	}
	var m Manufacturer
	if err := json.Unmarshal(raw, &m); err != nil {
		return Manufacturer{}, fmt.Errorf("decode %s: %w", AttributeManufacturer, err)
	}
	return m, nil
}

// CurrentAssociations 设备上报的关联组成员（组号 -> 十六进制节点号，保持上报顺序）
// 设备上报格式: {"<组号>": [1, 28]}
func (d *DeviceState) CurrentAssociations() (map[int][]string, error) {
	raw, ok := d.attribute(AttributeCurrentAssociations)
	if !ok {
		return nil, ErrAssociationsNotFound
	}
	var values map[string][]int
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("decode %s: %w", AttributeCurrentAssociations, err)
	}
	out := make(map[int][]string, len(values))
	for key, nodes := range values {
		group, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		ids := make([]string, 0, len(nodes))
		for _, n := range nodes {
			ids = append(ids, FormatNodeID(n))
		}
		out[group] = ids
	}
	return out, nil
}
