package zwave

import (
	"fmt"
	"strconv"
	"strings"
)

// LifelineNode 控制器（hub）节点，永远不能从关联组中移除
const LifelineNode = 0x01

// FormatNodeID 节点号渲染为两位大写十六进制（如 "1C"）
func FormatNodeID(id int) string {
	return fmt.Sprintf("%02X", uint8(id))
}

// ParseNodeID 解析十六进制节点号（大小写均可）
func ParseNodeID(s string) (int, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 16, 8)
	if err != nil {
		return 0, fmt.Errorf("parse node id %q: %w", s, err)
	}
	return int(v), nil
}

// Manufacturer 设备上报的厂商信息
type Manufacturer struct {
	ManufacturerID int `json:"manufacturerId"`
	ProductTypeID  int `json:"productTypeId"`
	ProductID      int `json:"productId"`
}

// ManufacturerHex 厂商信息的十六进制表示（与产品库字段格式一致，如 "0x0086"）
type ManufacturerHex struct {
	ManufacturerID string `json:"manufacturerId"`
	ProductTypeID  string `json:"productTypeId"`
	ProductID      string `json:"productId"`
}

// Hex 转换为产品库使用的 0x%04x 格式
func (m Manufacturer) Hex() ManufacturerHex {
	return ManufacturerHex{
		ManufacturerID: paddedHex(m.ManufacturerID),
		ProductTypeID:  paddedHex(m.ProductTypeID),
		ProductID:      paddedHex(m.ProductID),
	}
}

func paddedHex(v int) string {
	return fmt.Sprintf("0x%04x", v)
}

// Equal 忽略大小写比较（产品库可能使用大写十六进制）
func (h ManufacturerHex) Equal(o ManufacturerHex) bool {
	return strings.EqualFold(h.ManufacturerID, o.ManufacturerID) &&
		strings.EqualFold(h.ProductTypeID, o.ProductTypeID) &&
		strings.EqualFold(h.ProductID, o.ProductID)
}
