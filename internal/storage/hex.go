package storage

import (
	"strings"

	"github.com/taoyao-code/zwave-configurator/internal/zwave"
)

// NormalizeHex 存储层统一使用小写十六进制作为键
func NormalizeHex(h zwave.ManufacturerHex) zwave.ManufacturerHex {
	return zwave.ManufacturerHex{
		ManufacturerID: strings.ToLower(h.ManufacturerID),
		ProductTypeID:  strings.ToLower(h.ProductTypeID),
		ProductID:      strings.ToLower(h.ProductID),
	}
}

// MappingKey 映射的复合键 "<manufacturer>:<type>:<product>"
func MappingKey(h zwave.ManufacturerHex) string {
	h = NormalizeHex(h)
	return h.ManufacturerID + ":" + h.ProductTypeID + ":" + h.ProductID
}
