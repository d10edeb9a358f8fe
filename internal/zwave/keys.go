package zwave

import (
	"fmt"
	"regexp"
	"strconv"
)

// KeyKind 配置 key 的类型后缀
type KeyKind string

const (
	KindNumber  KeyKind = "Number"
	KindEnum    KeyKind = "Enum"
	KindBoolean KeyKind = "Boolean"
	KindVirtual KeyKind = "Virtual"
	KindDefault KeyKind = "Default"
)

var (
	parameterKeyPattern   = regexp.MustCompile(`^parameter(\d{1,3})(Number|Enum|Boolean|Virtual|Default)$`)
	associationKeyPattern = regexp.MustCompile(`^associationGroup(\d{1,3})Nodes$`)
)

// ConfigKey 解析后的参数配置 key
type ConfigKey struct {
	Parameter int
	Kind      KeyKind
}

// ParameterKey 生成参数配置 key，如 parameter3Number
func ParameterKey(parameter int, kind KeyKind) string {
	return fmt.Sprintf("parameter%d%s", parameter, kind)
}

// AssociationKey 生成关联组成员选择 key，如 associationGroup2Nodes
func AssociationKey(group int) string {
	return fmt.Sprintf("associationGroup%dNodes", group)
}

// ParseConfigKey 解析参数配置 key，不匹配时返回 false（非错误）
func ParseConfigKey(key string) (ConfigKey, bool) {
	m := parameterKeyPattern.FindStringSubmatch(key)
	if m == nil {
		return ConfigKey{}, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return ConfigKey{}, false
	}
	return ConfigKey{Parameter: n, Kind: KeyKind(m[2])}, true
}

// ParseAssociationKey 解析关联组 key，返回组号
func ParseAssociationKey(key string) (int, bool) {
	m := associationKeyPattern.FindStringSubmatch(key)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
