package zwave

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// maxExactFloat float64 可精确表示的最大整数
const maxExactFloat = 1 << 53

// Submission 用户提交的原始配置（key -> 值），值通常来自 JSON 解码：
// bool / float64 / string / []any。
type Submission map[string]any

// Bool 读取布尔值，第二个返回值表示是否存在且可解析
func (s Submission) Bool(key string) (bool, bool) {
	raw, ok := s[key]
	if !ok || raw == nil {
		return false, false
	}
	switch v := raw.(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, false
		}
		return b, true
	case []any:
		if len(v) == 0 {
			return false, false
		}
		return Submission{key: v[0]}.Bool(key)
	}
	return false, false
}

// BoolPtr 三态读取：未提交返回 nil
func (s Submission) BoolPtr(key string) *bool {
	b, ok := s.Bool(key)
	if !ok {
		return nil
	}
	return &b
}

// Number 读取整数值（接受 JSON 数字与数字字符串）
func (s Submission) Number(key string) (int, bool) {
	raw, ok := s[key]
	if !ok || raw == nil {
		return 0, false
	}
	switch v := raw.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) || math.Abs(v) > maxExactFloat {
			return 0, false
		}
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	case []any:
		if len(v) == 0 {
			return 0, false
		}
		return Submission{key: v[0]}.Number(key)
	}
	return 0, false
}

// NumberPtr 未提交或无法解析时返回 nil
func (s Submission) NumberPtr(key string) *int {
	n, ok := s.Number(key)
	if !ok {
		return nil
	}
	return &n
}

// Strings 读取字符串列表（单个字符串视为一个元素）
func (s Submission) Strings(key string) ([]string, bool) {
	raw, ok := s[key]
	if !ok || raw == nil {
		return nil, false
	}
	switch v := raw.(type) {
	case string:
		return []string{v}, true
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out, true
	}
	return nil, false
}
