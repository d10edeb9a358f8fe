package zwave

import (
	"errors"
	"fmt"
)

// MaxValueSize 有定义行为的最大参数字节数
const MaxValueSize = 4

var (
	// ErrInvalidSize 参数字节数不在 1..4 之间
	ErrInvalidSize = errors.New("invalid parameter size")
	// ErrValueOverflow 参数值无法用声明的字节数表示
	ErrValueOverflow = errors.New("parameter value overflow")
)

// DecodeValue 小端序解码：Σ b[i] << 8i（无符号累加，不做符号扩展）
func DecodeValue(b []byte) int {
	v := 0
	for i, x := range b {
		v += int(x) << (8 * i)
	}
	return v
}

// EncodeValue 小端序编码为 size 字节，超出部分按位截断
func EncodeValue(value, size int) []byte {
	if size <= 0 {
		return []byte{}
	}
	buf := make([]byte, size)
	for i := 0; i < size; i++ {
		buf[i] = byte((value >> (8 * i)) & 0xff)
	}
	return buf
}

// EncodeValueStrict 与 EncodeValue 相同，但拒绝越界值与非法字节数
func EncodeValueStrict(value, size int) ([]byte, error) {
	if size < 1 || size > MaxValueSize {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	limit := 1 << (8 * size)
	if value < 0 || value >= limit {
		return nil, fmt.Errorf("%w: %d does not fit in %d byte(s)", ErrValueOverflow, value, size)
	}
	return EncodeValue(value, size), nil
}
