package zwave

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeValue(t *testing.T) {
	assert.Equal(t, 10, DecodeValue([]byte{0x0A}))
	assert.Equal(t, 0x0102, DecodeValue([]byte{0x02, 0x01}))
	assert.Equal(t, 0xFFFFFFFF, DecodeValue([]byte{0xFF, 0xFF, 0xFF, 0xFF}))
	assert.Equal(t, 0, DecodeValue(nil), "空字节序列解码为0")
}

func TestEncodeValue(t *testing.T) {
	assert.Equal(t, []byte{0x0A}, EncodeValue(10, 1))
	assert.Equal(t, []byte{0x02, 0x01}, EncodeValue(0x0102, 2))
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x00}, EncodeValue(0, 4))
	assert.Empty(t, EncodeValue(10, 0))

	// 超出字节数的高位被截断
	assert.Equal(t, []byte{0x00}, EncodeValue(256, 1))
}

func TestCodecRoundTrip(t *testing.T) {
	samples := []int{0, 1, 0x7F, 0x80, 0xFF, 0x100, 0x1234, 0xFFFF, 0x10000, 0xABCDEF, 0x7FFFFFFF, 0xFFFFFFFF}
	for size := 1; size <= MaxValueSize; size++ {
		limit := 1 << (8 * size)
		for _, v := range samples {
			if v >= limit {
				continue
			}
			b := EncodeValue(v, size)
			require.Len(t, b, size)
			assert.Equal(t, v, DecodeValue(b), "size=%d value=%d", size, v)
		}
	}
}

func TestEncodeValueStrict(t *testing.T) {
	b, err := EncodeValueStrict(10, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0A}, b)

	_, err = EncodeValueStrict(256, 1)
	assert.ErrorIs(t, err, ErrValueOverflow)

	_, err = EncodeValueStrict(-1, 2)
	assert.ErrorIs(t, err, ErrValueOverflow)

	_, err = EncodeValueStrict(1, 0)
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = EncodeValueStrict(1, 5)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestNodeIDHex(t *testing.T) {
	assert.Equal(t, "1C", FormatNodeID(28))
	assert.Equal(t, "01", FormatNodeID(1))

	id, err := ParseNodeID("1d")
	require.NoError(t, err)
	assert.Equal(t, 29, id)

	_, err = ParseNodeID("zz")
	assert.Error(t, err)
	_, err = ParseNodeID("100")
	assert.Error(t, err, "节点号超过8位")
}

func TestManufacturerHex(t *testing.T) {
	m := Manufacturer{ManufacturerID: 0x86, ProductTypeID: 0x103, ProductID: 0x60}
	h := m.Hex()
	assert.Equal(t, "0x0086", h.ManufacturerID)
	assert.Equal(t, "0x0103", h.ProductTypeID)
	assert.Equal(t, "0x0060", h.ProductID)

	assert.True(t, h.Equal(ManufacturerHex{ManufacturerID: "0x0086", ProductTypeID: "0x0103", ProductID: "0x0060"}))
	assert.True(t, ManufacturerHex{ManufacturerID: "0x00AB"}.Equal(ManufacturerHex{ManufacturerID: "0x00ab"}))
	assert.False(t, h.Equal(ManufacturerHex{}))
}
