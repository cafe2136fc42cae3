package headers

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeLadonGolden(t *testing.T) {
	got := makeLadon(1767424034, 1611921764, 1233, []byte{0, 1, 2, 3})
	assert.Equal(t, "AAECA0Z/y/daCN9CQbTakSMv446vNr0o2vcIN2dzi93v90Uh", got)
}

func TestLadonShape(t *testing.T) {
	l := DefaultLadon{Rand: func(n int) []byte { return make([]byte, n) }}
	hs := l.Sign(1233, 1611921764, 1767424034)

	raw, err := base64.StdEncoding.DecodeString(hs["x-ladon"])
	require.NoError(t, err)
	// 4字节随机前缀 + 32字节密文
	assert.Len(t, raw, 36)
	assert.Equal(t, []byte{0, 0, 0, 0}, raw[:4])
}

func TestLadonVariesWithInput(t *testing.T) {
	r4 := []byte{9, 9, 9, 9}
	a := makeLadon(1767424034, 1611921764, 1233, r4)
	b := makeLadon(1767424035, 1611921764, 1233, r4)
	c := makeLadon(1767424034, 1611921764, 1234, r4)
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
}
