package ttcrypt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	payloads := [][]byte{
		[]byte("{}"),
		[]byte(`{"magic":538969122,"version":1}`),
		bytes.Repeat([]byte("abcdefgh"), 100),
		{0x00},
	}
	for _, p := range payloads {
		enc, err := Encrypt(p)
		require.NoError(t, err)
		require.NotEmpty(t, enc)
		assert.Zero(t, len(enc)%16)

		dec, err := Decrypt(enc)
		require.NoError(t, err)
		assert.Equal(t, p, dec)
	}
}

func TestEncryptEmpty(t *testing.T) {
	_, err := Encrypt(nil)
	require.Error(t, err)
}

func TestDecryptGarbage(t *testing.T) {
	_, err := Decrypt([]byte("asdf"))
	require.Error(t, err)

	_, err = Decrypt(make([]byte, 32))
	require.Error(t, err)
}

func TestXTEARoundsFromIV(t *testing.T) {
	got := map[int]bool{}
	for m := 0; m < 5; m++ {
		iv := []byte{byte(m), 0, 0, 0}
		got[xteaRoundsFromIV(iv)] = true
	}
	assert.Equal(t, map[int]bool{32: true, 40: true, 48: true, 56: true, 64: true}, got)
}

func TestXTEABlockRoundTrip(t *testing.T) {
	x := newXTEA(xteaKey, 48)
	pt := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	ct := x.encryptBlock(pt)
	assert.NotEqual(t, pt, ct)
	assert.Equal(t, pt, x.decryptBlock(ct))
}

func TestChecksumTailLength(t *testing.T) {
	// 尾巴长度只由数据长度mod 8决定，落在0..3
	for n := 1; n <= 16; n++ {
		tail := checksumTail(make([]byte, n))
		assert.LessOrEqual(t, len(tail), 3, "len %d", n)
	}
}
