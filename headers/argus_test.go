package headers

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformBeanShape(t *testing.T) {
	for _, n := range []int{1, 15, 16, 17, 100} {
		pb := make([]byte, n)
		out := transformBean(pb)

		padded := n + 16 - n%16
		require.Len(t, out, padded+8, "input %d bytes", n)

		// tag区不参与XOR，倒序后落在末尾
		tail := out[len(out)-8:]
		assert.Equal(t, []byte{0xff, 0xfc, 0xf7, 0xf2, 0xff, 0xfc, 0xf7, 0xf2}, tail)
	}
}

func TestFrameArgusShape(t *testing.T) {
	s := frameArgus(transformBean([]byte{1, 2, 3}))
	raw, err := base64.StdEncoding.DecodeString(s)
	require.NoError(t, err)

	require.Greater(t, len(raw), 2)
	assert.Equal(t, []byte{0xf2, 0x81}, raw[:2])
	assert.Zero(t, (len(raw)-2)%16)
}

func TestSignArgusDeterministic(t *testing.T) {
	req := &signRequest{
		query:         "aid=1233&device_id=7319810267746993670&version_name=37.0.4",
		aid:           1233,
		licenseID:     1611921764,
		sdkVersionStr: DefaultSdkVersionStr,
		sdkVersion:    DefaultSdkVersion,
		channel:       DefaultChannel,
		deviceID:      "7319810267746993670",
		osVersion:     DefaultOSVersion,
		versionName:   DefaultVersionName,
	}

	a, err := signArgus(req, 1767424034, 12345)
	require.NoError(t, err)
	b, err := signArgus(req, 1767424034, 12345)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// 时间戳进了bean，变了签名必须跟着变
	c, err := signArgus(req, 1767424035, 12345)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	// nonce同理
	d, err := signArgus(req, 1767424034, 12346)
	require.NoError(t, err)
	assert.NotEqual(t, a, d)
}

func TestSignArgusBadVersion(t *testing.T) {
	req := &signRequest{versionName: "37"}
	_, err := signArgus(req, 1767424034, 1)
	require.Error(t, err)
}

func TestBuildArgusBeanStubChangesOutput(t *testing.T) {
	base := &signRequest{versionName: DefaultVersionName}
	withStub := &signRequest{versionName: DefaultVersionName, stub: "799968CE27B184778C807AF28435A589"}

	a, err := buildArgusBean(base, 1767424034, 1)
	require.NoError(t, err)
	b, err := buildArgusBean(withStub, 1767424034, 1)
	require.NoError(t, err)
	assert.NotEqual(t, a.Marshal(), b.Marshal())
}
