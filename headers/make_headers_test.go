package headers

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedSigner() *Signer {
	return &Signer{
		Ladon:   DefaultLadon{Rand: func(n int) []byte { return make([]byte, n) }},
		Gorgon:  DefaultGorgon{},
		Stub:    MD5Stub{},
		Now:     func() time.Time { return time.UnixMilli(1767424034123) },
		Nonce:   func() uint32 { return 42 },
		RandHex: fixedHex,
	}
}

func TestGenerateHeadersFullSet(t *testing.T) {
	s := fixedSigner()
	hs, err := s.GenerateHeaders(&RequestContext{
		Params:      "aid=1233&device_id=7319810267746993670&version_name=37.0.4",
		Body:        `{"click_type":1}`,
		SecDeviceID: "7319810267746993670",
		Cookie:      "sessionid=abc",
	})
	require.NoError(t, err)

	for _, k := range []string{
		"x-ss-req-ticket", "x-tt-trace-id", "x-ss-stub",
		"x-ladon", "x-khronos", "x-gorgon", "x-argus", "cookie",
	} {
		assert.Contains(t, hs, k)
	}

	// ticket和khronos来自同一次时钟读取
	ms, err := strconv.ParseInt(hs["x-ss-req-ticket"], 10, 64)
	require.NoError(t, err)
	assert.Equal(t, strconv.FormatInt(ms/1000, 10), hs["x-khronos"])

	assert.Regexp(t, traceIDPattern, hs["x-tt-trace-id"])
	assert.Equal(t, "sessionid=abc", hs["cookie"])
}

func TestGenerateHeadersNoBodyNoStub(t *testing.T) {
	hs, err := fixedSigner().GenerateHeaders(&RequestContext{Params: "aid=1233"})
	require.NoError(t, err)
	assert.NotContains(t, hs, "x-ss-stub")
	assert.NotContains(t, hs, "cookie")
}

func TestGenerateHeadersPinnedTimestamp(t *testing.T) {
	hs, err := fixedSigner().GenerateHeaders(&RequestContext{
		Params:    "aid=1233",
		Timestamp: 1767424034,
	})
	require.NoError(t, err)
	// 固定Timestamp时ticket从它推导而不是读时钟
	assert.Equal(t, "1767424034000", hs["x-ss-req-ticket"])
	assert.Equal(t, "1767424034", hs["x-khronos"])
}

func TestGenerateHeadersDeterministic(t *testing.T) {
	req := &RequestContext{
		Params:    "aid=1233&device_id=7319810267746993670",
		Body:      `{"click_type":1}`,
		Timestamp: 1767424034,
	}
	a, err := fixedSigner().GenerateHeaders(req)
	require.NoError(t, err)
	b, err := fixedSigner().GenerateHeaders(req)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := fixedSigner().GenerateHeaders(&RequestContext{
		Params:    "aid=1233&device_id=7319810267746993670",
		Body:      `{"click_type":1}`,
		Timestamp: 1767424035,
	})
	require.NoError(t, err)
	assert.NotEqual(t, a["x-argus"], c["x-argus"])
	assert.NotEqual(t, a["x-ladon"], c["x-ladon"])
}

func TestGenerateHeadersBadInput(t *testing.T) {
	_, err := fixedSigner().GenerateHeaders(&RequestContext{Aid: "not-a-number"})
	require.Error(t, err)

	_, err = fixedSigner().GenerateHeaders(&RequestContext{
		Params:      "version_name=37",
		Body:        nil,
		SecDeviceID: "",
	})
	require.Error(t, err)
}

func TestSignArgusOnly(t *testing.T) {
	s := fixedSigner()
	a, err := s.SignArgus(&RequestContext{Params: "aid=1233", Timestamp: 1767424034})
	require.NoError(t, err)
	b, err := s.SignArgus(&RequestContext{Params: "aid=1233", Timestamp: 1767424034})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.NotEmpty(t, a)
}
