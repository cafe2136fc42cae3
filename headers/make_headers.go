package headers

import (
	"math/rand"
	"strconv"
	"time"
)

// LadonSigner x-ladon算法的调用契约
type LadonSigner interface {
	Sign(aid, licenseID, timestamp int64) map[string]string
}

// GorgonSigner x-gorgon算法的调用契约。partial里必须已有ticket等前置头。
type GorgonSigner interface {
	Sign(params string, partial map[string]string, cookie string) map[string]string
}

// StubHasher x-ss-stub算法的调用契约
type StubHasher interface {
	Hash(body []byte) string
}

// Signer 签名编排器。纯值变换：不发网络请求、不重试。
// Now/Nonce/RandHex可注入，固定它们之后整个HeaderSet是确定性的。
type Signer struct {
	Ladon  LadonSigner
	Gorgon GorgonSigner
	Stub   StubHasher

	Now     func() time.Time
	Nonce   func() uint32      // bean字段3，[0, 2^31)
	RandHex func(n int) string // trace等用的随机hex字符
}

// NewSigner 默认编排器
func NewSigner() *Signer {
	return &Signer{
		Ladon:   DefaultLadon{},
		Gorgon:  DefaultGorgon{},
		Stub:    MD5Stub{},
		Now:     time.Now,
		Nonce:   func() uint32 { return uint32(rand.Int31()) },
		RandHex: randHexString,
	}
}

// GenerateHeaders 生成一次请求的全部签名头。
// 只读一次时钟：毫秒ticket和秒级时间戳来自同一瞬间；调用方固定了
// Timestamp时两者都从它推导。
func (s *Signer) GenerateHeaders(req *RequestContext) (map[string]string, error) {
	n, err := normalizeRequest(req)
	if err != nil {
		return nil, err
	}

	var ms, unix int64
	if n.ts > 0 {
		unix = n.ts
		ms = unix * 1000
	} else {
		ms = s.Now().UnixMilli()
		unix = ms / 1000
	}

	headers := map[string]string{
		"x-ss-req-ticket": strconv.FormatInt(ms, 10),
		"x-tt-trace-id":   makeTraceID(n.secDeviceID, n.aid, ms, s.RandHex),
	}
	if n.hasBody {
		n.stub = s.Stub.Hash(n.body)
		headers["x-ss-stub"] = n.stub
	}
	for k, v := range s.Ladon.Sign(n.aid, n.licenseID, unix) {
		headers[k] = v
	}
	// gorgon必须在ticket/stub/ladon之后、argus之前
	for k, v := range s.Gorgon.Sign(n.query, headers, n.cookie) {
		headers[k] = v
	}
	argus, err := signArgus(n, unix, s.Nonce())
	if err != nil {
		return nil, err
	}
	headers["x-argus"] = argus

	if n.cookie != "" {
		headers["cookie"] = n.cookie
	}
	return headers, nil
}

// SignArgus 只生成x-argus
func (s *Signer) SignArgus(req *RequestContext) (string, error) {
	n, err := normalizeRequest(req)
	if err != nil {
		return "", err
	}
	unix := n.ts
	if unix <= 0 {
		unix = s.Now().Unix()
	}
	if n.hasBody {
		n.stub = s.Stub.Hash(n.body)
	}
	return signArgus(n, unix, s.Nonce())
}

// MakeHeaders 用默认编排器生成签名头
func MakeHeaders(req *RequestContext) (map[string]string, error) {
	return NewSigner().GenerateHeaders(req)
}

// randHexString 生成n个随机hex字符
func randHexString(n int) string {
	const digits = "0123456789abcdef"
	b := make([]byte, n)
	for i := range b {
		b[i] = digits[rand.Intn(16)]
	}
	return string(b)
}
