package headers

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// gorgonKey Sbox初始化密钥
var gorgonKey = mustHexDecode("4a0016a8476c0080")

const gorgonPrefix = "840480a80000"

// DefaultGorgon x-gorgon的默认实现。
// khronos从partial headers里的毫秒ticket推导，和其余头共用同一时钟读数，
// 所以必须在ticket/stub/ladon之后调用。
type DefaultGorgon struct{}

func (DefaultGorgon) Sign(params string, partial map[string]string, cookie string) map[string]string {
	var khronos int64
	if ms, err := strconv.ParseInt(partial["x-ss-req-ticket"], 10, 64); err == nil {
		khronos = ms / 1000
	}

	md5Query := md5Hex([]byte(params))[:8]

	stubPart := "00000000"
	if stub := strings.ToLower(partial["x-ss-stub"]); len(stub) >= 8 {
		stubPart = stub[:8]
	}

	cookiePart := "00000000"
	if cookie != "" {
		cookiePart = md5Hex([]byte(cookie))[:8]
	}

	dataHex := md5Query + stubPart + cookiePart + "00000000" + fmt.Sprintf("%08x", khronos)
	data, _ := hex.DecodeString(dataHex)

	gorgonRc4(data, gorgonSboxInit(gorgonKey))
	return map[string]string{
		"x-gorgon":  gorgonPrefix + gorgonLast(data),
		"x-khronos": strconv.FormatInt(khronos, 10),
	}
}

func md5Hex(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// gorgonSboxInit RC4变体的KSA：不交换，只把s[j]抄到s[i]
func gorgonSboxInit(key []byte) []byte {
	sbox := make([]byte, 256)
	for i := range sbox {
		sbox[i] = byte(i)
	}
	j := 0
	for i := 0; i < 256; i++ {
		j = (j + int(sbox[i]) + int(key[i%len(key)])) % 256
		sbox[i] = sbox[j]
	}
	return sbox
}

// gorgonRc4 RC4变体的PRGA：置换表双写，掩码取s[2v]
func gorgonRc4(data, sbox []byte) {
	s := make([]byte, 256)
	copy(s, sbox)
	a, b := 0, 0
	for pos := 0; pos < len(data); pos++ {
		b = (b + 1) & 0xff
		a = (a + int(s[b])) & 0xff
		v := s[a]
		s[b] = v
		s[a] = v
		data[pos] ^= s[(2*int(v))&0xff]
	}
}

// gorgonLast 末轮逐字节的位重排，返回hex
func gorgonLast(data []byte) string {
	var out strings.Builder
	for i := 0; i < len(data); i++ {
		next := data[0]
		if i != len(data)-1 {
			next = data[i+1]
		}
		d := int((data[i]>>4)|(data[i]<<4)) ^ int(next)

		tem3 := ((d << 1) & 0xffaa) | ((d >> 1) & 0x55)
		tem4 := ((tem3 << 2) & 0xffffcf) | ((tem3 >> 2) & 0x33)
		ans := ((tem4 >> 4) & 0xf) | ((tem4 & ((1 << 28) - 1)) << 4)
		ans = (ans ^ 0xffffffeb) & 0xff

		data[i] = byte(ans)
		out.WriteString(fmt.Sprintf("%02x", ans))
	}
	return out.String()
}
