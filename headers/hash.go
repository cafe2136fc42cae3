package headers

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/emmansun/gmsm/sm3"
)

// bodyHash stub(hex)的SM3摘要前6字节；无stub时对16个0字节取摘要
func bodyHash(stubHex string) ([]byte, error) {
	if stubHex == "" {
		sum := sm3.Sum(make([]byte, 16))
		return sum[:6], nil
	}
	raw, err := hex.DecodeString(stubHex)
	if err != nil {
		return nil, &DecodingError{What: "stub", Err: err}
	}
	sum := sm3.Sum(raw)
	return sum[:6], nil
}

// queryHash query字符串的SM3摘要前6字节，空query按16个0字节处理
func queryHash(query string) []byte {
	if query == "" {
		sum := sm3.Sum(make([]byte, 16))
		return sum[:6]
	}
	sum := sm3.Sum([]byte(query))
	return sum[:6]
}

// versionHash 把MAJOR.MINOR.PATCH压缩成定宽整数：
// 大端序读出bytes{PATCH*4, MINOR*16, MAJOR*4, 0}，再左移1位。
func versionHash(versionName string) (uint64, error) {
	parts := strings.Split(versionName, ".")
	if len(parts) < 3 {
		return 0, &MalformedVersionError{Version: versionName}
	}
	var n [3]int
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(parts[i])
		if err != nil {
			return 0, &MalformedVersionError{Version: versionName}
		}
		n[i] = v
	}
	u := uint32(n[2]*4&0xff)<<24 | uint32(n[1]*16&0xff)<<16 | uint32(n[0]*4&0xff)<<8
	return uint64(u) << 1, nil
}
