package headers

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// canonicalBody 把body规整成用于摘要的字节；结构化值用紧凑JSON
func canonicalBody(body any) ([]byte, bool, error) {
	switch b := body.(type) {
	case nil:
		return nil, false, nil
	case []byte:
		return b, true, nil
	case string:
		return []byte(b), true, nil
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			return nil, false, &InvalidParameterError{Name: "body", Value: body}
		}
		return raw, true, nil
	}
}

// MD5Stub x-ss-stub的默认实现：body的MD5，hex大写
type MD5Stub struct{}

func (MD5Stub) Hash(body []byte) string {
	sum := md5.Sum(body)
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}
