package headers

import (
	"encoding/hex"
	"fmt"
	"strconv"
)

// makeTraceID 合成x-tt-trace-id。
// 有secDeviceID时用它的hex加随机尾巴和aid，否则用毫秒ticket的低32位加
// 随机digits；trace段统一规整到32个hex字符，header形如
// 00-{trace}-{trace前16位}-01。
func makeTraceID(secDeviceID string, aid, ticketMs int64, randHex func(n int) string) string {
	var trace string
	if secDeviceID != "" {
		if n, err := strconv.ParseUint(secDeviceID, 10, 64); err == nil {
			trace = strconv.FormatUint(n, 16)
		} else {
			trace = hex.EncodeToString([]byte(secDeviceID))
		}
		trace += randHex(2) + "0" + strconv.FormatInt(aid, 16)
	} else {
		trace = fmt.Sprintf("%08x", uint32(ticketMs)) + "10" + randHex(16)
	}
	if len(trace) < 32 {
		trace += randHex(32 - len(trace))
	} else if len(trace) > 32 {
		trace = trace[:32]
	}
	return fmt.Sprintf("00-%s-%s-01", trace, trace[:16])
}
