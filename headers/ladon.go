package headers

import (
	"crypto/md5"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math/rand"
	"strconv"
)

// DefaultLadon x-ladon的默认实现。
// 密钥材料是md5(随机4字节+aid文本)的hex文本本身（32字节），
// 数据是"ts-licenseId-aid"填充到32字节，两段各走34轮ARX变换。
type DefaultLadon struct {
	Rand func(n int) []byte // 可注入的随机源，nil时用math/rand
}

func (l DefaultLadon) Sign(aid, licenseID, timestamp int64) map[string]string {
	randFour := l.randBytes(4)
	return map[string]string{
		"x-ladon": makeLadon(timestamp, licenseID, aid, randFour),
	}
}

func (l DefaultLadon) randBytes(n int) []byte {
	if l.Rand != nil {
		return l.Rand(n)
	}
	b := make([]byte, n)
	rand.Read(b)
	return b
}

// makeLadon 生成x-ladon：base64(随机4字节 + 变换后的32字节)
func makeLadon(timestamp, licenseID, aid int64, randFour []byte) string {
	sum := md5.Sum(append(append([]byte{}, randFour...), strconv.FormatInt(aid, 10)...))
	keyBlock := []byte(fmt.Sprintf("%x", sum)) // md5的hex文本就是密钥块

	data := pkcs7Pad([]byte(fmt.Sprintf("%d-%d-%d", timestamp, licenseID, aid)), 32)[:32]

	rk := ladonRoundKeys(keyBlock)
	out := make([]byte, 32)
	for half := 0; half < 2; half++ {
		b0 := binary.LittleEndian.Uint64(data[half*16 : half*16+8])
		b1 := binary.LittleEndian.Uint64(data[half*16+8 : half*16+16])
		for i := 0; i < 34; i++ {
			b1 = (b0 + ror64(b1, 8)) ^ rk[i]
			b0 = rol64(b0, 3) ^ b1
		}
		binary.LittleEndian.PutUint64(out[half*16:], b0)
		binary.LittleEndian.PutUint64(out[half*16+8:], b1)
	}

	forBase64 := append(append([]byte{}, randFour...), out...)
	return base64.StdEncoding.EncodeToString(forBase64)
}

// ladonRoundKeys Speck风格的轮密钥展开，34轮
func ladonRoundKeys(keyBlock []byte) [34]uint64 {
	a := binary.LittleEndian.Uint64(keyBlock[0:8])
	l := [3]uint64{
		binary.LittleEndian.Uint64(keyBlock[8:16]),
		binary.LittleEndian.Uint64(keyBlock[16:24]),
		binary.LittleEndian.Uint64(keyBlock[24:32]),
	}
	var rk [34]uint64
	rk[0] = a
	for i := 1; i < 34; i++ {
		idx := (i - 1) % 3
		l[idx] = (ror64(l[idx], 8) + a) ^ uint64(i-1)
		a = rol64(a, 3) ^ l[idx]
		rk[i] = a
	}
	return rk
}
