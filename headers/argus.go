package headers

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"strconv"

	"tt_signer/tt_protobuf"
)

// 固定密钥材料，来自客户端二进制，和请求内容无关
var (
	argusSignKey     = mustHexDecode("ac1adaae95a7af94a5114ab3b3a97dd80050aa0a39314c40528caec95256c28c")
	argusHashOutput  = mustHexDecode("fc78e0a9657a0c748ce51559903ccf03510e51d3cff232d71343e88a321c5304")
	argusBlockTag    = mustHexDecode("f2f7fcfff2f7fcff")
	argusFramePrefix = mustHexDecode("a66ead9f7701d00c18")
	argusFrameSuffix = []byte("ao")
	argusB64Prefix   = []byte{0xf2, 0x81}
)

// 轮密钥全程只展开一次，所有块、所有调用复用同一份
var argusSimonKey = expandSimonKey([4]uint64{
	binary.LittleEndian.Uint64(argusHashOutput[0:8]),
	binary.LittleEndian.Uint64(argusHashOutput[8:16]),
	binary.LittleEndian.Uint64(argusHashOutput[16:24]),
	binary.LittleEndian.Uint64(argusHashOutput[24:32]),
})

// 外层AES-CBC的key/iv：signKey两半各取MD5
var argusAESKey, argusAESIV = deriveFrameKeys()

func deriveFrameKeys() ([]byte, []byte) {
	k := md5.Sum(argusSignKey[:16])
	iv := md5.Sum(argusSignKey[16:32])
	return k[:], iv[:]
}

func mustHexDecode(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// rol64 8字节循环左移
func rol64(v uint64, s uint) uint64 {
	return v<<s | v>>(64-s)
}

// ror64 8字节循环右移
func ror64(v uint64, s uint) uint64 {
	return v>>s | v<<(64-s)
}

// pkcs7Pad PKCS7填充
func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	out := make([]byte, len(data)+padding)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(padding)
	}
	return out
}

// transformBean 对序列化后的bean做块变换和混淆：
// 填充到16字节倍数 → 逐块Simon加密（小端序取字） → 前置8字节tag →
// 以前8字节为XOR掩码改写offset>=8的字节 → 整体倒序。
// 输出长度恒等于填充后长度+8。
func transformBean(pb []byte) []byte {
	padded := pkcs7Pad(pb, 16)
	buf := make([]byte, len(padded)+8)
	copy(buf, argusBlockTag)
	for i := 0; i < len(padded); i += 16 {
		w0 := binary.LittleEndian.Uint64(padded[i : i+8])
		w1 := binary.LittleEndian.Uint64(padded[i+8 : i+16])
		c0, c1 := argusSimonKey.encryptBlock(w0, w1)
		binary.LittleEndian.PutUint64(buf[8+i:], c0)
		binary.LittleEndian.PutUint64(buf[8+i+8:], c1)
	}
	// 掩码在任何改写之前取出
	var mask [8]byte
	copy(mask[:], buf[:8])
	for i := 8; i < len(buf); i++ {
		buf[i] ^= mask[i%8]
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return buf
}

// frameArgus 外层信封：magic前后缀 + AES-CBC + base64
func frameArgus(transformed []byte) string {
	frame := make([]byte, 0, len(transformed)+len(argusFramePrefix)+len(argusFrameSuffix))
	frame = append(frame, argusFramePrefix...)
	frame = append(frame, transformed...)
	frame = append(frame, argusFrameSuffix...)
	frame = pkcs7Pad(frame, aes.BlockSize)

	block, err := aes.NewCipher(argusAESKey)
	if err != nil {
		panic(err)
	}
	ct := make([]byte, len(frame))
	cipher.NewCBCEncrypter(block, argusAESIV).CryptBlocks(ct, frame)

	out := make([]byte, 0, len(ct)+2)
	out = append(out, argusB64Prefix...)
	out = append(out, ct...)
	return base64.StdEncoding.EncodeToString(out)
}

// buildArgusBean 从归一化后的请求组装bean，字段顺序即编码顺序
func buildArgusBean(req *signRequest, ts int64, nonce uint32) (*tt_protobuf.Bean, error) {
	bh, err := bodyHash(req.stub)
	if err != nil {
		return nil, err
	}
	vh, err := versionHash(req.versionName)
	if err != nil {
		return nil, err
	}

	sub15 := tt_protobuf.NewBean().
		Put(1, tt_protobuf.Uint(85)).
		Put(2, tt_protobuf.Uint(85)).
		Put(3, tt_protobuf.Uint(85)).
		Put(5, tt_protobuf.Uint(85)).
		Put(6, tt_protobuf.Uint(170)).
		Put(7, tt_protobuf.Uint(uint64(ts<<1-310)))

	sub23 := tt_protobuf.NewBean().
		Put(1, tt_protobuf.Str(req.deviceType)).
		Put(2, tt_protobuf.Str(req.osVersion)).
		Put(3, tt_protobuf.Str(req.channel)).
		Put(4, tt_protobuf.Uint(vh))

	bean := tt_protobuf.NewBean().
		Put(1, tt_protobuf.Uint(0x20200929<<1)).
		Put(2, tt_protobuf.Uint(2)).
		Put(3, tt_protobuf.Uint(uint64(nonce))).
		Put(4, tt_protobuf.Str(strconv.FormatInt(req.aid, 10))).
		Put(5, tt_protobuf.Str(req.deviceID)).
		Put(6, tt_protobuf.Str(strconv.FormatInt(req.licenseID, 10))).
		Put(7, tt_protobuf.Str(req.versionName)).
		Put(8, tt_protobuf.Str(req.sdkVersionStr)).
		Put(9, tt_protobuf.Uint(uint64(req.sdkVersion))).
		Put(10, tt_protobuf.Raw(make([]byte, 8))).
		Put(11, tt_protobuf.Str("android")).
		Put(12, tt_protobuf.Uint(uint64(ts<<1))).
		Put(13, tt_protobuf.Raw(bh)).
		Put(14, tt_protobuf.Raw(queryHash(req.query))).
		Put(15, tt_protobuf.Nested(sub15)).
		Put(16, tt_protobuf.Str(req.secDeviceID)).
		Put(20, tt_protobuf.Str("none")).
		Put(21, tt_protobuf.Uint(738)).
		Put(23, tt_protobuf.Nested(sub23)).
		Put(25, tt_protobuf.Uint(2))
	return bean, nil
}

// signArgus 完整的x-argus流水线：bean → protobuf → 块变换 → 信封
func signArgus(req *signRequest, ts int64, nonce uint32) (string, error) {
	bean, err := buildArgusBean(req, ts, nonce)
	if err != nil {
		return "", err
	}
	return frameArgus(transformBean(bean.Marshal())), nil
}
