// Package ttcrypt 通用payload加解密：客户端上行报文的信封格式。
// 结构：zlib压缩+长度前缀 → 校验字节 → XTEA-CBC → 最外层AES-CBC。
package ttcrypt

import (
	"bytes"
	"compress/zlib"
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"io"
	"math/rand"
)

var (
	aesKey  = mustHex("b8d72ddec05142948bbf2dc81d63759c")
	aesIV   = mustHex("d6c3969582f9ac5313d39c180b54a2bc")
	xteaKey = mustHex("782399bdfacedead3230313030343034")
)

// ivTail XTEA IV的固定后4字节
var ivTail = mustHex("27042020")

// zlibHeader level1压缩流的头两个字节，解密时用来定位压缩流
var zlibHeader = []byte{0x78, 0x01}

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// Encrypt 加密payload
func Encrypt(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("empty payload")
	}

	compressed, err := zlibCompress(data, 1)
	if err != nil {
		return nil, err
	}
	inner := make([]byte, 4, 4+len(compressed))
	binary.LittleEndian.PutUint32(inner, uint32(len(data)))
	inner = append(inner, compressed...)

	// 校验字节：末字节和明文长度的混合，加CRC尾巴
	lastByte := inner[len(inner)-1]
	byteOne := ((lastByte ^ byte(len(data))) << 1 & 0xf8) | 0x07
	forXtea := append([]byte{byteOne}, checksumTail(inner)...)
	forXtea = append(forXtea, inner...)

	// IV前4字节在固定区间里随机，同时决定XTEA轮数
	iv4 := uint32(rand.Intn(0x10) + 0xC0133EB0)
	iv := make([]byte, 4, 8)
	binary.BigEndian.PutUint32(iv, iv4)
	iv = append(iv, ivTail...)

	enc, err := cbcXTEA(iv, xteaKey, forXtea, true)
	if err != nil {
		return nil, err
	}

	forAES := make([]byte, 0, 1+len(enc)+4)
	forAES = append(forAES, enc[0]^0x03)
	forAES = append(forAES, enc...)
	forAES = append(forAES, iv[:4]...)

	return aesEncrypt(forAES)
}

// Decrypt Encrypt的逆变换，返回原始payload
func Decrypt(data []byte) ([]byte, error) {
	plain, err := aesDecrypt(data)
	if err != nil {
		return nil, err
	}
	if len(plain) < 1+4 {
		return nil, errors.New("envelope too short")
	}

	iv := make([]byte, 0, 8)
	iv = append(iv, plain[len(plain)-4:]...)
	iv = append(iv, ivTail...)

	inner, err := cbcXTEA(iv, xteaKey, plain[1:len(plain)-4], false)
	if err != nil {
		return nil, err
	}

	idx := bytes.Index(inner, zlibHeader)
	if idx < 0 {
		return nil, errors.New("zlib header not found")
	}
	out, err := zlibDecompress(inner[idx:])
	if err != nil {
		return nil, err
	}
	return out, nil
}

func zlibCompress(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func zlibDecompress(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

func pkcs7Pad(in []byte, blockSize int) []byte {
	padLen := blockSize - len(in)%blockSize
	return append(in, bytes.Repeat([]byte{byte(padLen)}, padLen)...)
}

func aesEncrypt(plain []byte) ([]byte, error) {
	block, err := aes.NewCipher(aesKey)
	if err != nil {
		return nil, err
	}
	plain = pkcs7Pad(plain, block.BlockSize())
	out := make([]byte, len(plain))
	cipher.NewCBCEncrypter(block, aesIV).CryptBlocks(out, plain)
	return out, nil
}

// aesDecrypt 按末字节直接截断padding，不做严格校验（与客户端一致）
func aesDecrypt(ct []byte) ([]byte, error) {
	if len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return nil, errors.New("ciphertext not multiple of block size")
	}
	block, err := aes.NewCipher(aesKey)
	if err != nil {
		return nil, err
	}
	plain := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, aesIV).CryptBlocks(plain, ct)
	padLen := int(plain[len(plain)-1])
	if padLen <= 0 || padLen > len(plain) {
		return nil, errors.New("invalid padding length")
	}
	return plain[:len(plain)-padLen], nil
}
