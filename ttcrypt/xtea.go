package ttcrypt

import (
	"encoding/binary"
	"errors"
)

// cbcXTEA XTEA-CBC，8字节块；轮数由IV前4字节决定。
// 块对齐时不加padding，否则按客户端的算法补0到 len+16-rem。
func cbcXTEA(iv, key, data []byte, encrypt bool) ([]byte, error) {
	if len(iv) != 8 {
		return nil, errors.New("invalid iv")
	}
	if len(key) != 16 {
		return nil, errors.New("invalid key")
	}
	if rem := len(data) % 8; rem != 0 {
		padded := make([]byte, len(data)+16-rem)
		copy(padded, data)
		data = padded
	}

	x := newXTEA(key, xteaRoundsFromIV(iv[:4]))
	chaining := make([]byte, 8)
	copy(chaining, iv)
	out := make([]byte, 0, len(data))

	for i := 0; i < len(data); i += 8 {
		block := data[i : i+8]
		if encrypt {
			enc := x.encryptBlock(xor8(block, chaining))
			out = append(out, enc...)
			copy(chaining, enc)
		} else {
			plain := xor8(x.decryptBlock(block), chaining)
			out = append(out, plain...)
			copy(chaining, block)
		}
	}
	return out, nil
}

// xteaRoundsFromIV IV前4字节按小端序读出后取模5，映射到32..64轮
func xteaRoundsFromIV(ivFirst4 []byte) int {
	m := binary.LittleEndian.Uint32(ivFirst4) % 5
	return int((8*((2*m)&8|m) ^ 0x20) & 0xFFFFFFFF)
}

func xor8(a, b []byte) []byte {
	out := make([]byte, 8)
	for i := 0; i < 8; i++ {
		out[i] = a[i] ^ b[i]
	}
	return out
}

type xteaCipher struct {
	rounds uint32
	delta  uint32
	k      [4]uint32
}

func newXTEA(key16 []byte, rounds int) *xteaCipher {
	var k [4]uint32
	for i := 0; i < 4; i++ {
		k[i] = binary.BigEndian.Uint32(key16[i*4 : i*4+4])
	}
	return &xteaCipher{rounds: uint32(rounds), delta: 0x9E3779B9, k: k}
}

// encryptBlock 标准XTEA轮函数，但第二个子密钥索引用(s>>11)&3（客户端变体）
func (x *xteaCipher) encryptBlock(block8 []byte) []byte {
	v0 := binary.BigEndian.Uint32(block8[0:4])
	v1 := binary.BigEndian.Uint32(block8[4:8])
	var s uint32
	for i := uint32(0); i < x.rounds; i++ {
		v0 += (((v1 << 4) ^ (v1 >> 5)) + v1) ^ (s + x.k[s&3])
		s += x.delta
		v1 += (((v0 << 4) ^ (v0 >> 5)) + v0) ^ (s + x.k[(s>>11)&3])
	}
	out := make([]byte, 8)
	binary.BigEndian.PutUint32(out[0:4], v0)
	binary.BigEndian.PutUint32(out[4:8], v1)
	return out
}

func (x *xteaCipher) decryptBlock(block8 []byte) []byte {
	v0 := binary.BigEndian.Uint32(block8[0:4])
	v1 := binary.BigEndian.Uint32(block8[4:8])
	s := x.delta * x.rounds
	for i := uint32(0); i < x.rounds; i++ {
		v1 -= (((v0 << 4) ^ (v0 >> 5)) + v0) ^ (s + x.k[(s>>11)&3])
		s -= x.delta
		v0 -= (((v1 << 4) ^ (v1 >> 5)) + v1) ^ (s + x.k[s&3])
	}
	out := make([]byte, 8)
	binary.BigEndian.PutUint32(out[0:4], v0)
	binary.BigEndian.PutUint32(out[4:8], v1)
	return out
}
