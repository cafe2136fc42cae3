package headers

// Simon128/256：块为两个64位字，密钥四个字，72轮。
// z4序列按LSB在前打包。
const (
	simonRounds        = 72
	simonZ4     uint64 = 0x3dc94c3a046d678b
)

type simonKey [simonRounds]uint64

// expandSimonKey 展开轮密钥。k[0]是密钥的前8字节（小端序），依次类推。
func expandSimonKey(k [4]uint64) *simonKey {
	var ks simonKey
	ks[0], ks[1], ks[2], ks[3] = k[0], k[1], k[2], k[3]
	for i := 4; i < simonRounds; i++ {
		tmp := ror64(ks[i-1], 3) ^ ks[i-3]
		tmp ^= ror64(tmp, 1)
		z := (simonZ4 >> uint((i-4)%62)) & 1
		ks[i] = ^ks[i-4] ^ tmp ^ z ^ 3
	}
	return &ks
}

// encryptBlock 加密一个块。w0/w1是按小端序读出的两个字，w0在前。
func (ks *simonKey) encryptBlock(w0, w1 uint64) (uint64, uint64) {
	for i := 0; i < simonRounds; i++ {
		w0, w1 = w1, ks[i]^w0^(rol64(w1, 1)&rol64(w1, 8))^rol64(w1, 2)
	}
	return w0, w1
}
