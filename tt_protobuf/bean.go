package tt_protobuf

// Bean 有序的tagged字段树，对应客户端里按字段号组装的protobuf消息。
// 值类型只有四种：无符号整数、UTF-8字符串、原始字节、嵌套bean。
type Bean struct {
	fields []beanField
}

type beanField struct {
	tag uint32
	val Value
}

type valueKind int

const (
	kindUint valueKind = iota
	kindString
	kindBytes
	kindBean
)

// Value bean字段值（tagged union）
type Value struct {
	kind valueKind
	num  uint64
	str  string
	raw  []byte
	bean *Bean
}

// Uint 整数值
func Uint(v uint64) Value { return Value{kind: kindUint, num: v} }

// Str 字符串值
func Str(s string) Value { return Value{kind: kindString, str: s} }

// Raw 字节值
func Raw(b []byte) Value { return Value{kind: kindBytes, raw: b} }

// Nested 嵌套bean值
func Nested(b *Bean) Value { return Value{kind: kindBean, bean: b} }

// NewBean 创建空bean
func NewBean() *Bean {
	return &Bean{}
}

// Put 按调用顺序追加一个字段。写入顺序即编码顺序。
func (b *Bean) Put(tag uint32, v Value) *Bean {
	b.fields = append(b.fields, beanField{tag: tag, val: v})
	return b
}

// Marshal 编码为protobuf wire字节。
// 与客户端一致：树里出现的字段全部写出，包括空字符串和0。
func (b *Bean) Marshal() []byte {
	e := NewProtobufEncoder()
	for _, f := range b.fields {
		switch f.val.kind {
		case kindUint:
			e.WriteUint(f.tag, f.val.num)
		case kindString:
			e.WriteString(f.tag, f.val.str)
		case kindBytes:
			e.WriteBytes(f.tag, f.val.raw)
		case kindBean:
			e.WriteMessage(f.tag, f.val.bean.Marshal())
		}
	}
	return e.Bytes()
}
