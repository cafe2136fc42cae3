package headers

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// 被模拟客户端的默认参数
const (
	DefaultAid           = 1233
	DefaultLicenseID     = 1611921764
	DefaultSdkVersionStr = "v05.00.03-ov-android"
	DefaultSdkVersion    = 167773760
	DefaultVersionName   = "37.0.4"
	DefaultChannel       = "googleplay"
	DefaultOSVersion     = "9"
)

// QueryParam 保序的query键值对
type QueryParam struct {
	Key   string
	Value string
}

// RequestContext 一次签名调用的全部输入。
// Params接受已编码的query字符串或[]QueryParam；Body接受string、[]byte或
// 任意可JSON序列化的值；Aid/LicenseID/SdkVersion接受整数或数字字符串。
// Timestamp为unix秒，0表示取当前时间。
type RequestContext struct {
	Params        any
	Body          any
	Timestamp     int64
	Aid           any
	LicenseID     any
	SecDeviceID   string
	SdkVersionStr string
	SdkVersion    any
	Cookie        string
}

// signRequest 边界归一化后的内部表示
type signRequest struct {
	query         string
	body          []byte
	hasBody       bool
	stub          string // hex，生成x-ss-stub后回填
	ts            int64
	aid           int64
	licenseID     int64
	secDeviceID   string
	sdkVersionStr string
	sdkVersion    int64
	cookie        string

	// 从query第一次出现的键里提取
	channel     string
	deviceID    string
	deviceType  string
	osVersion   string
	versionName string
}

// coerceInt 整数或数字字符串转int64，nil取默认值
func coerceInt(name string, v any, def int64) (int64, error) {
	switch t := v.(type) {
	case nil:
		return def, nil
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case int64:
		return t, nil
	case uint:
		return int64(t), nil
	case uint32:
		return int64(t), nil
	case uint64:
		return int64(t), nil
	case float64:
		// JSON解码出来的数字；带小数的直接报错而不是截断
		if t != math.Trunc(t) || math.IsInf(t, 0) || math.IsNaN(t) {
			return 0, &InvalidParameterError{Name: name, Value: v}
		}
		return int64(t), nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return def, nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, &InvalidParameterError{Name: name, Value: v}
		}
		return n, nil
	default:
		return 0, &InvalidParameterError{Name: name, Value: v}
	}
}

// encodeParams 把params规整成已编码的query字符串，键值对保持调用方给定的顺序
func encodeParams(params any) (string, error) {
	switch p := params.(type) {
	case nil:
		return "", nil
	case string:
		return p, nil
	case []QueryParam:
		var b strings.Builder
		for i, kv := range p {
			if i > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(kv.Key))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(kv.Value))
		}
		return b.String(), nil
	default:
		return "", &InvalidParameterError{Name: "params", Value: params}
	}
}

// normalizeRequest 把RequestContext规整成内部表示，类型转换失败立即报错
func normalizeRequest(req *RequestContext) (*signRequest, error) {
	aid, err := coerceInt("aid", req.Aid, DefaultAid)
	if err != nil {
		return nil, err
	}
	licenseID, err := coerceInt("license_id", req.LicenseID, DefaultLicenseID)
	if err != nil {
		return nil, err
	}
	sdkVersion, err := coerceInt("sdk_version", req.SdkVersion, DefaultSdkVersion)
	if err != nil {
		return nil, err
	}
	query, err := encodeParams(req.Params)
	if err != nil {
		return nil, err
	}
	body, hasBody, err := canonicalBody(req.Body)
	if err != nil {
		return nil, err
	}

	// parse_qs式的宽容解析：坏的转义不阻断，已解析的值照用
	vals, _ := url.ParseQuery(query)
	pick := func(key, def string) string {
		if vs := vals[key]; len(vs) > 0 {
			return vs[0]
		}
		return def
	}

	sdkVersionStr := req.SdkVersionStr
	if sdkVersionStr == "" {
		sdkVersionStr = DefaultSdkVersionStr
	}

	return &signRequest{
		query:         query,
		body:          body,
		hasBody:       hasBody,
		ts:            req.Timestamp,
		aid:           aid,
		licenseID:     licenseID,
		secDeviceID:   req.SecDeviceID,
		sdkVersionStr: sdkVersionStr,
		sdkVersion:    sdkVersion,
		cookie:        req.Cookie,
		channel:       pick("channel", DefaultChannel),
		deviceID:      pick("device_id", ""),
		deviceType:    pick("device_type", ""),
		osVersion:     pick("os_version", DefaultOSVersion),
		versionName:   pick("version_name", DefaultVersionName),
	}, nil
}
