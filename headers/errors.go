package headers

import "fmt"

// InvalidParameterError aid/license_id/sdk_version等参数无法转成整数
type InvalidParameterError struct {
	Name  string
	Value any
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %v", e.Name, e.Value)
}

// MalformedVersionError version_name不满足MAJOR.MINOR.PATCH
type MalformedVersionError struct {
	Version string
}

func (e *MalformedVersionError) Error() string {
	return fmt.Sprintf("malformed version string: %q", e.Version)
}

// DecodingError hex输入解码失败
type DecodingError struct {
	What string
	Err  error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.What, e.Err)
}

func (e *DecodingError) Unwrap() error { return e.Err }
