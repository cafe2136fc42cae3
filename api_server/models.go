package main

import "time"

type APIKeyRow struct {
	Key       string
	Name      string
	IsActive  bool
	Quota     int64 // 剩余签名额度，负数表示不限
	Used      int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SignRequest /sign的请求体
type SignRequest struct {
	Params        string `json:"params"`
	Body          string `json:"body,omitempty"`
	SecDeviceID   string `json:"sec_device_id,omitempty"`
	Aid           any    `json:"aid,omitempty"`
	LicenseID     any    `json:"license_id,omitempty"`
	SdkVersionStr string `json:"sdk_version_str,omitempty"`
	SdkVersion    any    `json:"sdk_version,omitempty"`
	Cookie        string `json:"cookie,omitempty"`
	Timestamp     int64  `json:"timestamp,omitempty"`
}

// SignResponse /sign的响应体
type SignResponse struct {
	RequestID string            `json:"request_id"`
	Headers   map[string]string `json:"headers"`
}

// Device 设备池里的一条设备记录
type Device struct {
	DeviceID    string `json:"device_id"`
	SecDeviceID string `json:"sec_device_id,omitempty"`
	Cookie      string `json:"cookie,omitempty"`
}
