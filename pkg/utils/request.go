package utils

import (
	"net/http"
	"strings"
)

const (
	HeaderUserID = "X-User-ID"

	AnonymousOwner = "anonymous"
	LocalClient    = "local"
)

// OwnerID 返回调用方身份，缺省为 anonymous
func OwnerID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(HeaderUserID)); id != "" {
		return id
	}
	return AnonymousOwner
}

// RawOwnerID 返回调用方身份，没有时为空串
func RawOwnerID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(HeaderUserID))
}

// ClientKey 返回限流使用的来源标识：X-Forwarded-For 第一跳，其次 X-Real-IP，否则 local
func ClientKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.SplitN(xff, ",", 2)[0]); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return LocalClient
}
