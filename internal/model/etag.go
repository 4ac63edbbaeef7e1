package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ETag 条件写入使用的并发令牌。
// 两种形态：指定版本（严格比对）或通配符 ETagAny（跳过比对）。
// 零值不是合法令牌，调用方必须显式选择其中一种。
type ETag struct {
	version  int
	wildcard bool
}

// ETagAny 通配符令牌，写入时不校验版本
var ETagAny = ETag{wildcard: true}

// ETagOf 返回指定版本的严格令牌
func ETagOf(version int) ETag {
	return ETag{version: version}
}

// IsAny 是否为通配符令牌
func (e ETag) IsAny() bool { return e.wildcard }

// Version 严格令牌对应的版本号
func (e ETag) Version() int { return e.version }

// IsZero 是否为未设置的零值
func (e ETag) IsZero() bool { return !e.wildcard && e.version == 0 }

// Matches 判断存储中的当前版本是否满足该令牌
func (e ETag) Matches(current int) bool {
	return e.wildcard || e.version == current
}

// String 以 HTTP 实体标签格式输出，如 "3" 或 *
func (e ETag) String() string {
	if e.wildcard {
		return "*"
	}
	return strconv.Quote(strconv.Itoa(e.version))
}

// ParseETag 解析 If-Match 头的值，支持 *、"3"、W/"3" 与 3
func ParseETag(s string) (ETag, error) {
	s = strings.TrimSpace(s)
	if s == "*" {
		return ETagAny, nil
	}
	raw := strings.TrimPrefix(s, "W/")
	raw = strings.Trim(raw, `"`)
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return ETag{}, fmt.Errorf("无效的 ETag %q", s)
	}
	return ETagOf(v), nil
}
