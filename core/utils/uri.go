package utils

import "strings"

// URIScheme 返回 "scheme://" 前的协议名；不存在或不合法时返回 false。
// 协议名按 RFC 3986 校验：首字符为字母，其余为字母、数字、'+'、'-'、'.'。
func URIScheme(uri string) (string, bool) {
	i := strings.Index(uri, "://")
	if i <= 0 {
		return "", false
	}
	scheme := uri[:i]
	for j := 0; j < len(scheme); j++ {
		c := scheme[j]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case j > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return "", false
		}
	}
	return scheme, true
}

// HasScheme 判断字符串是否是带协议的 URI
func HasScheme(uri string) bool {
	_, ok := URIScheme(uri)
	return ok
}

// URISuffix 返回最后一个路径段中最后一个 '.' 之后的后缀，没有后缀返回空串。
// 带协议的 URI 会先去掉 query 和 fragment；本地路径原样处理。
func URISuffix(uri string) string {
	if HasScheme(uri) {
		if i := strings.IndexAny(uri, "?#"); i >= 0 {
			uri = uri[:i]
		}
	}
	dot := strings.LastIndexByte(uri, '.')
	if dot < 0 {
		return ""
	}
	suffix := uri[dot+1:]
	if strings.ContainsRune(suffix, '/') {
		return ""
	}
	return suffix
}
