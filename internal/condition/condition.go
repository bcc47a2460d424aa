// 包 condition：检索条件关键字（日文）→ squeezeCondition 取值
package condition

import (
	"strings"

	"venue-vacancy/internal/logger"
)

var table = map[string]string{
	"禁煙":      "kinen",
	"朝食付き":    "breakfast",
	"夕食付き":    "dinner",
	"大浴場":     "daiyoku",
	"温泉":      "onsen",
	"インターネット": "internet",
}

// Translate：逗号分隔（兼容全角逗号/读点）的关键字翻译为 API 取值，保持输入顺序并去重；未知关键字丢弃
func Translate(input string) string {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == '，' || r == '、'
	})
	seen := make(map[string]struct{})
	var out []string
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, ok := table[f]
		if !ok {
			logger.L().Warn("condition_unknown", "keyword", f)
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return strings.Join(out, ",")
}
