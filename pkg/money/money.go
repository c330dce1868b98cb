package money

import (
	"math"
	"strconv"
	"strings"
)

// Round2 金额统一保留2位小数
// 所有入库的金额都必须先过这一层，避免浮点累加误差外溢
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// JoinAmounts 把面额列表序列化成逗号分隔的字符串（保序入库）
func JoinAmounts(amounts []float64) string {
	if len(amounts) == 0 {
		return ""
	}
	parts := make([]string, 0, len(amounts))
	for _, a := range amounts {
		parts = append(parts, strconv.FormatFloat(Round2(a), 'f', -1, 64))
	}
	return strings.Join(parts, ",")
}

// SplitAmounts 反序列化面额列表，非法片段按0处理
func SplitAmounts(s string) []float64 {
	if s == "" {
		return []float64{}
	}
	parts := strings.Split(s, ",")
	amounts := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			v = 0
		}
		amounts = append(amounts, v)
	}
	return amounts
}

// JoinColors 颜色列表序列化，和面额列表一一对应
func JoinColors(colors []string) string {
	return strings.Join(colors, ",")
}

// SplitColors 颜色列表反序列化
func SplitColors(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}
