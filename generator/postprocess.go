package generator

import (
	"errors"
	"regexp"
	"strings"
)

var fencePattern = regexp.MustCompile("(?s)^```[a-zA-Z]*\n(.*?)\n?```$")

// PostProcess 去掉模型常见的多余包装（代码块围栏、首尾空白）。
func PostProcess(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}
	if text == "" {
		return "", errors.New("model returned empty text")
	}
	return text, nil
}
