package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

const (
	LocaleEN = "en-US"
	LocaleZH = "zh-CN"
	LocaleTW = "zh-TW"

	// DefaultLocale 站点默认语言
	DefaultLocale = LocaleEN

	localeQueryKey  = "lang"
	localeHeaderKey = "X-Locale"
)

var supportedLocales = []string{LocaleEN, LocaleZH, LocaleTW}

var matcher = language.NewMatcher([]language.Tag{
	language.AmericanEnglish,
	language.SimplifiedChinese,
	language.TraditionalChinese,
})

// ResolveLocale 解析请求语言：lang 参数 > X-Locale > Accept-Language
func ResolveLocale(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return DefaultLocale
	}
	if locale, ok := NormalizeLocale(c.Query(localeQueryKey)); ok {
		return locale
	}
	if locale, ok := NormalizeLocale(c.GetHeader(localeHeaderKey)); ok {
		return locale
	}
	return MatchAcceptLanguage(c.GetHeader("Accept-Language"))
}

// NormalizeLocale 归一化语言标识，不支持时返回 false
func NormalizeLocale(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	for _, locale := range supportedLocales {
		if strings.EqualFold(locale, trimmed) {
			return locale, true
		}
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return "", false
	}
	return matchTag(tag), true
}

// MatchAcceptLanguage 按 Accept-Language 选择最接近的语言
func MatchAcceptLanguage(header string) string {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return DefaultLocale
	}
	return supportedLocales[index]
}

func matchTag(tag language.Tag) string {
	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		return DefaultLocale
	}
	return supportedLocales[index]
}

// T 翻译，缺失时回退到默认语言，再回退到 key 本身
func T(locale, key string) string {
	if table, ok := messages[locale]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if msg, ok := messages[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 翻译并格式化
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}
