// Package i18n 提供接口错误提示的多语言文案。
package i18n

import (
	"embed"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"golang.org/x/text/language"
)

const (
	LocaleZhCN = "zh-CN"
	LocaleZhTW = "zh-TW"
	LocaleEnUS = "en-US"

	// DefaultLocale 未指定或无法匹配时使用的语言
	DefaultLocale = LocaleZhCN

	localeHeader = "X-Locale"
)

//go:embed locales/*.json
var localeFS embed.FS

var supportedLocales = []string{LocaleZhCN, LocaleZhTW, LocaleEnUS}

var (
	loadOnce sync.Once
	catalogs map[string]map[string]string
	loadErr  error
	matcher  = language.NewMatcher([]language.Tag{
		language.MustParse(LocaleZhCN),
		language.MustParse(LocaleZhTW),
		language.MustParse(LocaleEnUS),
	})
)

func load() {
	catalogs = make(map[string]map[string]string, len(supportedLocales))
	for _, locale := range supportedLocales {
		raw, err := localeFS.ReadFile(path.Join("locales", locale+".json"))
		if err != nil {
			loadErr = err
			return
		}
		messages := map[string]string{}
		if err := json.Unmarshal(raw, &messages); err != nil {
			loadErr = fmt.Errorf("i18n: parse %s: %w", locale, err)
			return
		}
		catalogs[locale] = messages
	}
}

// Err 返回文案加载错误，启动时检查
func Err() error {
	loadOnce.Do(load)
	return loadErr
}

// T 获取文案，缺失时回退到默认语言，仍缺失时返回 key
func T(locale, key string) string {
	loadOnce.Do(load)
	if msg, ok := catalogs[NormalizeLocale(locale)][key]; ok {
		return msg
	}
	if msg, ok := catalogs[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 获取带参数的文案
func Sprintf(locale, key string, args ...interface{}) string {
	msg := T(locale, key)
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

// NormalizeLocale 将任意语言标记归一到支持的语言
func NormalizeLocale(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultLocale
	}
	for _, locale := range supportedLocales {
		if strings.EqualFold(raw, locale) {
			return locale
		}
	}
	tags, _, err := language.ParseAcceptLanguage(raw)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return DefaultLocale
	}
	return supportedLocales[index]
}

// ResolveLocale 从请求头解析语言：X-Locale 优先，其次 Accept-Language
func ResolveLocale(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return DefaultLocale
	}
	if locale := strings.TrimSpace(c.GetHeader(localeHeader)); locale != "" {
		return NormalizeLocale(locale)
	}
	return NormalizeLocale(c.GetHeader("Accept-Language"))
}
