package i18n

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestCatalogsLoadWithSameKeys(t *testing.T) {
	if err := Err(); err != nil {
		t.Fatalf("load catalogs failed: %v", err)
	}
	base := catalogs[DefaultLocale]
	if len(base) == 0 {
		t.Fatalf("default catalog is empty")
	}
	for _, locale := range supportedLocales {
		messages := catalogs[locale]
		if len(messages) != len(base) {
			t.Fatalf("%s has %d keys, default has %d", locale, len(messages), len(base))
		}
		for key := range base {
			if messages[key] == "" {
				t.Fatalf("%s missing key %s", locale, key)
			}
		}
	}
}

func TestNormalizeLocale(t *testing.T) {
	cases := map[string]string{
		"":                         LocaleZhCN,
		"en-US":                    LocaleEnUS,
		"EN-us":                    LocaleEnUS,
		"en-GB,en;q=0.8":           LocaleEnUS,
		"zh-TW":                    LocaleZhTW,
		"zh-HK,zh;q=0.9":           LocaleZhTW,
		"zh":                       LocaleZhCN,
		"fr-FR":                    LocaleZhCN,
		"not a locale;;":           LocaleZhCN,
		"ja,en-US;q=0.7,zh;q=0.5": LocaleEnUS,
	}
	for raw, want := range cases {
		if got := NormalizeLocale(raw); got != want {
			t.Fatalf("NormalizeLocale(%q) want %s got %s", raw, want, got)
		}
	}
}

func TestTAndSprintf(t *testing.T) {
	if got := T(LocaleEnUS, "error.coupon_not_found"); got != "Invalid coupon code" {
		t.Fatalf("unexpected message: %s", got)
	}
	if got := T(LocaleEnUS, "error.no_such_key"); got != "error.no_such_key" {
		t.Fatalf("missing key should echo key, got %s", got)
	}
	got := Sprintf(LocaleEnUS, "error.coupon_min_amount", "50.00")
	if got != "Minimum order amount of 50.00 required for this coupon" {
		t.Fatalf("unexpected formatted message: %s", got)
	}
	if got := Sprintf(LocaleEnUS, "error.coupon_per_user_used", 2); got != "You have already used this coupon 2 time(s)" {
		t.Fatalf("unexpected per user message: %s", got)
	}
	if got := Sprintf(LocaleZhCN, "error.rate_limited", 30); got != "请求过于频繁，请 30 秒后重试" {
		t.Fatalf("unexpected zh message: %s", got)
	}
}

func TestResolveLocalePrefersHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)
	c.Request.Header.Set("Accept-Language", "en-US")
	c.Request.Header.Set("X-Locale", "zh-TW")
	if got := ResolveLocale(c); got != LocaleZhTW {
		t.Fatalf("X-Locale should win, got %s", got)
	}

	c.Request.Header.Del("X-Locale")
	if got := ResolveLocale(c); got != LocaleEnUS {
		t.Fatalf("Accept-Language fallback want en-US got %s", got)
	}
	if got := ResolveLocale(nil); got != DefaultLocale {
		t.Fatalf("nil context should use default, got %s", got)
	}
}
