package shared

import (
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	couponCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,32}$`)
	registerOnce      sync.Once
	registerErr       error
)

// RegisterValidators 在 gin 的校验引擎上注册自定义规则，可重复调用。
func RegisterValidators() error {
	registerOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		registerErr = engine.RegisterValidation("coupon_code", func(fl validator.FieldLevel) bool {
			return couponCodePattern.MatchString(fl.Field().String())
		})
	})
	return registerErr
}
