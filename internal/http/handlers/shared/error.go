package shared

import (
	"errors"

	"github.com/storedesk/internal/http/response"
	"github.com/storedesk/internal/i18n"
	"github.com/storedesk/internal/logger"
	"github.com/storedesk/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if id := c.GetString(response.RequestIDKey); id != "" {
		return logger.SW(response.RequestIDKey, id)
	}
	return logger.S()
}

// RespondError 返回国际化错误响应，err 非空时按服务端错误记录日志。
func RespondError(c *gin.Context, code int, key string, err error) {
	respond(c, code, i18n.T(i18n.ResolveLocale(c), key), err)
}

// RespondLocalized 返回带参数的国际化错误响应，用于业务拒绝，不记录错误日志。
func RespondLocalized(c *gin.Context, code int, err service.LocalizedError) {
	respond(c, code, i18n.Sprintf(i18n.ResolveLocale(c), err.Key(), err.Args()...), nil)
}

func respond(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		log := RequestLog(c).Warnw
		if appErr.ServerSide() {
			log = RequestLog(c).Errorw
		}
		log("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

type errorMapping struct {
	target error
	code   int
	key    string
}

var couponErrorMappings = []errorMapping{
	{service.ErrCouponInvalid, response.CodeBadRequest, "error.coupon_invalid"},
	{service.ErrCouponNotFound, response.CodeNotFound, "error.coupon_not_found"},
	{service.ErrCouponInactive, response.CodeBadRequest, "error.coupon_inactive"},
	{service.ErrCouponExpired, response.CodeBadRequest, "error.coupon_expired"},
	{service.ErrCouponUsageLimit, response.CodeBadRequest, "error.coupon_usage_limit"},
	{service.ErrCouponPerUserLimit, response.CodeBadRequest, "error.coupon_per_user_limit"},
	{service.ErrCouponCodeExists, response.CodeBadRequest, "error.coupon_code_exists"},
}

// RespondCouponError 将优惠券业务错误映射为响应，未知错误按 fallbackKey 返回 500。
func RespondCouponError(c *gin.Context, err error, fallbackKey string) {
	var localized service.LocalizedError
	if errors.As(err, &localized) {
		RespondLocalized(c, response.CodeBadRequest, localized)
		return
	}
	for _, m := range couponErrorMappings {
		if errors.Is(err, m.target) {
			RespondError(c, m.code, m.key, nil)
			return
		}
	}
	RespondError(c, response.CodeInternal, fallbackKey, err)
}
