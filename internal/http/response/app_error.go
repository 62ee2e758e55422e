package response

// AppError 业务码 + 对外消息 + 内部原因
type AppError struct {
	Code    int
	Message string
	Err     error
}

// WrapError 包装错误
func WrapError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// ServerSide 是否属于服务端故障（需要按错误级别记录）
func (e *AppError) ServerSide() bool {
	return e.Code >= CodeInternal
}
