package exchange

import (
	"errors"
	"fmt"
)

// APIError는 거래소가 거절한 요청의 에러 응답을 나타냅니다
type APIError struct {
	Code    int64  // 거래소 에러 코드
	Message string // 거래소 에러 메시지
	Status  int    // HTTP 상태 코드
}

// Error는 error 인터페이스를 구현합니다
func (e *APIError) Error() string {
	return fmt.Sprintf("API 에러(코드: %d): %s", e.Code, e.Message)
}

// IsAPIError는 err가 거래소 에러 응답인지 확인합니다
func IsAPIError(err error) bool {
	var ae *APIError
	return errors.As(err, &ae)
}
