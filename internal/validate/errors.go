package validate

import (
	"errors"
	"fmt"
)

// ValidationError는 입력값이 도메인 규칙을 위반했을 때 반환되는 에러입니다.
// 항상 네트워크 호출 전에 발생하며, 위반한 필드와 원본 값을 함께 담습니다.
type ValidationError struct {
	Field  string      // 위반한 필드 이름
	Value  interface{} // 호출자가 전달한 원본 값
	Reason string      // 위반한 규칙 설명
}

// Error는 error 인터페이스를 구현합니다
func (e *ValidationError) Error() string {
	return fmt.Sprintf("유효성 검사 실패 [필드: %s, 값: %v]: %s", e.Field, e.Value, e.Reason)
}

// IsValidationError는 err가 ValidationError인지 확인합니다
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func newError(field string, value interface{}, reason string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}
