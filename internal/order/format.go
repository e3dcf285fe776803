package order

// Placeholder는 응답에 없는 필드 대신 표시하는 값입니다
const Placeholder = "N/A"

// responseFields는 주문 응답에서 추출하는 원본 키와 표시 이름의 대응입니다
var responseFields = []struct {
	label string
	key   string
}{
	{"Order ID", "orderId"},
	{"Client Order ID", "clientOrderId"},
	{"Symbol", "symbol"},
	{"Side", "side"},
	{"Type", "type"},
	{"Status", "status"},
	{"Quantity", "origQty"},
	{"Price", "price"},
	{"Stop Price", "stopPrice"},
	{"Executed Qty", "executedQty"},
	{"Avg Price", "avgPrice"},
	{"Time", "updateTime"},
}

// FormatResponse는 원본 주문 응답을 고정된 12개 표시 필드로 변환합니다.
// 응답에 없는 필드는 Placeholder로 채웁니다. 입력 형태와 무관하게 실패하지 않으며
// 로깅 용도로만 사용합니다. 호출자에게는 항상 원본 응답을 돌려줍니다.
func FormatResponse(raw map[string]interface{}) map[string]interface{} {
	formatted := make(map[string]interface{}, len(responseFields))
	for _, f := range responseFields {
		if v, ok := raw[f.key]; ok {
			formatted[f.label] = v
		} else {
			formatted[f.label] = Placeholder
		}
	}
	return formatted
}
