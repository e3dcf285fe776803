package dashboard

import (
	"fmt"
	"net/http"
	"strings"

	simplejson "github.com/bitly/go-simplejson"
	"github.com/gin-gonic/gin"

	"github.com/assist-by/kestrel/internal/domain"
	"github.com/assist-by/kestrel/internal/validate"
)

// respondOK는 성공 응답 봉투를 내려보냅니다
func respondOK(c *gin.Context, data interface{}, message string) {
	body := gin.H{"success": true}
	if data != nil {
		body["data"] = data
	}
	if message != "" {
		body["message"] = message
	}
	c.JSON(http.StatusOK, body)
}

// respondError는 실패 응답 봉투를 내려보냅니다. 모든 실패는 400입니다.
func respondError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

// respondOrderError는 주문 경로의 검증 실패에 구분용 접두어를 붙입니다
func respondOrderError(c *gin.Context, err error) {
	if validate.IsValidationError(err) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   fmt.Sprintf("Validation error: %v", err),
		})
		return
	}
	respondError(c, err)
}

// requestBody는 요청 본문을 느슨한 JSON 문서로 읽습니다
func requestBody(c *gin.Context) (*simplejson.Json, error) {
	body, err := simplejson.NewFromReader(c.Request.Body)
	if err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	return body, nil
}

func (s *Server) handleBalance(c *gin.Context) {
	balance, err := s.trader.AccountBalance(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, balance, "")
}

func (s *Server) handlePrice(c *gin.Context) {
	symbol := c.Param("symbol")

	price, err := s.trader.CurrentPrice(c.Request.Context(), symbol)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{
		"symbol": strings.ToUpper(symbol),
		"price":  price,
	}, "")
}

func (s *Server) handlePositions(c *gin.Context) {
	positions, err := s.trader.PositionInfo(c.Request.Context(), c.Query("symbol"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, positions, "")
}

func (s *Server) handleOrders(c *gin.Context) {
	orders, err := s.trader.OpenOrders(c.Request.Context(), c.Query("symbol"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, orders, "")
}

func (s *Server) handleLeverage(c *gin.Context) {
	body, err := requestBody(c)
	if err != nil {
		respondError(c, err)
		return
	}

	symbol := body.Get("symbol").MustString()
	leverage := body.Get("leverage").Interface()

	resp, err := s.trader.SetLeverage(c.Request.Context(), symbol, leverage)
	if err != nil {
		respondError(c, err)
		return
	}

	s.hub.Broadcast("leverage", resp)
	respondOK(c, resp, fmt.Sprintf("Leverage set to %vx for %s", leverage, symbol))
}

func (s *Server) handleMarketOrder(c *gin.Context) {
	body, err := requestBody(c)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := s.trader.PlaceMarketOrder(
		c.Request.Context(),
		body.Get("symbol").MustString(),
		body.Get("side").MustString(),
		body.Get("quantity").Interface(),
		body.Get("reduceOnly").MustBool(),
	)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	s.hub.Broadcast("order", resp)
	respondOK(c, resp, "Market order placed successfully")
}

func (s *Server) handleLimitOrder(c *gin.Context) {
	body, err := requestBody(c)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := s.trader.PlaceLimitOrder(
		c.Request.Context(),
		body.Get("symbol").MustString(),
		body.Get("side").MustString(),
		body.Get("quantity").Interface(),
		body.Get("price").Interface(),
		body.Get("timeInForce").MustString("GTC"),
		body.Get("reduceOnly").MustBool(),
	)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	s.hub.Broadcast("order", resp)
	respondOK(c, resp, "Limit order placed successfully")
}

func (s *Server) handleStopMarketOrder(c *gin.Context) {
	body, err := requestBody(c)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := s.trader.PlaceStopMarketOrder(
		c.Request.Context(),
		body.Get("symbol").MustString(),
		body.Get("side").MustString(),
		body.Get("quantity").Interface(),
		body.Get("stopPrice").Interface(),
		body.Get("reduceOnly").MustBool(),
	)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	s.hub.Broadcast("order", resp)
	respondOK(c, resp, "Stop market order placed successfully")
}

func (s *Server) handleStopLimitOrder(c *gin.Context) {
	body, err := requestBody(c)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := s.trader.PlaceStopLimitOrder(
		c.Request.Context(),
		body.Get("symbol").MustString(),
		body.Get("side").MustString(),
		body.Get("quantity").Interface(),
		body.Get("price").Interface(),
		body.Get("stopPrice").Interface(),
		body.Get("timeInForce").MustString("GTC"),
		body.Get("reduceOnly").MustBool(),
	)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	s.hub.Broadcast("order", resp)
	respondOK(c, resp, "Stop limit order placed successfully")
}

func (s *Server) handleCancelOrder(c *gin.Context) {
	body, err := requestBody(c)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := s.trader.CancelOrder(
		c.Request.Context(),
		body.Get("symbol").MustString(),
		body.Get("orderId").MustInt64(),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	s.hub.Broadcast("cancel", resp)
	respondOK(c, resp, "Order cancelled successfully")
}

func (s *Server) handleClosePosition(c *gin.Context) {
	body, err := requestBody(c)
	if err != nil {
		respondError(c, err)
		return
	}

	symbol := body.Get("symbol").MustString()

	resp, err := s.trader.ClosePosition(c.Request.Context(), symbol)
	if err != nil {
		respondError(c, err)
		return
	}

	if resp["status"] == domain.StatusNoPosition {
		respondError(c, fmt.Errorf("No open position for %s", symbol))
		return
	}

	s.hub.Broadcast("order", resp)
	respondOK(c, resp, "Position closed successfully")
}
