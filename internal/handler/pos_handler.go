package handler

import (
	"errors"
	"net/http"
	"strconv"

	"app/internal/repository"
	pos "app/internal/usecase/pos_usecase"

	"github.com/labstack/echo/v4"
)

// レジのカート操作とチェックアウト
type PosHandler struct {
	engine *pos.Engine
}

// DI
func NewPosHandler(engine *pos.Engine) *PosHandler {
	return &PosHandler{engine: engine}
}

func (h *PosHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/pos/cart", h.viewCart)
	g.POST("/pos/cart/items", h.addItem)
	g.PATCH("/pos/cart/items/:index", h.updateLine)
	g.DELETE("/pos/cart/items/:index", h.removeItem)
	g.DELETE("/pos/cart", h.clearCart)
	g.POST("/pos/checkout", h.checkout)
	g.POST("/pos/checkout/split", h.confirmSplit)
	g.POST("/pos/checkout/cancel", h.cancelSplit)
}

// posのエラーをHTTPステータスへ
func writePosError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, pos.ErrEmptyCart),
		errors.Is(err, pos.ErrInvalidQuantity):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, pos.ErrLineNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "product not found"})
	case errors.Is(err, pos.ErrOutOfStock),
		errors.Is(err, pos.ErrInsufficientStock),
		errors.Is(err, pos.ErrCheckoutInFlight),
		errors.Is(err, pos.ErrNoSplitPending):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	}

	// 書き込み失敗はコミット済み注文IDも返す（店側で照合できるように）
	var we *pos.WriteError
	if errors.As(err, &we) {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error":               "checkout failed",
			"phase":               we.Phase,
			"committed_order_ids": we.Committed,
		})
	}

	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func (h *PosHandler) viewCart(c echo.Context) error {
	userID, err := userIDFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	return c.JSON(http.StatusOK, h.engine.ViewCart(userID))
}

type addItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

func (h *PosHandler) addItem(c echo.Context) error {
	userID, err := userIDFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req addItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	view, err := h.engine.AddToCart(c.Request().Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		return writePosError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

type updateLineRequest struct {
	// "increase" または "decrease"（レジ画面の+/-ボタン）
	Op string `json:"op"`
}

func (h *PosHandler) updateLine(c echo.Context) error {
	var req updateLineRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	switch req.Op {
	case "increase":
		return h.mutateLine(c, h.engine.IncreaseLine)
	case "decrease":
		return h.mutateLine(c, h.engine.DecreaseLine)
	default:
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid op"})
	}
}

func (h *PosHandler) removeItem(c echo.Context) error {
	return h.mutateLine(c, h.engine.RemoveLine)
}

func (h *PosHandler) mutateLine(c echo.Context, fn func(userID int64, index int) (pos.CartView, error)) error {
	userID, err := userIDFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid index"})
	}

	view, err := fn(userID, index)
	if err != nil {
		return writePosError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *PosHandler) clearCart(c echo.Context) error {
	userID, err := userIDFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	view, err := h.engine.ClearCart(userID)
	if err != nil {
		return writePosError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

type checkoutRequest struct {
	AmountPaid int64 `json:"amount_paid"`
}

func (h *PosHandler) checkout(c echo.Context) error {
	userID, err := userIDFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	result, err := h.engine.Checkout(c.Request().Context(), userID, req.AmountPaid)
	if err != nil {
		return writePosError(c, err)
	}

	// 分割が必要な場合は確定せず202で確認待ちにする
	if result.SplitRequired {
		return c.JSON(http.StatusAccepted, result)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *PosHandler) confirmSplit(c echo.Context) error {
	userID, err := userIDFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	result, err := h.engine.ConfirmSplit(c.Request().Context(), userID, req.AmountPaid)
	if err != nil {
		return writePosError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *PosHandler) cancelSplit(c echo.Context) error {
	userID, err := userIDFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.engine.CancelSplit(userID); err != nil {
		return writePosError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
