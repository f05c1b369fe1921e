package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/autorentar/service-booking/internal/application"
	"github.com/autorentar/service-booking/internal/domain/booking"
	"github.com/autorentar/service-booking/internal/middleware"
	"github.com/autorentar/service-booking/internal/response"
)

// CheckoutHandler serves franchise, deposit and guarantee quotes.
type CheckoutHandler struct {
	deposits *application.DepositService
}

// NewCheckoutHandler creates a CheckoutHandler.
func NewCheckoutHandler(deposits *application.DepositService) *CheckoutHandler {
	return &CheckoutHandler{deposits: deposits}
}

// RegisterRoutes mounts the checkout routes on an authenticated group.
func (h *CheckoutHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/bookings/:id/franchise", h.Franchise)
	r.GET("/bookings/:id/deposit", h.Deposit)
	r.POST("/bookings/:id/guarantee", h.Guarantee)
}

// Franchise returns the deductible figures for a booking's vehicle.
func (h *CheckoutHandler) Franchise(c *gin.Context) {
	userID, role, bookingID, ok := checkoutContext(c)
	if !ok {
		return
	}

	franchise, err := h.deposits.FranchiseForBooking(c.Request.Context(), bookingID, userID, role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, franchise)
}

// Deposit returns the subscription-adjusted deposit for a booking.
func (h *CheckoutHandler) Deposit(c *gin.Context) {
	userID, role, bookingID, ok := checkoutContext(c)
	if !ok {
		return
	}

	deposit, err := h.deposits.DepositWithSubscription(c.Request.Context(), bookingID, userID, role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, deposit)
}

type guaranteeRequest struct {
	PaymentMethod string  `json:"payment_method" binding:"required"`
	WalletAmount  float64 `json:"wallet_amount"`
	CardAmount    float64 `json:"card_amount"`
}

// Guarantee returns the full checkout quote for a payment method and wallet
// split.
func (h *CheckoutHandler) Guarantee(c *gin.Context) {
	userID, role, bookingID, ok := checkoutContext(c)
	if !ok {
		return
	}

	var req guaranteeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	quote, err := h.deposits.QuoteGuarantee(
		c.Request.Context(),
		bookingID, userID, role,
		booking.PaymentMethod(req.PaymentMethod),
		booking.WalletSplit{WalletAmount: req.WalletAmount, CardAmount: req.CardAmount},
	)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, quote)
}

func checkoutContext(c *gin.Context) (uuid.UUID, string, uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return uuid.Nil, "", uuid.Nil, false
	}
	role, _ := middleware.GetUserRole(c)

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking id")
		return uuid.Nil, "", uuid.Nil, false
	}
	return userID, role, bookingID, true
}
