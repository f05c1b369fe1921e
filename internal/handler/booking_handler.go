package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/autorentar/service-booking/internal/application"
	"github.com/autorentar/service-booking/internal/domain/booking"
	"github.com/autorentar/service-booking/internal/middleware"
	"github.com/autorentar/service-booking/internal/response"
)

// BookingHandler serves the booking lifecycle API.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes mounts the booking routes on an authenticated group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/bookings", h.Create)
	r.GET("/bookings/renter", h.ListAsRenter)
	r.GET("/bookings/owner", h.ListAsOwner)
	r.GET("/bookings/number/:number", h.GetByNumber)
	r.GET("/bookings/:id", h.Get)
	r.GET("/bookings/:id/eligibility", h.Eligibility)
	r.POST("/bookings/:id/check-in", h.CheckIn)
	r.POST("/bookings/:id/check-out", h.CheckOut)
	r.POST("/bookings/:id/inspection/pass", h.InspectionPass)
	r.POST("/bookings/:id/inspection/damage", h.InspectionDamage)
	r.POST("/bookings/:id/dispute", h.Dispute)
	r.POST("/bookings/:id/cancel", h.Cancel)
	r.POST("/bookings/:id/reject", h.Reject)
}

type createBookingRequest struct {
	OwnerID          string                  `json:"owner_id" binding:"required"`
	Vehicle          booking.VehicleSnapshot `json:"vehicle" binding:"required"`
	StartAt          time.Time               `json:"start_at" binding:"required"`
	EndAt            time.Time               `json:"end_at" binding:"required"`
	NightlyRateCents int64                   `json:"nightly_rate_cents"`
	TotalAmountCents int64                   `json:"total_amount_cents" binding:"required"`
	Currency         string                  `json:"currency" binding:"required"`
	Notes            string                  `json:"notes"`
}

// Create opens a new booking request for the authenticated renter.
func (h *BookingHandler) Create(c *gin.Context) {
	renterID, ok := middleware.GetUserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		response.BadRequest(c, "invalid owner_id")
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), application.CreateBookingInput{
		RenterID:         renterID,
		OwnerID:          ownerID,
		Vehicle:          req.Vehicle,
		StartAt:          req.StartAt,
		EndAt:            req.EndAt,
		NightlyRateCents: req.NightlyRateCents,
		TotalAmountCents: req.TotalAmountCents,
		Currency:         req.Currency,
		Notes:            req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, toBookingResponse(b))
}

// Get returns one booking visible to the caller.
func (h *BookingHandler) Get(c *gin.Context) {
	userID, role, bookingID, ok := h.requestContext(c)
	if !ok {
		return
	}

	b, err := h.service.GetBooking(c.Request.Context(), bookingID, userID, role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toBookingResponse(b))
}

// GetByNumber returns one booking by its booking number.
func (h *BookingHandler) GetByNumber(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	role, _ := middleware.GetUserRole(c)

	b, err := h.service.GetBookingByNumber(c.Request.Context(), c.Param("number"), userID, role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toBookingResponse(b))
}

// ListAsRenter lists the caller's bookings as a renter.
func (h *BookingHandler) ListAsRenter(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	page, limit := pagination(c)
	bookings, total, err := h.service.ListRenterBookings(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, toBookingResponses(bookings), total, page, limit)
}

// ListAsOwner lists the caller's bookings as a vehicle owner.
func (h *BookingHandler) ListAsOwner(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	page, limit := pagination(c)
	bookings, total, err := h.service.ListOwnerBookings(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, toBookingResponses(bookings), total, page, limit)
}

// Eligibility reports what the caller can currently do with a booking.
func (h *BookingHandler) Eligibility(c *gin.Context) {
	userID, role, bookingID, ok := h.requestContext(c)
	if !ok {
		return
	}

	eligibility, err := h.service.Eligibility(c.Request.Context(), bookingID, userID, role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, eligibility)
}

// CheckIn starts the rental.
func (h *BookingHandler) CheckIn(c *gin.Context) {
	userID, _, bookingID, ok := h.requestContext(c)
	if !ok {
		return
	}

	b, err := h.service.CheckIn(c.Request.Context(), bookingID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toBookingResponse(b))
}

// CheckOut hands the vehicle back.
func (h *BookingHandler) CheckOut(c *gin.Context) {
	userID, _, bookingID, ok := h.requestContext(c)
	if !ok {
		return
	}

	b, err := h.service.CheckOut(c.Request.Context(), bookingID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toBookingResponse(b))
}

// InspectionPass records a clean post-return inspection.
func (h *BookingHandler) InspectionPass(c *gin.Context) {
	userID, _, bookingID, ok := h.requestContext(c)
	if !ok {
		return
	}

	b, err := h.service.MarkInspectedGood(c.Request.Context(), bookingID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toBookingResponse(b))
}

type damageRequest struct {
	Note string `json:"note"`
}

// InspectionDamage flags the returned vehicle as damaged.
func (h *BookingHandler) InspectionDamage(c *gin.Context) {
	userID, _, bookingID, ok := h.requestContext(c)
	if !ok {
		return
	}

	var req damageRequest
	_ = c.ShouldBindJSON(&req)

	b, err := h.service.ReportDamage(c.Request.Context(), bookingID, userID, req.Note)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toBookingResponse(b))
}

// Dispute opens a dispute on the booking.
func (h *BookingHandler) Dispute(c *gin.Context) {
	userID, _, bookingID, ok := h.requestContext(c)
	if !ok {
		return
	}

	b, err := h.service.Dispute(c.Request.Context(), bookingID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toBookingResponse(b))
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// Cancel cancels the booking with the caller's attributed variant.
func (h *BookingHandler) Cancel(c *gin.Context) {
	userID, role, bookingID, ok := h.requestContext(c)
	if !ok {
		return
	}

	var req cancelRequest
	_ = c.ShouldBindJSON(&req)

	b, err := h.service.Cancel(c.Request.Context(), bookingID, userID, role, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toBookingResponse(b))
}

// Reject declines a booking request (owner only).
func (h *BookingHandler) Reject(c *gin.Context) {
	userID, _, bookingID, ok := h.requestContext(c)
	if !ok {
		return
	}

	b, err := h.service.Reject(c.Request.Context(), bookingID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toBookingResponse(b))
}

// requestContext extracts the authenticated user, role and the :id path
// parameter, writing the error response itself when something is missing.
func (h *BookingHandler) requestContext(c *gin.Context) (uuid.UUID, string, uuid.UUID, bool) {
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

func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
