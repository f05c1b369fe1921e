package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/autorentar/service-booking/internal/application"
	"github.com/autorentar/service-booking/internal/response"
)

// AdminHandler serves the back-office booking endpoints.
type AdminHandler struct {
	service *application.BookingService
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(service *application.BookingService) *AdminHandler {
	return &AdminHandler{service: service}
}

// RegisterRoutes mounts the admin routes. The group must already enforce the
// admin role.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/bookings", h.List)
	r.GET("/bookings/stats", h.Stats)
	r.POST("/bookings/:id/resolve", h.Resolve)
	r.POST("/bookings/:id/complete", h.Complete)
}

// List returns all bookings with pagination.
func (h *AdminHandler) List(c *gin.Context) {
	page, limit := pagination(c)
	bookings, total, err := h.service.ListAllBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, toBookingResponses(bookings), total, page, limit)
}

// Stats returns booking counts per status.
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.service.BookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}

type resolveRequest struct {
	Note string `json:"note"`
}

// Resolve closes an open dispute.
func (h *AdminHandler) Resolve(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking id")
		return
	}

	var req resolveRequest
	_ = c.ShouldBindJSON(&req)

	b, err := h.service.Resolve(c.Request.Context(), bookingID, req.Note)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toBookingResponse(b))
}

// Complete finalizes a booking.
func (h *AdminHandler) Complete(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking id")
		return
	}

	b, err := h.service.Complete(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toBookingResponse(b))
}
