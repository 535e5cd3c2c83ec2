package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"salonbook/internal/appointments/service"
	"salonbook/pkg/auth"
	apperrors "salonbook/pkg/errors"
	httputil "salonbook/pkg/http"
	"salonbook/pkg/logger"
	"salonbook/pkg/model"
)

type AppointmentHandler struct {
	booking   service.BookingService
	lifecycle service.LifecycleService
	log       *logger.Logger
}

func NewAppointmentHandler(booking service.BookingService, lifecycle service.LifecycleService, log *logger.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		booking:   booking,
		lifecycle: lifecycle,
		log:       log,
	}
}

func (h *AppointmentHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/available-slots/:date", h.AvailableSlots)
	router.POST("/api/v1/appointments", h.Book)
	router.POST("/api/v1/walkin/appointments", h.BookWalkIn)
	router.GET("/api/v1/appointments", h.List)
	router.GET("/api/v1/appointments/:id", h.GetByID)
	router.PUT("/api/v1/appointments/:id/cancel", h.Cancel)
	router.PUT("/api/v1/appointments/:id/reschedule", h.Reschedule)
	router.PATCH("/api/v1/appointments/:id/status", h.UpdateStatus)
	router.PATCH("/api/v1/appointments/:id/assign-staff", h.AssignStaff)
	router.DELETE("/api/v1/appointments/:id", h.Delete)
}

func (h *AppointmentHandler) AvailableSlots(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	result, err := h.booking.Availability(r.Context(), ps.ByName("date"))
	if err != nil {
		h.writeError(w, "AvailableSlots", err)
		return
	}
	h.writeSuccess(w, "AvailableSlots", result)
}

func (h *AppointmentHandler) Book(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BookingRequest
	if !h.decode(w, r, "Book", &req) {
		return
	}

	appointment, err := h.booking.Book(r.Context(), auth.FromRequest(r), &req)
	if err != nil {
		h.writeError(w, "Book", err)
		return
	}

	if err := httputil.WriteCreated(w, appointment); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Book", "error", err)
	}
}

func (h *AppointmentHandler) BookWalkIn(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BookingRequest
	if !h.decode(w, r, "BookWalkIn", &req) {
		return
	}

	appointment, err := h.booking.BookWalkIn(r.Context(), auth.FromRequest(r), &req)
	if err != nil {
		h.writeError(w, "BookWalkIn", err)
		return
	}

	if err := httputil.WriteCreated(w, appointment); err != nil {
		h.log.Error("failed to write JSON response", "handler", "BookWalkIn", "error", err)
	}
}

func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	appointments, total, err := h.lifecycle.List(r.Context(), auth.FromRequest(r), limit, offset)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, appointments, total, limit, offset); err != nil {
		h.log.Error("failed to write JSON response", "handler", "List", "error", err)
	}
}

func (h *AppointmentHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	appointment, err := h.lifecycle.GetByID(r.Context(), auth.FromRequest(r), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}
	h.writeSuccess(w, "GetByID", appointment)
}

func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	// An empty body means cancellation without a reason.
	var req model.CancelRequest
	if r.Body != nil && r.ContentLength != 0 {
		if !h.decode(w, r, "Cancel", &req) {
			return
		}
	}

	appointment, err := h.lifecycle.Cancel(r.Context(), auth.FromRequest(r), ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}
	h.writeSuccess(w, "Cancel", appointment)
}

func (h *AppointmentHandler) Reschedule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.RescheduleRequest
	if !h.decode(w, r, "Reschedule", &req) {
		return
	}

	appointment, err := h.lifecycle.Reschedule(r.Context(), auth.FromRequest(r), ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "Reschedule", err)
		return
	}
	h.writeSuccess(w, "Reschedule", appointment)
}

func (h *AppointmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.StatusUpdateRequest
	if !h.decode(w, r, "UpdateStatus", &req) {
		return
	}

	appointment, err := h.lifecycle.UpdateStatus(r.Context(), auth.FromRequest(r), ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}
	h.writeSuccess(w, "UpdateStatus", appointment)
}

func (h *AppointmentHandler) AssignStaff(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.AssignStaffRequest
	if !h.decode(w, r, "AssignStaff", &req) {
		return
	}

	appointment, err := h.lifecycle.AssignStaff(r.Context(), auth.FromRequest(r), ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "AssignStaff", err)
		return
	}
	h.writeSuccess(w, "AssignStaff", appointment)
}

func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.lifecycle.Delete(r.Context(), auth.FromRequest(r), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *AppointmentHandler) decode(w http.ResponseWriter, r *http.Request, handler string, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, handler, apperrors.InvalidInput("request body is not valid JSON"))
		return false
	}
	return true
}

func (h *AppointmentHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write JSON response", "handler", handler, "error", err)
	}
}

func (h *AppointmentHandler) writeError(w http.ResponseWriter, handler string, err error) {
	appErr := apperrors.AsAppError(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		h.log.Error("request failed", "handler", handler, "error", err)
	}
	if werr := httputil.WriteError(w, appErr); werr != nil {
		h.log.Error("failed to write JSON response", "handler", handler, "error", werr)
	}
}
