package handler

import (
	"bytes"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"roombook/internal/bookings/export"
	"roombook/internal/bookings/service"
	apperrors "roombook/pkg/errors"
	"roombook/pkg/grid"
	httputil "roombook/pkg/http"
	"roombook/pkg/logger"
	"roombook/pkg/model"
	"roombook/pkg/notify"
)

type BookingHandler struct {
	service  service.BookingService
	notifier *notify.Notifier
	log      *logger.Logger
}

func NewBookingHandler(service service.BookingService, notifier *notify.Notifier, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service:  service,
		notifier: notifier,
		log:      log,
	}
}

type HourSlot struct {
	Hour  int    `json:"hour"`
	Label string `json:"label"`
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	booking, err := h.service.Add(r.Context(), &req)
	if err != nil {
		h.notifyFailure(err)
		h.writeError(w, "Create", err)
		return
	}

	h.notifier.Success(notify.MsgBooked)
	if err := httputil.WriteCreated(w, booking, notify.MsgBooked); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.Get(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

// GetAll lists every booking, or only the week from ?start= when given.
func (h *BookingHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	start := httputil.QueryString(r, "start")

	var bookings []*model.Booking
	if start == "" {
		bookings = h.service.List(r.Context())
	} else {
		view, err := h.service.Week(r.Context(), start)
		if err != nil {
			h.writeError(w, "GetAll", err)
			return
		}
		bookings = view.Bookings
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAll", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Remove(r.Context(), ps.ByName("id")); err != nil {
		h.notifyFailure(err)
		h.writeError(w, "Delete", err)
		return
	}

	h.notifier.Success(notify.MsgCancelled)
	httputil.WriteNoContent(w)
}

func (h *BookingHandler) Week(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	view, err := h.service.Week(r.Context(), httputil.QueryString(r, "start"))
	if err != nil {
		h.writeError(w, "Week", err)
		return
	}

	if err := httputil.WriteSuccess(w, view); err != nil {
		h.log.Error("failed to write success response", "handler", "Week", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) ExportWeek(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	view, err := h.service.Week(r.Context(), httputil.QueryString(r, "start"))
	if err != nil {
		h.writeError(w, "ExportWeek", err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteWeek(&buf, view); err != nil {
		h.log.Error("Failed to export week", "start", view.Start, "error", err)
		h.writeError(w, "ExportWeek", apperrors.Internal("Failed to export week", err))
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName(view.Start)+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.log.Error("failed to write export response", "handler", "ExportWeek", "operation", "Write", "error", err)
	}
}

func (h *BookingHandler) Rooms(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteSuccess(w, h.service.Grid().Rooms()); err != nil {
		h.log.Error("failed to write success response", "handler", "Rooms", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Hours(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	hours := h.service.Grid().Hours()
	slots := make([]HourSlot, 0, len(hours))
	for _, hour := range hours {
		slots = append(slots, HourSlot{Hour: hour, Label: grid.SlotLabel(hour)})
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "Hours", "operation", "WriteSuccess", "error", err)
	}
}

// Notification returns the outcome of the last add or remove while it is live.
func (h *BookingHandler) Notification(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	note, ok := h.notifier.Current()
	if !ok {
		httputil.WriteNoContent(w)
		return
	}

	if err := httputil.WriteSuccess(w, note); err != nil {
		h.log.Error("failed to write success response", "handler", "Notification", "operation", "WriteSuccess", "error", err)
	}
}

// Validation problems are returned to the caller only; every other failed
// add or remove replaces the notification.
func (h *BookingHandler) notifyFailure(err error) {
	switch {
	case apperrors.HasCode(err, apperrors.CodeConflict):
		h.notifier.Error(notify.MsgConflict)
	case apperrors.HasCode(err, apperrors.CodeNotFound):
		h.notifier.Error(notify.MsgNotFound)
	case apperrors.HasCode(err, apperrors.CodeValidation), apperrors.HasCode(err, apperrors.CodeInvalidInput):
	default:
		h.notifier.Error(notify.MsgFailed)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings", h.GetAll)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.DELETE("/api/v1/bookings/id/:id", h.Delete)
	router.GET("/api/v1/bookings/week", h.Week)
	router.GET("/api/v1/bookings/week/export", h.ExportWeek)
	router.GET("/api/v1/rooms", h.Rooms)
	router.GET("/api/v1/hours", h.Hours)
	router.GET("/api/v1/notification", h.Notification)
}
