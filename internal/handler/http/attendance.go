package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/jwtauth/v5"
	"github.com/pulsehr/attendance-backend-go/internal/domain/attendance"
	"github.com/pulsehr/attendance-backend-go/internal/domain/scope"
	"github.com/pulsehr/attendance-backend-go/internal/domain/user"
	"github.com/pulsehr/attendance-backend-go/internal/handler/http/response"
)

type AttendanceHandler interface {
	Punch(w http.ResponseWriter, r *http.Request)
	GetToday(w http.ResponseWriter, r *http.Request)
	GetDailySnapshot(w http.ResponseWriter, r *http.Request)
	GetMonthlyReport(w http.ResponseWriter, r *http.Request)
	GetSummary(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// callerFromContext extracts the verified identity claims for a request.
func callerFromContext(r *http.Request) scope.Caller {
	_, claims, _ := jwtauth.FromContext(r.Context())

	var caller scope.Caller
	if userID, ok := claims["user_id"].(string); ok {
		caller.UserID = userID
	}
	if employeeID, ok := claims["employee_id"].(string); ok {
		caller.EmployeeID = employeeID
	}
	if roleStr, ok := claims["role"].(string); ok {
		if role, ok := user.ParseRole(roleStr); ok {
			caller.Role = role
		}
	}
	return caller
}

// getIntQueryParam gets an int query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

// Punch implements AttendanceHandler.
func (h *attendanceHandlerImpl) Punch(w http.ResponseWriter, r *http.Request) {
	var req attendance.RecordPunchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode punch request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	caller := callerFromContext(r)
	if req.EmployeeID == "" {
		// default to the caller's own employee; punching is self-only anyway
		req.EmployeeID = caller.EmployeeID
	}

	result, err := h.attendanceService.RecordPunch(r.Context(), caller, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Punch recorded", result)
}

// GetToday implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetToday(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetToday(r.Context(), callerFromContext(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetDailySnapshot implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetDailySnapshot(w http.ResponseWriter, r *http.Request) {
	req := attendance.DailySnapshotRequest{
		Date: r.URL.Query().Get("date"),
	}

	result, err := h.attendanceService.GetDailySnapshot(r.Context(), callerFromContext(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetMonthlyReport implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMonthlyReport(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r)

	req := attendance.MonthlyReportRequest{
		EmployeeID: r.URL.Query().Get("employee_id"),
		Month:      getIntQueryParam(r, "month", 0),
		Year:       getIntQueryParam(r, "year", 0),
	}
	if req.EmployeeID == "" {
		req.EmployeeID = caller.EmployeeID
	}

	result, err := h.attendanceService.GetMonthlyReport(r.Context(), caller, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetSummary implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetSummary(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r)

	req := attendance.MonthlyReportRequest{
		EmployeeID: r.URL.Query().Get("employee_id"),
		Month:      getIntQueryParam(r, "month", 0),
		Year:       getIntQueryParam(r, "year", 0),
	}
	if req.EmployeeID == "" {
		req.EmployeeID = caller.EmployeeID
	}

	result, err := h.attendanceService.GetAttendanceSummary(r.Context(), caller, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
