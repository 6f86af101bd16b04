package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"

	"sportmeet-server/services"
)

type PageMeta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"perPage"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

// Success writes the standard envelope around data.
func Success(ctx iris.Context, data interface{}) {
	ctx.JSON(iris.Map{"success": true, "data": data})
}

// Created writes the envelope with a 201 status.
func Created(ctx iris.Context, data interface{}) {
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "data": data})
}

// Message writes a data-less success envelope.
func Message(ctx iris.Context, message string) {
	ctx.JSON(iris.Map{"success": true, "message": message})
}

// Page writes one page of data plus pagination meta.
func Page(ctx iris.Context, data interface{}, page, perPage int, total int64) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	totalPages := total / int64(perPage)
	if total%int64(perPage) != 0 {
		totalPages++
	}
	ctx.JSON(iris.Map{
		"success": true,
		"data":    data,
		"meta":    PageMeta{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages},
	})
}

// Error stops the request with an error envelope.
func Error(ctx iris.Context, status int, code, message string) {
	ctx.StopWithJSON(status, iris.Map{"success": false, "error": code, "message": message})
}

// HandleValidationErrors formats validator.v10 failures into a 400
// envelope; anything else that ReadJSON returns is a malformed body.
func HandleValidationErrors(err error, ctx iris.Context) {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		fields := make([]iris.Map, 0, len(errs))
		for _, fe := range errs {
			fields = append(fields, iris.Map{
				"field": fe.Field(),
				"rule":  fe.Tag(),
				"value": fmt.Sprintf("%v", fe.Value()),
			})
		}
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.StopWithJSON(iris.StatusBadRequest, iris.Map{
			"success": false,
			"error":   "validation_error",
			"message": "Validation failed.",
			"fields":  fields,
		})
		return
	}
	Error(ctx, iris.StatusBadRequest, "invalid_body", "Request body could not be parsed.")
}

// RespondError is the single translation point from domain errors to HTTP.
// Unknown errors are logged in full and surfaced as a redacted 500.
func RespondError(ctx iris.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		Error(ctx, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, services.ErrUnknownSport):
		Error(ctx, http.StatusBadRequest, "unknown_sport", err.Error())
	case errors.Is(err, services.ErrEventFull):
		Error(ctx, http.StatusBadRequest, "event_full", err.Error())
	case errors.Is(err, services.ErrEventNotJoinable):
		Error(ctx, http.StatusBadRequest, "event_not_joinable", err.Error())
	case errors.Is(err, services.ErrAlreadyParticipant):
		Error(ctx, http.StatusBadRequest, "already_participating", err.Error())
	case errors.Is(err, services.ErrNotParticipant):
		Error(ctx, http.StatusBadRequest, "not_participating", err.Error())
	case errors.Is(err, services.ErrForbidden):
		Error(ctx, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, services.ErrNotFound):
		Error(ctx, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, services.ErrNotPending):
		Error(ctx, http.StatusConflict, "already_reviewed", err.Error())
	default:
		ctx.Application().Logger().Errorf("unhandled error: %v", err)
		Error(ctx, http.StatusInternalServerError, "server_error", "Something went wrong.")
	}
}
