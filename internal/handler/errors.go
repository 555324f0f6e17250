package handler

import (
	"errors"
	"net/http"

	"canvasgw/internal/canvas"
	"canvasgw/internal/domain"
	"canvasgw/internal/httputil"
)

// handleError maps domain and upstream errors to HTTP responses. Error
// bodies never carry credentials: upstream errors are reduced to their
// status class.
func handleError(w http.ResponseWriter, err error) {
	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
		return
	}

	var statusErr *canvas.StatusError
	if errors.As(err, &statusErr) {
		httputil.RespondError(w, http.StatusBadGateway, statusErr.Error())
		return
	}

	httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
}

// handleUpstreamError is for paths where any failure is, by construction,
// an upstream transport problem. Unclassified errors are folded into a
// GatewayError so the response never echoes upstream details.
func handleUpstreamError(w http.ResponseWriter, err error) {
	var httpErr domain.HTTPError
	if !errors.As(err, &httpErr) {
		httpErr = &domain.GatewayError{Message: "learning platform request failed"}
	}
	httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
}
