package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"canvasgw/internal/canvas"
	"canvasgw/internal/domain"
	"canvasgw/internal/httputil"
)

// DownloadFile resolves file metadata (with bounded retry) and streams the
// bytes through with an attachment disposition. Upstream failure statuses
// are propagated; bytes are forwarded as they arrive, never buffered.
// GET /files/{id}/download
func (h *CanvasHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	client, err := h.client(r)
	if err != nil {
		handleError(w, err)
		return
	}

	fileID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || fileID <= 0 {
		httputil.RespondError(w, http.StatusBadRequest, "invalid file id")
		return
	}

	meta, err := client.FileMetadata(r.Context(), fileID)
	if err != nil {
		var statusErr *canvas.StatusError
		if errors.As(err, &statusErr) {
			if statusErr.Status == http.StatusNotFound {
				handleError(w, &domain.NotFoundError{Message: "file not found"})
				return
			}
			httputil.RespondError(w, statusErr.Status, "learning platform rejected the file lookup")
			return
		}
		handleUpstreamError(w, err)
		return
	}
	if meta.URL == "" {
		handleError(w, &domain.GatewayError{Message: "file has no download URL"})
		return
	}

	resp, err := client.Download(r.Context(), meta.URL)
	if err != nil {
		handleUpstreamError(w, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		httputil.RespondError(w, resp.StatusCode, "learning platform rejected the download")
		return
	}

	name := meta.DisplayName
	if name == "" {
		name = meta.Filename
	}
	if name == "" {
		name = fmt.Sprintf("file-%d", fileID)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = meta.ContentType
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	if resp.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(resp.ContentLength, 10))
	}
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(name)))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, resp.Body); err != nil {
		// Headers are gone; all we can do is log the broken stream.
		h.logger.Error("download stream interrupted",
			"file_id", fileID,
			"error", err,
			"request_id", httputil.GetRequestID(r),
		)
	}
}
