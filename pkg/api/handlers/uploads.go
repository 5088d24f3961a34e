package handlers

import (
	"net/http"

	"blocksd/pkg/logger"
	"blocksd/pkg/pinning"
	"blocksd/pkg/utils"

	"github.com/gorilla/mux"
)

// RegisterUploads registers the media upload route.
func RegisterUploads(priv *mux.Router) {
	priv.HandleFunc("/uploads", uploadMedia).Methods(http.MethodPost)
}

// uploadMedia handles POST /uploads: streams one multipart file to the
// pinning provider and returns the content hash plus a gateway URL.
func uploadMedia(w http.ResponseWriter, r *http.Request) {
	if deps.Pins == nil {
		utils.JSONError(w, http.StatusServiceUnavailable, "pinning not configured")
		return
	}
	if deps.MaxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, deps.MaxUpload)
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer f.Close()

	pin, err := deps.Pins.Upload(r.Context(), hdr.Filename, f)
	if err != nil {
		logger.Warn("pin_upload_failed", "file", hdr.Filename, "err", err)
		utils.JSONError(w, http.StatusBadGateway, err.Error())
		return
	}
	url := pin.URL
	if deps.Gateway != "" {
		url = pinning.RewriteGateway(pin.URL, deps.Gateway)
	}
	_ = utils.JSONWrite(w, http.StatusCreated, pinning.Pin{Hash: pin.Hash, URL: url})
}
