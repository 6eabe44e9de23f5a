package main

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// UploadEbook stores the multipart `file` field into the configured Drive
// folder through the user-authorized session and answers with the remote
// file identifier and links.
func (api *APIHandler) UploadEbook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	file, header, err := r.FormFile("file")
	if err != nil {
		api.logger.Error("failed to read uploaded file", zap.String("request.id", requestID), zap.Error(err))
		if err = WriteDetail(w, http.StatusBadRequest, "missing or invalid multipart file field"); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	defer file.Close()

	result, err := api.ebookService.Upload(r.Context(), header.Filename, file)
	switch {
	case errors.Is(err, ErrEbookFolderNotSet), errors.Is(err, ErrReauthorizationRequired):
		api.logger.Error("ebook upload rejected", zap.String("request.id", requestID), zap.Error(err))
		if err = WriteDetail(w, http.StatusInternalServerError, err.Error()); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	case err != nil:
		api.logger.Error("failed to upload ebook", zap.String("request.id", requestID),
			zap.String("filename", header.Filename), zap.Error(err))
		if err = WriteDetail(w, http.StatusInternalServerError, "failed to upload the ebook"); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	api.logger.Info("success to upload ebook", zap.String("drive.file", result.ID),
		zap.String("filename", header.Filename), zap.String("request.id", requestID))
	if err = WriteJSON(w, http.StatusOK, result); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// OAuthStart hands the operator the authorization URL to open in a browser.
func (api *APIHandler) OAuthStart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	session, err := api.oauthService.Begin()
	if err != nil {
		api.logger.Error("failed to begin oauth handshake", zap.String("request.id", requestID), zap.Error(err))
		if err = WriteDetail(w, http.StatusInternalServerError, "failed to begin the authorization handshake"); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	if err = WriteJSON(w, http.StatusOK, session); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// OAuthFinish exchanges the pasted authorization code for a credential
// bundle the operator must copy into the configuration by hand.
func (api *APIHandler) OAuthFinish(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	code := r.URL.Query().Get("code")
	if len(code) == 0 {
		api.logger.Error("oauth finish called without code", zap.String("request.id", requestID))
		if err := WriteDetail(w, http.StatusBadRequest, "missing authorization code"); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	token, err := api.oauthService.Complete(r.Context(), code)
	if err != nil {
		api.logger.Error("failed to complete oauth handshake", zap.String("request.id", requestID), zap.Error(err))
		if err = WriteDetail(w, http.StatusInternalServerError, "failed to complete the authorization handshake"); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	if err = WriteJSON(w, http.StatusOK, map[string]string{
		"message":      "authorization completed. store this token as BLAP_DRIVE_OAUTH_TOKEN in your configuration.",
		"base64_token": token,
	}); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}
