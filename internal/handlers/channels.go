package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/SubhajitManna-B/youtube-backend/internal/channels"
	"github.com/SubhajitManna-B/youtube-backend/internal/logging"
	"github.com/SubhajitManna-B/youtube-backend/internal/middleware"
	"github.com/SubhajitManna-B/youtube-backend/internal/models"
)

// ChannelHandler implements channel profile, subscription, watch history,
// and video publish endpoints.
type ChannelHandler struct {
	Channels ChannelService
	Media    MediaStore
}

// Profile handles GET /api/v1/channels/{handle}. The viewer is taken from
// the access token when one is presented; anonymous viewers simply see the
// subscription flag as false.
func (h ChannelHandler) Profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewerID := middleware.AccountIDFromContext(ctx)
	profile, err := h.Channels.Profile(ctx, viewerID, r.PathValue("handle"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, profileResponse{Channel: profile})
}

// Subscribe handles POST /api/v1/channels/{handle}/subscribe.
func (h ChannelHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subscriberID := middleware.AccountIDFromContext(ctx)
	if err := h.Channels.Subscribe(ctx, subscriberID, r.PathValue("handle")); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "subscribed"})
}

// Unsubscribe handles DELETE /api/v1/channels/{handle}/subscribe.
func (h ChannelHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subscriberID := middleware.AccountIDFromContext(ctx)
	if err := h.Channels.Unsubscribe(ctx, subscriberID, r.PathValue("handle")); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "unsubscribed"})
}

// History handles GET /api/v1/history.
func (h ChannelHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entries, err := h.Channels.WatchHistory(ctx, middleware.AccountIDFromContext(ctx))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if entries == nil {
		entries = []models.WatchEntry{}
	}
	respondJSON(ctx, w, http.StatusOK, historyResponse{History: entries})
}

// RecordWatch handles POST /api/v1/history.
func (h ChannelHandler) RecordWatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req watchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid watch payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := h.Channels.RecordWatch(ctx, middleware.AccountIDFromContext(ctx), req.VideoID); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, map[string]string{"status": "recorded"})
}

// Publish handles POST /api/v1/videos. The body is multipart: metadata
// fields plus the video file (required) and an optional thumbnail.
func (h ChannelHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		logger.Warn("invalid publish payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "multipart form body is required"})
		return
	}

	duration, _ := strconv.ParseInt(r.FormValue("durationSeconds"), 10, 64)
	in := channels.PublishInput{
		OwnerID:         middleware.AccountIDFromContext(ctx),
		Title:           r.FormValue("title"),
		Description:     r.FormValue("description"),
		DurationSeconds: duration,
	}

	videoURL, ok := saveUpload(w, r, h.Media, "video", "videos")
	if !ok {
		return
	}
	thumbnailURL, ok := saveUpload(w, r, h.Media, "thumbnail", "thumbnails")
	if !ok {
		return
	}
	in.VideoURL = videoURL
	in.ThumbnailURL = thumbnailURL

	video, err := h.Channels.Publish(ctx, in)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	logger.Info("video published", "videoId", video.ID, "ownerId", video.OwnerID)
	respondJSON(ctx, w, http.StatusCreated, publishResponse{VideoID: video.ID, VideoURL: video.VideoURL, ThumbnailURL: video.ThumbnailURL})
}

type watchRequest struct {
	VideoID string `json:"videoId"`
}

type profileResponse struct {
	Channel models.ChannelProfile `json:"channel"`
}

type historyResponse struct {
	History []models.WatchEntry `json:"history"`
}

type publishResponse struct {
	VideoID      string `json:"videoId"`
	VideoURL     string `json:"videoUrl"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}
