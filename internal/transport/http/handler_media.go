package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/weltenbibliothek/community-service/internal/blob"
	"github.com/weltenbibliothek/community-service/internal/domain"
	"github.com/weltenbibliothek/community-service/internal/service"
)

// multipart-форма целиком, включая видео
const maxMultipartMemory = 64 << 20

// жёсткий потолок тела запроса: лимит видео плюс оверхед формы.
// Режем на транспорте, пока тело не осело в памяти
const maxUploadBytes = 52 << 20

// POST /api/media/upload
// multipart поля: file, kind (image|video), world, username
func (h *Handler) MediaUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeErr(w, http.StatusRequestEntityTooLarge, "upload too large", nil)
			return
		}
		writeErr(w, http.StatusBadRequest, "invalid multipart form", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeErr(w, http.StatusBadRequest, "file field is required", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Error("handler.MediaUpload: read file:", slog.Any("err", err))
		writeErr(w, http.StatusInternalServerError, "internal error", nil)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	info, err := h.media.Upload(r.Context(), service.MediaUpload{
		Kind:        r.FormValue("kind"),
		World:       r.FormValue("world"),
		Username:    r.FormValue("username"),
		Filename:    header.Filename,
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrUnknownWorld):
			writeErr(w, http.StatusBadRequest, err.Error(), nil)
		default:
			slog.Error("handler.MediaUpload:", slog.Any("err", err))
			writeErr(w, http.StatusInternalServerError, "internal error", nil)
		}
		return
	}

	writeJSON(w, http.StatusOK, MediaUploadResponse{
		Success:     true,
		Name:        info.Name,
		Size:        info.Size,
		ContentType: info.ContentType,
		URL:         "/api/media/" + info.Name,
	})
}

// GET /api/media/{world}/{username}/{file}
func (h *Handler) MediaGet(w http.ResponseWriter, r *http.Request) {
	name := mediaObjectName(r)

	data, info, err := h.media.Get(r.Context(), name)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "media not found", nil)
			return
		}
		slog.Error("handler.MediaGet:", slog.Any("err", err))
		writeErr(w, http.StatusInternalServerError, "internal error", nil)
		return
	}

	w.Header().Set("Content-Type", info.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// DELETE /api/media/{world}/{username}/{file}
func (h *Handler) MediaDelete(w http.ResponseWriter, r *http.Request) {
	name := mediaObjectName(r)

	if err := h.media.Delete(r.Context(), name); err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "media not found", nil)
			return
		}
		slog.Error("handler.MediaDelete:", slog.Any("err", err))
		writeErr(w, http.StatusInternalServerError, "internal error", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func mediaObjectName(r *http.Request) string {
	return chi.URLParam(r, "world") + "/" + chi.URLParam(r, "username") + "/" + chi.URLParam(r, "file")
}
