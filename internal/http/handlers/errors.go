package handlers

import (
	"errors"
	"net/http"

	"github.com/yungbote/coco-backend/internal/data/store"
	"github.com/yungbote/coco-backend/internal/extraction"
	"github.com/yungbote/coco-backend/internal/platform/apierr"
	"github.com/yungbote/coco-backend/internal/services"
)

// classify maps service and store errors onto HTTP statuses and codes.
func classify(err error) *apierr.Error {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return ae
	}
	var unsupported *extraction.UnsupportedTypeError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &unsupported):
		return apierr.New(http.StatusUnsupportedMediaType, "unsupported_file_type", err)
	case errors.As(err, &tooLarge):
		return apierr.New(http.StatusRequestEntityTooLarge, "upload_too_large", err)
	case errors.Is(err, extraction.ErrDocumentRead),
		errors.Is(err, extraction.ErrPresentationRead),
		errors.Is(err, extraction.ErrEmptyFile):
		return apierr.New(http.StatusUnprocessableEntity, "unreadable_file", err)
	case errors.Is(err, store.ErrNotFound):
		return apierr.New(http.StatusNotFound, "study_set_not_found", err)
	case errors.Is(err, store.ErrRevisionConflict):
		return apierr.New(http.StatusConflict, "revision_conflict", err)
	case errors.Is(err, services.ErrPipelineBusy):
		return apierr.New(http.StatusConflict, "pipeline_busy", err)
	case errors.Is(err, services.ErrCancelled):
		return apierr.New(http.StatusConflict, "generation_cancelled", err)
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrEmptyMessage),
		errors.Is(err, store.ErrInvalidSet):
		return apierr.New(http.StatusBadRequest, "invalid_input", err)
	case errors.Is(err, services.ErrGeneration):
		return apierr.New(http.StatusBadGateway, "generation_failed", err)
	}
	return apierr.From(err)
}
