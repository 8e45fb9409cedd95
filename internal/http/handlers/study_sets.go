package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coco-backend/internal/domain"
	"github.com/yungbote/coco-backend/internal/extraction"
	"github.com/yungbote/coco-backend/internal/http/response"
	"github.com/yungbote/coco-backend/internal/platform/apierr"
	"github.com/yungbote/coco-backend/internal/platform/logger"
	"github.com/yungbote/coco-backend/internal/services"
)

type StudySetHandler struct {
	log       *logger.Logger
	pipeline  services.PipelineService
	sets      services.StudySetService
	tutor     services.TutorService
	image     services.StudyImageService
	maxUpload int64
}

func NewStudySetHandler(
	log *logger.Logger,
	pipeline services.PipelineService,
	sets services.StudySetService,
	tutor services.TutorService,
	image services.StudyImageService,
	maxUploadBytes int64,
) *StudySetHandler {
	return &StudySetHandler{
		log:       log.With("handler", "StudySetHandler"),
		pipeline:  pipeline,
		sets:      sets,
		tutor:     tutor,
		image:     image,
		maxUpload: maxUploadBytes,
	}
}

func (h *StudySetHandler) List(c *gin.Context) {
	response.RespondOK(c, gin.H{"studySets": h.sets.List()})
}

// Create runs the pipeline on a multipart file upload or on pasted text (JSON
// or url-encoded form) and responds once the study set is stored.
func (h *StudySetHandler) Create(c *gin.Context) {
	in, err := h.readUpload(c)
	if err != nil {
		response.RespondAPIError(c, classify(err))
		return
	}
	set, err := h.pipeline.Process(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		response.RespondAPIError(c, classify(err))
		return
	}
	response.RespondCreated(c, set)
}

func (h *StudySetHandler) readUpload(c *gin.Context) (services.Upload, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		var req struct {
			Text string `json:"text" form:"text"`
		}
		if err := c.ShouldBind(&req); err != nil {
			return services.Upload{}, apierr.New(http.StatusBadRequest, "invalid_request", err)
		}
		return services.Upload{Text: req.Text}, nil
	}

	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return services.Upload{}, err
		}
		return services.Upload{}, apierr.New(http.StatusBadRequest, "invalid_multipart_form", err)
	}
	in := services.Upload{Text: c.PostForm("text")}

	fh, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil
	}
	if err != nil {
		return services.Upload{}, apierr.New(http.StatusBadRequest, "invalid_file", err)
	}
	f, err := fh.Open()
	if err != nil {
		return services.Upload{}, apierr.New(http.StatusBadRequest, "invalid_file", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return services.Upload{}, apierr.New(http.StatusBadRequest, "invalid_file", fmt.Errorf("read %s: %w", fh.Filename, err))
	}
	h.log.Debug("upload received", "name", fh.Filename, "bytes", len(data))
	in.File = &extraction.File{
		Name:     fh.Filename,
		MimeType: fh.Header.Get("Content-Type"),
		Data:     data,
	}
	return in, nil
}

func (h *StudySetHandler) Get(c *gin.Context) {
	set, err := h.sets.Get(c.Param("id"))
	if err != nil {
		response.RespondAPIError(c, classify(err))
		return
	}
	response.RespondOK(c, set)
}

// Replace is a compare-and-swap write of the editable fields; the body must
// carry the revision it was read at.
func (h *StudySetHandler) Replace(c *gin.Context) {
	var set domain.StudySet
	if err := c.ShouldBindJSON(&set); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if set.Revision <= 0 {
		response.RespondError(c, http.StatusBadRequest, "revision_required", nil)
		return
	}
	set.ID = c.Param("id")
	updated, err := h.sets.Replace(c.Request.Context(), set)
	if err != nil {
		response.RespondAPIError(c, classify(err))
		return
	}
	response.RespondOK(c, updated)
}

func (h *StudySetHandler) UpdateSummary(c *gin.Context) {
	var req struct {
		Summary *string `json:"summary"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.Summary == nil {
		response.RespondError(c, http.StatusBadRequest, "summary_required", errors.New("summary is required"))
		return
	}
	updated, err := h.sets.UpdateSummary(c.Request.Context(), c.Param("id"), *req.Summary)
	if err != nil {
		response.RespondAPIError(c, classify(err))
		return
	}
	response.RespondOK(c, updated)
}

func (h *StudySetHandler) Chat(c *gin.Context) {
	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	reply, err := h.tutor.Send(c.Request.Context(), c.Param("id"), req.Message)
	if err != nil {
		response.RespondAPIError(c, classify(err))
		return
	}
	response.RespondOK(c, gin.H{"reply": reply})
}

func (h *StudySetHandler) GenerateImage(c *gin.Context) {
	set, err := h.image.Generate(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		response.RespondAPIError(c, classify(err))
		return
	}
	response.RespondOK(c, set)
}

func (h *StudySetHandler) ScoreQuiz(c *gin.Context) {
	var req struct {
		Answers []int `json:"answers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.sets.ScoreQuiz(c.Param("id"), req.Answers)
	if err != nil {
		response.RespondAPIError(c, classify(err))
		return
	}
	response.RespondOK(c, res)
}

func (h *StudySetHandler) GetActive(c *gin.Context) {
	set, ok := h.sets.Active()
	if !ok {
		response.RespondOK(c, gin.H{"id": nil, "studySet": nil})
		return
	}
	response.RespondOK(c, gin.H{"id": set.ID, "studySet": set})
}

// SetActive selects a set; {"id": null} clears the selection.
func (h *StudySetHandler) SetActive(c *gin.Context) {
	var req struct {
		ID *string `json:"id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	id := ""
	if req.ID != nil {
		id = strings.TrimSpace(*req.ID)
	}
	if err := h.sets.Select(id); err != nil {
		response.RespondAPIError(c, classify(err))
		return
	}
	h.GetActive(c)
}
