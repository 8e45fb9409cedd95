package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coco-backend/internal/platform/apierr"
	"github.com/yungbote/coco-backend/internal/platform/ctxutil"
)

type APIError struct {
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError writes the error envelope. The cause of a 500 is recorded on
// the gin context for the request log and replaced by a generic message.
func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	if status == http.StatusInternalServerError {
		if err != nil {
			_ = c.Error(err)
		}
		msg = "internal error"
	}
	body := APIError{Message: msg, Code: code}
	if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
		body.RequestID = td.RequestID
	}
	c.JSON(status, ErrorEnvelope{Error: body})
}

// RespondAPIError writes err using its apierr classification; unclassified
// errors become 500 internal_error.
func RespondAPIError(c *gin.Context, err error) {
	ae := apierr.From(err)
	RespondError(c, ae.Status, ae.Code, ae.Err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
