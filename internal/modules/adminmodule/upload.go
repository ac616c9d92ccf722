package adminmodule

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/moviecatalog/internal/api"
	"github.com/mantonx/moviecatalog/internal/logger"
	"github.com/mantonx/moviecatalog/internal/media"
	"github.com/mantonx/moviecatalog/internal/types"
)

// UploadPermission is required to store images
const UploadPermission = "media.add"

type uploadHandler struct {
	storage media.Storage
}

// upload handles POST /admin/uploads
//
// Form fields:
//   - file: the image (required)
//   - dir: target directory below the media root, e.g. "posters"
func (h *uploadHandler) upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		api.RespondWithError(c, types.NewFieldValidationError(map[string]string{"file": "this field is required"}))
		return
	}

	f, err := header.Open()
	if err != nil {
		api.RespondWithError(c, types.NewInternalError("failed to open upload", err))
		return
	}
	defer f.Close()

	ref, err := h.storage.Save(c.Request.Context(), c.PostForm("dir"), header.Filename, f)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}

	op, _ := currentOperator(c)
	logger.Info("image uploaded", "ref", ref, "size", header.Size, "operator", op.Name)
	c.JSON(http.StatusCreated, gin.H{
		"ref": ref,
		"url": h.storage.URL(ref),
	})
}
