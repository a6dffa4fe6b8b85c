package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bonsai-buddy/internal/application"
	"github.com/oksasatya/bonsai-buddy/internal/domain/apperror"
	"github.com/oksasatya/bonsai-buddy/internal/interface/middleware"
	"github.com/oksasatya/bonsai-buddy/pkg/response"
	"github.com/oksasatya/bonsai-buddy/pkg/validation"
)

// maxUploadBytes caps how much of a multipart file is read. The image
// processor enforces the real limit.
const maxUploadBytes = 20 << 20

type base struct {
	Logger *logrus.Logger
}

// fail writes err as an error envelope. Upstream outages are logged here;
// unclassified errors are logged by the error logger middleware.
func (b base) fail(c *gin.Context, err error) {
	if apperror.KindOf(err) == apperror.KindUpstreamUnavailable && b.Logger != nil {
		b.Logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
		}).Warn("upstream unavailable")
	}
	response.Fail(c, err)
}

// bind decodes a JSON body. Decoding problems are Validation errors.
func (b base) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		b.fail(c, apperror.Validation("invalid payload", validation.ToDetails(err)))
		return false
	}
	return true
}

func viewer(c *gin.Context) application.Viewer {
	return middleware.ViewerFrom(c)
}

// confirmed guards destructive deletes behind ?confirm=true.
func (b base) confirmed(c *gin.Context) bool {
	if ok, _ := strconv.ParseBool(c.Query("confirm")); ok {
		return true
	}
	b.fail(c, apperror.Validation("deletion must be confirmed", map[string]string{"confirm": "must be true"}))
	return false
}

// seqMeta echoes the client's sequence number so it can drop stale answers.
func seqMeta(c *gin.Context) map[string]any {
	seq, err := strconv.ParseInt(c.Query("seq"), 10, 64)
	if err != nil {
		return nil
	}
	return map[string]any{"seq": seq}
}

func queryLimit(c *gin.Context) int {
	n, _ := strconv.Atoi(c.Query("limit"))
	return n
}

// formImage reads an optional multipart file. A missing file yields nil.
func formImage(c *gin.Context, field string) (*application.ImageUpload, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Validation("invalid upload", map[string]string{field: err.Error()})
	}
	return readUpload(fh)
}

func readUpload(fh *multipart.FileHeader) (*application.ImageUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxUploadBytes {
		return nil, apperror.Validation("image too large", map[string]string{"image": "file is too large"})
	}
	return &application.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
