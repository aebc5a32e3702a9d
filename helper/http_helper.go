package helper

import (
	"math"
	"net/http"
	"strconv"

	"capstone-tracker/models"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	textError             = `error`
	textOk                = `ok`
	codeSuccess           = 200
	codeCreated           = 201
	codeBadRequestError   = 400
	codeUnauthorizedError = 401
	codeForbidden         = 403
	codeNotFound          = 404
	codeConflict          = 409
	codeValidationError   = 422
	codeInternalError     = 500
)

// ResponseHelper ...
type ResponseHelper struct {
	C          *gin.Context
	Status     string
	Message    string
	Data       interface{}
	Code       int
	CodeType   string
	HTTPStatus int
}

// HTTPHelper ...
type HTTPHelper struct{}

func NewHTTPHelper() *HTTPHelper {
	return &HTTPHelper{}
}

// GetStatusCode maps a domain error to its HTTP status.
func (u *HTTPHelper) GetStatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var (
		validationErr *models.ValidationError
		policyErr     *models.PolicyError
		sequenceErr   *models.SequenceError
		gateErr       *models.GateLockedError
		stateErr      *models.StateError
		limitErr      *models.LimitError
		notFoundErr   *models.NotFoundError
		unauthErr     *models.UnauthorizedError
		storageErr    *models.StorageError
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &policyErr):
		return http.StatusForbidden
	case errors.As(err, &sequenceErr), errors.As(err, &gateErr), errors.As(err, &stateErr), errors.As(err, &limitErr):
		return http.StatusConflict
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &unauthErr):
		return http.StatusUnauthorized
	case errors.As(err, &storageErr):
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

func codeType(err error) string {
	var (
		validationErr *models.ValidationError
		policyErr     *models.PolicyError
		sequenceErr   *models.SequenceError
		gateErr       *models.GateLockedError
		stateErr      *models.StateError
		limitErr      *models.LimitError
		notFoundErr   *models.NotFoundError
		unauthErr     *models.UnauthorizedError
		storageErr    *models.StorageError
	)

	switch {
	case errors.As(err, &validationErr):
		return `validationError`
	case errors.As(err, &policyErr):
		return `policyError`
	case errors.As(err, &sequenceErr):
		return `sequenceError`
	case errors.As(err, &gateErr):
		return `gateLocked`
	case errors.As(err, &stateErr):
		return `stateError`
	case errors.As(err, &limitErr):
		return `limitReached`
	case errors.As(err, &notFoundErr):
		return `notFound`
	case errors.As(err, &unauthErr):
		return `unAuthorized`
	case errors.As(err, &storageErr):
		return `storageError`
	}
	return `internalError`
}

// SendDomainError sends err with the status GetStatusCode picks. Unknown
// errors are logged and hidden from the client.
func (u *HTTPHelper) SendDomainError(c *gin.Context, err error) error {
	status := u.GetStatusCode(err)
	data := u.EmptyJsonMap()
	message := err.Error()

	var validationErr *models.ValidationError
	var gateErr *models.GateLockedError
	var sequenceErr *models.SequenceError
	switch {
	case errors.As(err, &validationErr):
		if len(validationErr.Fields) > 0 {
			data["fields"] = validationErr.Fields
		}
	case errors.As(err, &gateErr):
		data["gate"] = gateErr.Gate.String()
		data["requires"] = gateErr.Predecessor.String()
	case errors.As(err, &sequenceErr):
		data["stage"] = sequenceErr.Stage
		if sequenceErr.Requires != "" {
			data["requires"] = sequenceErr.Requires
		}
	}

	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		var storageErr *models.StorageError
		if errors.As(err, &storageErr) {
			message = "file storage failed"
		} else {
			message = "internal server error"
		}
	}

	res := u.SetResponse(c, textError, message, data, status, codeType(err))
	res.HTTPStatus = status
	return u.SendResponse(res)
}

// SetResponse ...
// Set response data.
func (u *HTTPHelper) SetResponse(c *gin.Context, status string, message string, data interface{}, code int, codeType string) ResponseHelper {
	return ResponseHelper{C: c, Status: status, Message: message, Data: data, Code: code, CodeType: codeType}
}

// SendError ...
// Send error response to consumers.
func (u *HTTPHelper) SendError(c *gin.Context, message string, data interface{}, code int, codeType string) error {
	res := u.SetResponse(c, textError, message, data, code, codeType)

	return u.SendResponse(res)
}

// SendBadRequest ...
// Send bad request response to consumers.
func (u *HTTPHelper) SendBadRequest(c *gin.Context, message string, data interface{}) error {
	res := u.SetResponse(c, textError, message, data, codeBadRequestError, `badRequest`)

	return u.SendResponse(res)
}

// SendUnauthorizedError ...
// Send unauthorized response to consumers.
func (u *HTTPHelper) SendUnauthorizedError(c *gin.Context, message string, data interface{}) error {
	return u.SendError(c, message, data, codeUnauthorizedError, `unAuthorized`)
}

// SendForbiddenError ...
func (u *HTTPHelper) SendForbiddenError(c *gin.Context, message string, data interface{}) error {
	return u.SendError(c, message, data, codeForbidden, `forbidden`)
}

// SendNotFoundError ...
// Send not found response to consumers.
func (u *HTTPHelper) SendNotFoundError(c *gin.Context, message string, data interface{}) error {
	return u.SendError(c, message, data, codeNotFound, `notFound`)
}

// SendSuccess ...
// Send success response to consumers.
func (u *HTTPHelper) SendSuccess(c *gin.Context, message string, data interface{}) error {
	res := u.SetResponse(c, textOk, message, data, codeSuccess, `success`)

	return u.SendResponse(res)
}

// SendCreated ...
func (u *HTTPHelper) SendCreated(c *gin.Context, message string, data interface{}) error {
	res := u.SetResponse(c, textOk, message, data, codeCreated, `created`)

	return u.SendResponse(res)
}

// SendResponse ...
// Send response
func (u *HTTPHelper) SendResponse(res ResponseHelper) error {
	if len(res.Message) == 0 {
		res.Message = `success`
	}

	resCode := res.HTTPStatus
	if resCode == 0 {
		resCode = res.Code
	}
	if resCode < 200 || resCode > 599 {
		resCode = codeInternalError
	}

	res.C.JSON(resCode, map[string]interface{}{
		"code":         res.Code,
		"code_type":    res.CodeType,
		"code_message": res.Message,
		"data":         res.Data,
	})
	return nil
}

func (u *HTTPHelper) EmptyJsonMap() map[string]interface{} {
	return make(map[string]interface{})
}

// get pagination URL
func (u *HTTPHelper) GetPagingUrl(c *gin.Context, page, limit int) string {
	r := c.Request
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	q := r.URL.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	return scheme + "://" + r.Host + r.URL.Path + "?" + q.Encode()
}

// Set paginantion response
func (u *HTTPHelper) GeneratePaging(c *gin.Context, limit, page, totalRecord int) map[string]interface{} {
	prevURL, nextURL, firstURL, lastURL := "", "", "", ""

	totalPages := 0
	if limit > 0 {
		totalPages = int(math.Ceil(float64(totalRecord) / float64(limit)))
	}

	if totalPages >= page && page > 1 {
		prevURL = u.GetPagingUrl(c, page-1, limit)
		firstURL = u.GetPagingUrl(c, 1, limit)
	}

	if totalPages > page {
		nextURL = u.GetPagingUrl(c, page+1, limit)
	}

	if totalPages >= page && totalPages != page {
		lastURL = u.GetPagingUrl(c, totalPages, limit)
	}

	links := map[string]interface{}{
		"previous": prevURL,
		"next":     nextURL,
		"first":    firstURL,
		"last":     lastURL,
	}

	pagination := map[string]interface{}{
		"total_records": totalRecord,
		"per_page":      limit,
		"current_page":  page,
		"total_pages":   totalPages,
		"links":         links,
	}

	return pagination
}
