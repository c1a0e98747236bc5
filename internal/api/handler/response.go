package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/RoyceAzure/lab/laptop_store/internal/domain/model"
	"github.com/RoyceAzure/lab/laptop_store/internal/service"
	"github.com/RoyceAzure/lab/laptop_store/internal/util"
	"github.com/rs/zerolog"
)

type Response struct {
	Data interface{} `json:"data"`
}

type ResponseError struct {
	Error  string             `json:"error"`
	Fields []model.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func SuccessJSON(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, Response{Data: data})
}

func ErrorJSON(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ResponseError{Error: msg})
}

// decodeJSON 空 body 視為錯誤
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	return nil
}

// statusOf service 錯誤對應 http status
func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidShipping):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrInvalidArgument),
		errors.Is(err, service.ErrEmptySelection):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrBrandNotFound),
		errors.Is(err, service.ErrHandoffMissing):
		return http.StatusNotFound
	case errors.Is(err, service.ErrOrderNotCancellable),
		errors.Is(err, service.ErrStatusTerminal),
		errors.Is(err, service.ErrInvalidStatus):
		return http.StatusConflict
	case errors.Is(err, service.ErrNotInitialized):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteError 未知錯誤不回傳內容, 驗證錯誤附上欄位
func WriteError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		ErrorJSON(w, status, "Internal Server Error")
		return
	}
	body := ResponseError{Error: err.Error()}
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		body.Fields = verr.Fields
	}
	writeJSON(w, status, body)
}

type base struct {
	logger *zerolog.Logger
}

func newBase(logger *zerolog.Logger) base {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return base{logger: logger}
}

func (b base) fail(w http.ResponseWriter, r *http.Request, err error) {
	if statusOf(err) == http.StatusInternalServerError {
		b.logger.Error().
			Err(err).
			Str("request_id", util.GetRequestID(r.Context())).
			Str("url", r.URL.String()).
			Msg("request failed")
	}
	WriteError(w, err)
}
