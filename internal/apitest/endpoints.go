package apitest

import (
	"encoding/json"
	"io/ioutil"
	"net/http"

	"github.com/golang/glog"
	"github.com/krancour/sweetshop/sdk/meta"
	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

// inboundRequest describes how one endpoint handles one request.
type inboundRequest struct {
	W                   http.ResponseWriter
	R                   *http.Request
	ReqBodySchemaLoader gojsonschema.JSONLoader
	ReqBodyObj          interface{}
	EndpointLogic       func() (interface{}, error)
	SuccessCode         int
}

func readAndValidateRequestBody(
	w http.ResponseWriter,
	r *http.Request,
	bodySchemaLoader gojsonschema.JSONLoader,
	bodyObj interface{},
) bool {
	defer r.Body.Close()
	bodyBytes, err := ioutil.ReadAll(r.Body)
	if err != nil {
		writeAPIResponse(
			w,
			http.StatusBadRequest,
			meta.NewErrBadRequest("Could not read request body."),
		)
		return false
	}
	if bodySchemaLoader != nil {
		var validationResult *gojsonschema.Result
		validationResult, err = gojsonschema.Validate(
			bodySchemaLoader,
			gojsonschema.NewBytesLoader(bodyBytes),
		)
		if err != nil {
			writeAPIResponse(
				w,
				http.StatusBadRequest,
				meta.NewErrBadRequest("Could not validate request body."),
			)
			return false
		}
		if !validationResult.Valid() {
			verrStrs := make([]string, len(validationResult.Errors()))
			for i, verr := range validationResult.Errors() {
				verrStrs[i] = verr.String()
			}
			writeAPIResponse(
				w,
				http.StatusBadRequest,
				meta.NewErrBadRequest(
					"Request body failed JSON validation",
					verrStrs...,
				),
			)
			return false
		}
	}
	if bodyObj != nil {
		if err = json.Unmarshal(bodyBytes, bodyObj); err != nil {
			glog.Error(errors.Wrap(err, "error unmarshaling request body"))
			writeAPIResponse(
				w,
				http.StatusInternalServerError,
				meta.NewErrInternalServer(),
			)
			return false
		}
	}
	return true
}

func serveRequest(req inboundRequest) {
	if req.ReqBodySchemaLoader != nil || req.ReqBodyObj != nil {
		if !readAndValidateRequestBody(
			req.W,
			req.R,
			req.ReqBodySchemaLoader,
			req.ReqBodyObj,
		) {
			return
		}
	}
	respBodyObj, err := req.EndpointLogic()
	if err != nil {
		switch e := errors.Cause(err).(type) {
		case *meta.ErrAuthentication:
			writeAPIResponse(req.W, http.StatusUnauthorized, e)
		case *meta.ErrAuthorization:
			writeAPIResponse(req.W, http.StatusForbidden, e)
		case *meta.ErrBadRequest:
			writeAPIResponse(req.W, http.StatusBadRequest, e)
		case *meta.ErrNotFound:
			writeAPIResponse(req.W, http.StatusNotFound, e)
		case *meta.ErrConflict:
			writeAPIResponse(req.W, http.StatusConflict, e)
		default:
			glog.Error(err)
			writeAPIResponse(
				req.W,
				http.StatusInternalServerError,
				meta.NewErrInternalServer(),
			)
		}
		return
	}
	writeAPIResponse(req.W, req.SuccessCode, respBodyObj)
}

func writeAPIResponse(
	w http.ResponseWriter,
	statusCode int,
	response interface{},
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	responseBody, ok := response.([]byte)
	if !ok {
		var err error
		if responseBody, err = json.Marshal(response); err != nil {
			glog.Error(errors.Wrap(err, "error marshaling response body"))
		}
	}
	if _, err := w.Write(responseBody); err != nil {
		glog.Error(errors.Wrap(err, "error writing response body"))
	}
}
