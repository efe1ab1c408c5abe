package restmachinery

import "github.com/xeipuuv/gojsonschema"

// OutboundRequest represents a request to the storefront API.
type OutboundRequest struct {
	// Method is the HTTP method, e.g. GET or POST.
	Method string
	// Path is relative to the client's API address, e.g. "auth/login".
	Path string
	// QueryParams are encoded into the request URL. Empty values are omitted.
	QueryParams map[string]string
	// Headers are added after the default headers and credential.
	Headers map[string]string
	// ReqBodyObj is marshaled to JSON unless it is already a []byte.
	ReqBodyObj interface{}
	// SuccessCode, when non-zero, is the only status considered a success.
	// Otherwise any 2xx status is.
	SuccessCode int
	// RespObj, when non-nil, receives the unmarshaled response body.
	RespObj interface{}
	// RespSchemaLoader, when non-nil, validates a successful response body
	// before it is unmarshaled into RespObj.
	RespSchemaLoader gojsonschema.JSONLoader
}
