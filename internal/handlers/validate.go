package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
)

const (
	msgBodyNotObject = "Request body must be a JSON object."
	msgBodyTooLarge  = "Request body too large"
)

var (
	errBodyNotObject = errors.New(msgBodyNotObject)
	errBodyTooLarge  = errors.New("request body too large")
)

// checkContentType accepts a missing header; browsers posting JSON with
// fetch always send one, and curl users often do not.
func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return true
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}

// decodeObject reads the body as one JSON object and nothing else.
func decodeObject(r *http.Request) (map[string]any, error) {
	var raw any
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&raw); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errBodyTooLarge
		}
		return nil, errBodyNotObject
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, errBodyNotObject
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, errBodyNotObject
	}
	return obj, nil
}
