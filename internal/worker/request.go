package worker

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/aescanero/dago-hbs-renderer/internal/value"
)

// ErrInvalidRequest marks render requests that can never succeed
var ErrInvalidRequest = errors.New("invalid render request")

// ErrRenderPanic marks renders aborted by a panic in a helper
var ErrRenderPanic = errors.New("render panicked")

// RenderRequest is a render job read from the request stream
type RenderRequest struct {
	ID       string
	Template string
	Context  value.Value
	Partials map[string]string
	NoEscape bool
}

// parseRenderRequest parses the JSON document in the message's data field.
//
// The context is either a JSON value under "context" or a YAML document
// under "context_yaml". Object keys keep their document order.
func parseRenderRequest(values map[string]interface{}) (*RenderRequest, error) {
	data, ok := values["data"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: missing or invalid 'data' field", ErrInvalidRequest)
	}
	if !gjson.Valid(data) {
		return nil, fmt.Errorf("%w: 'data' is not valid json", ErrInvalidRequest)
	}

	doc := gjson.Parse(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: 'data' must be a json object", ErrInvalidRequest)
	}

	req := &RenderRequest{
		ID:      doc.Get("id").String(),
		Context: value.Undefined(),
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	tmpl := doc.Get("template")
	if tmpl.Type != gjson.String {
		return req, fmt.Errorf("%w: 'template' must be a string", ErrInvalidRequest)
	}
	req.Template = tmpl.Str

	ctxJSON, ctxYAML := doc.Get("context"), doc.Get("context_yaml")
	switch {
	case ctxJSON.Exists() && ctxYAML.Exists():
		return req, fmt.Errorf("%w: 'context' and 'context_yaml' are exclusive", ErrInvalidRequest)
	case ctxJSON.Exists():
		v, err := value.FromJSONString(ctxJSON.Raw)
		if err != nil {
			return req, fmt.Errorf("%w: failed to decode context: %v", ErrInvalidRequest, err)
		}
		req.Context = v
	case ctxYAML.Exists():
		if ctxYAML.Type != gjson.String {
			return req, fmt.Errorf("%w: 'context_yaml' must be a string", ErrInvalidRequest)
		}
		v, err := value.FromYAML([]byte(ctxYAML.Str))
		if err != nil {
			return req, fmt.Errorf("%w: failed to decode context_yaml: %v", ErrInvalidRequest, err)
		}
		req.Context = v
	}

	if p := doc.Get("partials"); p.Exists() {
		if !p.IsObject() {
			return req, fmt.Errorf("%w: 'partials' must be an object", ErrInvalidRequest)
		}
		req.Partials = make(map[string]string)
		var perr error
		p.ForEach(func(name, text gjson.Result) bool {
			if text.Type != gjson.String {
				perr = fmt.Errorf("%w: partial %q must be a string", ErrInvalidRequest, name.String())
				return false
			}
			req.Partials[name.String()] = text.Str
			return true
		})
		if perr != nil {
			return req, perr
		}
	}

	req.NoEscape = doc.Get("no_escape").Bool()
	return req, nil
}
