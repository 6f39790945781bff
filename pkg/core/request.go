package core

import (
	"maps"
	"net/url"
)

// Params carries caller supplied order or query fields.
type Params map[string]any

// Request is a single upstream call. Body is either url.Values (form
// encoded) or any JSON-serializable value; Payload holds the exact bytes
// that will be sent once the transport has encoded it.
type Request struct {
	Method  string            `json:"method"`
	Path    string            `json:"path"`
	Query   url.Values        `json:"query,omitempty"`
	Body    any               `json:"body,omitempty"`
	Payload []byte            `json:"-"`
	Headers map[string]string `json:"headers,omitempty"`
}

func NewRequest(method, path string) *Request {
	return &Request{
		Method:  method,
		Path:    path,
		Query:   make(url.Values),
		Headers: make(map[string]string),
	}
}

func (r *Request) SetQuery(key, value string) *Request {
	if r.Query == nil {
		r.Query = make(url.Values)
	}
	r.Query.Set(key, value)
	return r
}

func (r *Request) SetQueryParams(params url.Values) *Request {
	if r.Query == nil {
		r.Query = make(url.Values)
	}
	maps.Copy(r.Query, params)
	return r
}

func (r *Request) SetBody(body any) *Request {
	r.Body = body
	return r
}

func (r *Request) SetHeader(key, value string) *Request {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[key] = value
	return r
}

// RequestPath is the path plus encoded query, as signed by Coinbase.
func (r *Request) RequestPath() string {
	if len(r.Query) == 0 {
		return r.Path
	}
	return r.Path + "?" + r.Query.Encode()
}

// Clone returns a deep copy so paginators can derive the next request
// without touching the previous one.
func (r *Request) Clone() *Request {
	c := &Request{
		Method:  r.Method,
		Path:    r.Path,
		Query:   make(url.Values, len(r.Query)),
		Headers: maps.Clone(r.Headers),
	}
	for k, v := range r.Query {
		c.Query[k] = append([]string(nil), v...)
	}
	switch b := r.Body.(type) {
	case url.Values:
		form := make(url.Values, len(b))
		for k, v := range b {
			form[k] = append([]string(nil), v...)
		}
		c.Body = form
	default:
		c.Body = b
	}
	if c.Headers == nil {
		c.Headers = make(map[string]string)
	}
	return c
}

// String returns the param as a string, or "" if absent.
func (p Params) String(key string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	}
	return toString(v)
}
