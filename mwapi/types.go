package mwapi

import (
	"github.com/tidwall/gjson"
)

// User holds the credentials used for the login action. A zero User starts an
// anonymous session.
type User struct {
	Name     string
	Password string
}

// NewUser returns credentials for name.
func NewUser(name, password string) User {
	return User{Name: name, Password: password}
}

// Anonymous reports whether u carries no user name.
func (u User) Anonymous() bool {
	return u.Name == ""
}

// Request is a single action API call. Params must not contain "action" or
// "format"; both are set by the client.
type Request struct {
	Action string
	Params map[string]string
}

// NewRequest returns a request for action with a copy of params.
func NewRequest(action string, params map[string]string) Request {
	cp := make(map[string]string, len(params))
	for k, v := range params {
		cp[k] = v
	}
	return Request{Action: action, Params: cp}
}

// Response is the decoded JSON body of an action API reply.
type Response struct {
	raw []byte
}

// NewResponse wraps a raw JSON body.
func NewResponse(raw []byte) Response {
	return Response{raw: raw}
}

// Raw returns the body as received.
func (r Response) Raw() []byte {
	return r.raw
}

// Get looks up a gjson path. Object iteration keeps document order, so the
// first child of "query.pages" is the first page the wiki returned.
func (r Response) Get(path string) gjson.Result {
	return gjson.GetBytes(r.raw, path)
}

// Valid reports whether the body is well-formed JSON.
func (r Response) Valid() bool {
	return gjson.ValidBytes(r.raw)
}
