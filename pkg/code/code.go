// Package code defines the typed success/error catalog shared by services
// and handlers. Every engine-level failure is one of these values, optionally
// enriched with details; nothing is surfaced as a bare string.
package code

import (
	"fmt"
	"net/http"
)

type Code struct {
	code       int
	statusCode int
	status     bool
	Lang       lang
	data       interface{}
	haveData   bool
	details    []string
}

var codes = map[int]string{}

// NewError registers an error code. Panics on duplicates so collisions are
// caught at init time.
func NewError(code int, statusCode int, l lang) *Code {
	if _, ok := codes[code]; ok {
		panic(fmt.Sprintf("error code %d already exists, pick another one", code))
	}
	codes[code] = l.GetMessage()
	return &Code{code: code, statusCode: statusCode, status: false, Lang: l}
}

var sussCodes = map[int]string{}

// NewSuss registers a success code.
func NewSuss(code int, l lang) *Code {
	if _, ok := sussCodes[code]; ok {
		panic(fmt.Sprintf("success code %d already exists, pick another one", code))
	}
	sussCodes[code] = l.GetMessage()
	return &Code{code: code, statusCode: http.StatusOK, status: true, Lang: l}
}

// Clone returns a copy without data/details so catalog values stay immutable
// when decorated per request.
func (e *Code) Clone() *Code {
	return &Code{
		code:       e.code,
		statusCode: e.statusCode,
		status:     e.status,
		Lang:       e.Lang,
	}
}

func (e *Code) Error() string {
	return e.Msg()
}

func (e *Code) Code() int {
	return e.code
}

func (e *Code) Status() bool {
	return e.status
}

func (e *Code) Msg() string {
	return e.Lang.GetMessage()
}

func (e *Code) Details() []string {
	return e.details
}

func (e *Code) Data() interface{} {
	return e.data
}

func (e *Code) HaveDetails() bool {
	return len(e.details) > 0
}

func (e *Code) HaveData() bool {
	return e.haveData
}

// WithData attaches a payload to a cloned code value.
func (e *Code) WithData(data interface{}) *Code {
	c := e.Clone()
	c.haveData = true
	c.data = data
	return c
}

// WithDetails attaches human-readable details to a cloned code value.
func (e *Code) WithDetails(details ...string) *Code {
	c := e.Clone()
	c.haveData = e.haveData
	c.data = e.data
	c.details = append(c.details, details...)
	return c
}

// StatusCode maps the code to its HTTP status.
func (e *Code) StatusCode() int {
	if e.statusCode == 0 {
		return http.StatusOK
	}
	return e.statusCode
}

// Is allows errors.Is comparison against catalog values by code number.
func (e *Code) Is(target error) bool {
	t, ok := target.(*Code)
	return ok && t.code == e.code
}
