package robot

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang/glog"
)

// ParamKind tells how many parameters a handler takes.
type ParamKind int

// Parameter kinds.
const (
	ParamNone ParamKind = iota
	ParamOptional
	ParamRequired
)

// Request is a parsed command frame.
type Request struct {
	// Name is the upper-cased command name.
	Name string
	// Param is the upper-cased parameter, if HasParam.
	Param    string
	HasParam bool
	Time     time.Time
}

// Response is the reply to a command.
type Response struct {
	Text string
	// Deferred means the reply is written later, when the command completes.
	Deferred bool
}

// Reply makes an immediate Response.
func Reply(text string) Response {
	return Response{Text: text}
}

// Deferred is the Response of a command completing later.
var Deferred = Response{Deferred: true}

// HandlerFunc handles a command.
type HandlerFunc func(Request) (Response, error)

// Entry is either a fixed response or a handler.
type Entry struct {
	Fixed   string
	Param   ParamKind
	Handler HandlerFunc
}

// Fixed makes an Entry answering text regardless of parameters.
func Fixed(text string) Entry {
	return Entry{Fixed: text}
}

// Handler makes an Entry invoking fn.
func Handler(param ParamKind, fn HandlerFunc) Entry {
	return Entry{Param: param, Handler: fn}
}

// Table maps command names to entries. It is built once and not modified.
type Table map[string]Entry

// ParseRequest splits a frame into name and parameter. Tokens after the
// parameter are ignored.
func ParseRequest(now time.Time, text string) Request {
	fields := strings.Fields(strings.ToUpper(strings.TrimSpace(text)))
	req := Request{Time: now}
	if len(fields) > 0 {
		req.Name = fields[0]
	}
	if len(fields) > 1 {
		req.Param, req.HasParam = fields[1], true
	}
	return req
}

// Dispatch handles a command frame and returns the response. Handler
// errors and panics become ERROR: responses.
func (t Table) Dispatch(now time.Time, text string) (resp Response) {
	req := ParseRequest(now, text)
	entry, ok := t[req.Name]
	if !ok {
		return Reply(ErrorText(errUnknownCommand))
	}
	if entry.Handler == nil {
		return Reply(entry.Fixed)
	}
	switch {
	case entry.Param == ParamNone && req.HasParam:
		return Reply(ErrorText(errUnexpectedParameter))
	case entry.Param == ParamRequired && !req.HasParam:
		return Reply(ErrorText(errMissingParameter))
	}

	defer func() {
		if r := recover(); r != nil {
			glog.Warningf("command %s panic: %v", req.Name, r)
			resp = Reply(fmt.Sprintf("ERROR:%v", r))
		}
	}()
	resp, err := entry.Handler(req)
	if err != nil {
		glog.V(2).Infof("command %s: %v", req.Name, err)
		return Reply(ErrorText(err))
	}
	return resp
}
