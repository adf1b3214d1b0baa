package robot

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTableDispatch(t *testing.T) {
	var got Request
	table := Table{
		"PING": Fixed("PONG"),
		"ECHO": Handler(ParamOptional, func(req Request) (Response, error) {
			got = req
			return Reply("ECHO:" + req.Param), nil
		}),
		"NONE":   Handler(ParamNone, func(Request) (Response, error) { return Reply("OK"), nil }),
		"NEED":   Handler(ParamRequired, func(req Request) (Response, error) { return Reply(req.Param), nil }),
		"FAIL":   Handler(ParamNone, func(Request) (Response, error) { return Response{}, errors.New("BROKEN") }),
		"REJECT": Handler(ParamNone, func(Request) (Response, error) { return Response{}, errInvalidSpeedLevel }),
		"PANIC":  Handler(ParamNone, func(Request) (Response, error) { panic("BOOM") }),
		"LATER":  Handler(ParamNone, func(Request) (Response, error) { return Deferred, nil }),
	}
	testCases := []struct {
		text   string
		expect Response
	}{
		{text: "PING", expect: Reply("PONG")},
		{text: "ping", expect: Reply("PONG")},
		{text: "  Ping  \t", expect: Reply("PONG")},
		{text: "PING ME", expect: Reply("PONG")},
		{text: "echo hello", expect: Reply("ECHO:HELLO")},
		{text: "echo hello world", expect: Reply("ECHO:HELLO")},
		{text: "echo", expect: Reply("ECHO:")},
		{text: "NONE", expect: Reply("OK")},
		{text: "NONE X", expect: Reply("ERROR:UNEXPECTED_PARAMETER")},
		{text: "NEED", expect: Reply("ERROR:MISSING_PARAMETER")},
		{text: "NEED 3", expect: Reply("3")},
		{text: "FAIL", expect: Reply("ERROR:BROKEN")},
		{text: "REJECT", expect: Reply("ERROR:INVALID_SPEED_LEVEL (use 1-3)")},
		{text: "PANIC", expect: Reply("ERROR:BOOM")},
		{text: "LATER", expect: Deferred},
		{text: "JUMP", expect: Reply("ERROR:UNKNOWN_COMMAND")},
		{text: "", expect: Reply("ERROR:UNKNOWN_COMMAND")},
		{text: "   ", expect: Reply("ERROR:UNKNOWN_COMMAND")},
	}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for _, tc := range testCases {
		t.Run(tc.text, func(t *testing.T) {
			require.Equal(t, tc.expect, table.Dispatch(now, tc.text))
		})
	}

	table.Dispatch(now, "echo Mixed")
	require.Equal(t, Request{Name: "ECHO", Param: "MIXED", HasParam: true, Time: now}, got)
}

func TestCommandErrorKinds(t *testing.T) {
	var cmdErr *CommandError
	require.True(t, errors.As(error(errCollisionDetected), &cmdErr))
	require.Equal(t, SafetyError, cmdErr.Kind)
	require.Equal(t, "ERROR:COLLISION_DETECTED", ErrorText(cmdErr))

	fault := calibrationFault(errors.New("sensor stuck"))
	require.Equal(t, CalibrationFault, fault.Kind)
	require.Equal(t, "ERROR:CALIBRATION_FAILED (sensor stuck)", ErrorText(fault))
}
