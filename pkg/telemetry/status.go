// Package telemetry decodes the robot's STATUS lines into structured
// telemetry and encodes it for transport.
package telemetry

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/golang/protobuf/proto"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Line prefixes.
const (
	RobotPrefix  = "Robot: "
	AutoPrefix   = "AUTO:"
	StatusPrefix = "STATUS:"
)

// Field is one key:value pair of a STATUS line.
type Field struct {
	Key   string
	Value string
}

// Status is a decoded STATUS line.
type Status struct {
	// Auto indicates a periodic report rather than a STATUS reply.
	Auto   bool
	Fields []Field
}

// ParseStatus decodes a STATUS line, which may carry the bridge's robot
// prefix and the AUTO: prefix. It returns false for any other line.
func ParseStatus(line string) (*Status, bool) {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, RobotPrefix)
	s := &Status{}
	if strings.HasPrefix(line, AutoPrefix) {
		s.Auto = true
		line = line[len(AutoPrefix):]
	}
	if !strings.HasPrefix(line, StatusPrefix) {
		return nil, false
	}
	for n, item := range strings.Split(line, ",") {
		pos := strings.IndexByte(item, ':')
		if pos <= 0 {
			if n == 0 {
				return nil, false
			}
			continue
		}
		s.Fields = append(s.Fields, Field{Key: item[:pos], Value: item[pos+1:]})
	}
	return s, true
}

// Get returns the value of key.
func (s *Status) Get(key string) (string, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Struct converts the status to a protobuf Struct. Keys are lower-cased;
// booleans and numbers are typed, and the percent sign of BATTERY dropped.
func (s *Status) Struct() (*structpb.Struct, error) {
	fields := map[string]interface{}{"auto": s.Auto}
	for _, f := range s.Fields {
		fields[strings.ToLower(f.Key)] = typedValue(f.Value)
	}
	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("telemetry struct: %w", err)
	}
	return st, nil
}

func typedValue(val string) interface{} {
	switch val {
	case "true", "True":
		return true
	case "false", "False":
		return false
	}
	if n, err := strconv.ParseFloat(strings.TrimSuffix(val, "%"), 64); err == nil {
		return n
	}
	return val
}

// Marshal encodes the status as a protobuf Struct.
func (s *Status) Marshal() ([]byte, error) {
	st, err := s.Struct()
	if err != nil {
		return nil, err
	}
	return proto.Marshal(st)
}

// Unmarshal decodes a payload produced by Status.Marshal.
func Unmarshal(data []byte) (*structpb.Struct, error) {
	st := &structpb.Struct{}
	if err := proto.Unmarshal(data, st); err != nil {
		return nil, err
	}
	return st, nil
}

// JSON renders decoded telemetry as JSON.
func JSON(st *structpb.Struct) ([]byte, error) {
	return protojson.Marshal(st)
}
