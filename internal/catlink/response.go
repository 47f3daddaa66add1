package catlink

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cast"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Response is a decoded vendor API payload. A transport or decode
// failure yields an empty Response, never an error.
type Response map[string]interface{}

func (r Response) ReturnCode() int {
	return cast.ToInt(r["returnCode"])
}

func (r Response) Msg() string {
	if m := cast.ToString(r["msg"]); m != "" {
		return m
	}
	return cast.ToString(r["message"])
}

// Data returns the payload object under "data", or nil.
func (r Response) Data() map[string]interface{} {
	if d, ok := r["data"].(map[string]interface{}); ok {
		return d
	}
	return nil
}

// DataObject returns data[key] as an object, or nil.
func (r Response) DataObject(key string) map[string]interface{} {
	if d, ok := r.Data()[key].(map[string]interface{}); ok {
		return d
	}
	return nil
}

// DataList returns data[key] as a list of objects, dropping entries
// that are not objects.
func (r Response) DataList(key string) []map[string]interface{} {
	raw, ok := r.Data()[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]map[string]interface{}, 0, len(raw))
	for _, v := range raw {
		if m, ok := v.(map[string]interface{}); ok {
			out = append(out, m)
		}
	}
	return out
}

// ErrorText formats a user-facing message from a failed response:
// "msg (returnCode: N)", the message alone when the code is zero, or
// the stringified response when no message is present.
func (r Response) ErrorText() string {
	msg := r.Msg()
	code := r.ReturnCode()
	switch {
	case msg != "" && code != 0:
		return fmt.Sprintf("%s (returnCode: %d)", msg, code)
	case msg != "":
		return msg
	default:
		raw, _ := json.MarshalToString(map[string]interface{}(r))
		return raw
	}
}

func decodeResponse(body []byte) Response {
	var r Response
	if err := json.Unmarshal(body, &r); err != nil {
		return Response{}
	}
	if r == nil {
		return Response{}
	}
	return r
}
