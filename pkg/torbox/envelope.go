package torbox

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/valyala/fastjson"
)

// Envelope is the wrapper every TorBox response uses. Data is only set on success;
// Error and Detail only on failure.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Detail  string `json:"detail,omitempty"`
	Data    *T     `json:"data"`
}

var errNotEnvelope = errors.New("response is not a torbox envelope")

// isEnvelope reports whether body is a JSON object carrying a success flag.
func isEnvelope(body []byte) bool {
	v, err := fastjson.ParseBytes(body)
	if err != nil || v.Type() != fastjson.TypeObject {
		return false
	}
	s := v.Get("success")
	return s != nil && (s.Type() == fastjson.TypeTrue || s.Type() == fastjson.TypeFalse)
}

func stringField(v *fastjson.Value, key string) string {
	f := v.Get(key)
	if f == nil {
		return ""
	}
	switch f.Type() {
	case fastjson.TypeNull:
		return ""
	case fastjson.TypeString:
		return string(f.GetStringBytes())
	default:
		return string(f.MarshalTo(nil))
	}
}

func decodeEnvelope[T any](body []byte) (*Envelope[T], error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errNotEnvelope, err)
	}
	if v.Type() != fastjson.TypeObject || v.Get("success") == nil {
		return nil, errNotEnvelope
	}

	env := &Envelope[T]{
		Success: v.GetBool("success"),
		Error:   stringField(v, "error"),
		Detail:  stringField(v, "detail"),
	}
	if !env.Success {
		return env, nil
	}

	data := v.Get("data")
	if data == nil || data.Type() == fastjson.TypeNull {
		return env, nil
	}
	env.Data = new(T)
	if err := json.Unmarshal(data.MarshalTo(nil), env.Data); err != nil {
		return nil, fmt.Errorf("decoding data: %w", err)
	}
	return env, nil
}

// unwrap decodes body as an Envelope[T] and returns its data, or an *Error when the
// service reported a failure. A successful envelope without data yields (nil, nil).
func unwrap[T any](body []byte) (*T, error) {
	env, err := decodeEnvelope[T](body)
	if err != nil {
		return nil, &TransportError{Body: string(body), Err: err}
	}
	if !env.Success {
		return nil, newError(env.Error, env.Detail)
	}
	return env.Data, nil
}

// call chains a transport method with unwrap: call[T](t.get(...)).
func call[T any](body []byte, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	return unwrap[T](body)
}
