package request

type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Body       []byte
}

func (e *HTTPError) Error() string {
	return e.Message
}
