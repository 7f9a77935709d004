package models

// Status describes the lifecycle of an asynchronous request.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

// RequestState carries the status of an asynchronous request along with its
// payload on success or its error on failure. Consumers receive Loading
// first, then exactly one of Success or Error per request.
type RequestState[T any] struct {
	Status Status
	Data   T
	Err    error
}

func Idle[T any]() RequestState[T] {
	return RequestState[T]{Status: StatusIdle}
}

func Loading[T any]() RequestState[T] {
	return RequestState[T]{Status: StatusLoading}
}

func Success[T any](data T) RequestState[T] {
	return RequestState[T]{Status: StatusSuccess, Data: data}
}

func Failure[T any](err error) RequestState[T] {
	return RequestState[T]{Status: StatusError, Err: err}
}

// IsSuccess reports whether the request settled successfully.
func (s RequestState[T]) IsSuccess() bool { return s.Status == StatusSuccess }

// IsError reports whether the request settled with an error.
func (s RequestState[T]) IsError() bool { return s.Status == StatusError }
