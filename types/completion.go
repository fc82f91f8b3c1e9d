package types

// Completion is the outcome the daemon reports for one command.
// Code 0 is success, a positive Code is an errno-style failure, and a
// negative Code is malformed.
type Completion struct {
	Code    int32  `json:"code" yaml:"code" msgpack:"code"`
	Message string `json:"message" yaml:"message" msgpack:"message"`
}

// Succeeded reports whether the completion carries code 0.
func (c Completion) Succeeded() bool { return c.Code == 0 }
