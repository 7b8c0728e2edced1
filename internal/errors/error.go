package errors

// ErrorUnauthorized is the error for unauthorized requests.
type ErrorUnauthorized struct{}

func (eu *ErrorUnauthorized) Error() string {
	return "not authorized"
}

// ErrorUnknown replaces server errors before they reach a client.
type ErrorUnknown struct{}

func (eu *ErrorUnknown) Error() string {
	return "something went wrong, please try again later"
}
