package errors

import "fmt"

func ConnectionErr(op string, err error) error {
	return E(Connection, op, err)
}

func TransientReadErr(msg string, err error) error {
	return E(TransientRead, msg, err)
}

func PublishErr(topic string, err error) error {
	return E(Publish, fmt.Sprintf("publish to %s failed", topic), err)
}

func EmptyParamErr(field string) error {
	ve := ValidationErrs()
	ve.Add(field, "cannot be empty")
	return ve.Err()
}

// GracePeriodErr is returned when a component did not stop within its grace period.
func GracePeriodErr(component string, grace fmt.Stringer) error {
	return E(Timeout, fmt.Sprintf("%s did not stop within %s", component, grace), nil)
}
