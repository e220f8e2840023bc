package domain

import "errors"

func errorsAs(err error, target interface{}) bool {
	return err != nil && errors.As(err, target)
}
