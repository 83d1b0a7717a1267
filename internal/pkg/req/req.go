/*
Package req decodes JSON sent by clients and maps decoding failures to business errors.
*/
package req

import (
	"bytes"
	"encoding/json"

	"clubchat/internal/pkg/errs"
)

// DecodeJSON decodes exactly one JSON value from data into dst.
// Malformed input yields ErrInvalidJSONFormat, trailing values ErrExtraContentInBody.
func DecodeJSON(data []byte, dst any) *errs.CustomError {
	if len(bytes.TrimSpace(data)) == 0 {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	decoder := json.NewDecoder(bytes.NewReader(data))

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}

// DecodePayload is DecodeJSON for an event payload, where any failure is a parameter error.
func DecodePayload(data []byte, dst any) *errs.CustomError {
	if customErr := DecodeJSON(data, dst); customErr != nil {
		return errs.NewError(errs.ErrInvalidParams)
	}
	return nil
}
