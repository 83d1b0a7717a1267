package req

import (
	"testing"

	"github.com/stretchr/testify/require"

	"clubchat/internal/pkg/errs"
)

type sample struct {
	Name string `json:"name"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code int
		want string
	}{
		{name: "valid", in: `{"name":"ann"}`, want: "ann"},
		{name: "unknown fields ignored", in: `{"name":"ann","extra":1}`, want: "ann"},
		{name: "surrounding whitespace", in: " \n{\"name\":\"ann\"}\n", want: "ann"},
		{name: "empty", in: "", code: errs.ErrInvalidJSONFormat},
		{name: "malformed", in: `{"name":`, code: errs.ErrInvalidJSONFormat},
		{name: "wrong type", in: `{"name":3}`, code: errs.ErrInvalidJSONFormat},
		{name: "trailing value", in: `{"name":"ann"}{"name":"bob"}`, code: errs.ErrExtraContentInBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got sample
			customErr := DecodeJSON([]byte(tt.in), &got)

			if tt.code != 0 {
				require.NotNil(t, customErr)
				require.Equal(t, tt.code, customErr.Code)
				return
			}
			require.Nil(t, customErr)
			require.Equal(t, tt.want, got.Name)
		})
	}
}

func TestDecodePayload_MapsToInvalidParams(t *testing.T) {
	var got sample

	customErr := DecodePayload([]byte(`[1,2]`), &got)

	require.NotNil(t, customErr)
	require.Equal(t, errs.ErrInvalidParams, customErr.Code)
}
