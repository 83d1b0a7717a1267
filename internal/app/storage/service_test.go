package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakePresigner struct {
	keys []string
	ttl  time.Duration
	err  error
}

func (f *fakePresigner) PresignDownload(_ context.Context, key string, ttl time.Duration) (string, error) {
	f.keys = append(f.keys, key)
	f.ttl = ttl
	if f.err != nil {
		return "", f.err
	}
	return "https://bucket.test/" + key + "?sig=1", nil
}

func TestAvatarResolver_ResolvePhoto(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		want    string
		presign bool
	}{
		{name: "empty", ref: "", want: ""},
		{name: "blank", ref: "  ", want: ""},
		{name: "absolute https", ref: "https://img.test/a.png", want: "https://img.test/a.png"},
		{name: "absolute http uppercase", ref: "HTTP://img.test/a.png", want: "HTTP://img.test/a.png"},
		{name: "object key", ref: "avatars/u1.png", want: "https://bucket.test/avatars/u1.png?sig=1", presign: true},
		{name: "leading slash", ref: "/avatars/u1.png", want: "https://bucket.test/avatars/u1.png?sig=1", presign: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakePresigner{}
			r := NewAvatarResolver(p, time.Hour)

			got, err := r.ResolvePhoto(context.Background(), tt.ref)

			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			if tt.presign {
				require.Equal(t, []string{"avatars/u1.png"}, p.keys)
				require.Equal(t, time.Hour, p.ttl)
			} else {
				require.Empty(t, p.keys)
			}
		})
	}
}

func TestAvatarResolver_PassThroughWithoutPresigner(t *testing.T) {
	r := NewAvatarResolver(nil, 0)

	got, err := r.ResolvePhoto(context.Background(), "avatars/u1.png")

	require.NoError(t, err)
	require.Equal(t, "avatars/u1.png", got)
	require.Equal(t, DefaultPhotoURLTTL, r.ttl)
}

func TestAvatarResolver_PresignFailure(t *testing.T) {
	r := NewAvatarResolver(&fakePresigner{err: errors.New("signing failed")}, time.Minute)

	_, err := r.ResolvePhoto(context.Background(), "avatars/u1.png")

	require.Error(t, err)
}

func TestNewAvatarResolverFromConfig_Disabled(t *testing.T) {
	r, err := NewAvatarResolverFromConfig(context.Background(), ServiceConfig{})

	require.NoError(t, err)
	require.Nil(t, r.presigner)
}
