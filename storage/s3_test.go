package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestS3Key(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    string
		wantErr error
	}{
		{name: "simple key", path: "baselines/expected_login_desktop.png", want: "baselines/expected_login_desktop.png"},
		{name: "cleans redundant elements", path: "baselines//./expected_login_desktop.png", want: "baselines/expected_login_desktop.png"},
		{name: "empty path", path: "", wantErr: ErrInvalidPath},
		{name: "traversal", path: "../secrets", wantErr: ErrInvalidPath},
		{name: "absolute path", path: "/etc/passwd", wantErr: ErrInvalidPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s3Key(tt.path)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewS3Storage_Validation(t *testing.T) {
	_, err := NewS3Storage("", "us-east-1")
	assert.Error(t, err)
	_, err = NewS3Storage("bucket", "")
	assert.Error(t, err)
}
