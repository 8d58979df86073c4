package media

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/inficom-solutions/portfolio-backend/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicID(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"https://res.cloudinary.com/demo/image/upload/v1712/abc123.jpg", "abc123"},
		{"http://localhost:8080/uploads/4f1c.png", "4f1c"},
		{"https://bucket.s3.amazonaws.com/portfolio/9b2e", "9b2e"},
		{"https://cdn.example.com/a/photo.final.webp", "photo"},
		{"  https://cdn.example.com/x.gif  ", "x"},
		{"/uploads/abc.png", ""},
		{"abc.png", ""},
		{"ftp://files.example.com/abc.png", ""},
		{"https://cdn.example.com/", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			assert.Equal(t, tt.want, PublicID(tt.ref))
		})
	}
}

func TestLifecycle_Upload(t *testing.T) {
	host := newFakeHost()
	lc := NewLifecycle(host, NewMemoryQueue())
	lc.newID = func() string { return "fixed-id" }

	url, err := lc.Upload(context.Background(), Upload{
		Filename:    "Team.PNG",
		ContentType: "image/png",
		Body:        strings.NewReader("png-bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/images/fixed-id.png", url)
	assert.Equal(t, []byte("png-bytes"), host.uploads["fixed-id"])
	assert.Equal(t, "fixed-id", PublicID(url))
}

func TestLifecycle_UploadFailure(t *testing.T) {
	host := newFakeHost()
	host.uploadErr = errors.New("quota exceeded")
	lc := NewLifecycle(host, NewMemoryQueue())

	_, err := lc.Upload(context.Background(), Upload{ContentType: "image/png", Body: strings.NewReader("x")})
	require.Error(t, err)
	assert.True(t, errs.IsUploadError(err))
}

func TestLifecycle_RemoveIgnoresNonRemoteRefs(t *testing.T) {
	host := newFakeHost()
	queue := NewMemoryQueue()
	lc := NewLifecycle(host, queue)

	lc.Remove(context.Background(), "")
	lc.Remove(context.Background(), "/uploads/local.png")
	lc.Remove(context.Background(), "data:image/png;base64,AAAA")

	assert.Empty(t, host.removedIDs())
	n, _ := queue.Len(context.Background())
	assert.Zero(t, n)
}

func TestLifecycle_RemoveQueuesFailures(t *testing.T) {
	ctx := context.Background()
	host := newFakeHost()
	host.failures["abc"] = 1
	queue := NewMemoryQueue()
	lc := NewLifecycle(host, queue)

	lc.Remove(ctx, "https://cdn.example.com/images/abc.jpg")
	lc.Remove(ctx, "https://cdn.example.com/images/def.jpg")

	assert.Equal(t, []string{"def"}, host.removedIDs())
	orphan, ok, err := queue.Pop(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc", orphan.ID)
	assert.Equal(t, "https://cdn.example.com/images/abc.jpg", orphan.URL)
	assert.Equal(t, 1, orphan.Attempts)
	assert.False(t, orphan.FailedAt.IsZero())
}
