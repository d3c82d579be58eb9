package media

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/socialnet/config"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func pngDataURI() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngHeader)
}

func TestDecodeImage(t *testing.T) {
	img, err := DecodeImage(pngDataURI(), 0)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, ".png", img.Extension)

	_, err = DecodeImage(base64.StdEncoding.EncodeToString([]byte("just some text")), 0)
	assert.ErrorIs(t, err, ErrNotImage)

	_, err = DecodeImage("data:image/png,rawbytes", 0)
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = DecodeImage("%%%", 0)
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = DecodeImage(pngDataURI(), 4)
	assert.ErrorIs(t, err, ErrTooLarge)
}

type fakeObjects struct {
	mu      sync.Mutex
	puts    map[string]string
	deletes []string
	failPut bool
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPut {
		return nil, errors.New("boom")
	}
	if f.puts == nil {
		f.puts = map[string]string{}
	}
	f.puts[*in.Key] = *in.ContentType
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Relay_UploadAndDelete(t *testing.T) {
	objs := &fakeObjects{}
	relay := NewS3Relay(objs, config.MediaConfig{
		Endpoint: "http://minio:9000", Bucket: "media", MaxBytes: 1 << 20,
	})
	ctx := context.Background()

	url, err := relay.Upload(ctx, "posts", pngDataURI())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "http://minio:9000/media/posts/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	key := strings.TrimPrefix(url, "http://minio:9000/media/")
	assert.Equal(t, "image/png", objs.puts[key])

	require.NoError(t, relay.Delete(ctx, url))
	require.NoError(t, relay.Delete(ctx, "https://elsewhere.example/x.png"))
	assert.Equal(t, []string{key}, objs.deletes)

	objs.failPut = true
	_, err = relay.Upload(ctx, "posts", pngDataURI())
	assert.Error(t, err)
}

type recordingRelay struct {
	mu      sync.Mutex
	deleted []string
}

func (r *recordingRelay) Upload(context.Context, string, string) (string, error) { return "", nil }

func (r *recordingRelay) Delete(_ context.Context, url string) error {
	time.Sleep(time.Millisecond)
	r.mu.Lock()
	r.deleted = append(r.deleted, url)
	r.mu.Unlock()
	return nil
}

func TestJanitor_StopDrainsQueue(t *testing.T) {
	relay := &recordingRelay{}
	j := NewJanitor(relay, 100)
	stop := j.Start(2)

	for _, u := range []string{"a", "b", "", "c", "d"} {
		j.Enqueue(u)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, stop(ctx))
	require.NoError(t, stop(ctx), "stop is idempotent")

	assert.ElementsMatch(t, []string{"a", "b", "c", "d"}, relay.deleted)
	assert.Zero(t, j.QueueLen())
}

func TestDisabledRelay(t *testing.T) {
	_, err := Disabled().Upload(context.Background(), "posts", pngDataURI())
	assert.ErrorIs(t, err, ErrDisabled)
	assert.NoError(t, Disabled().Delete(context.Background(), "x"))
}
