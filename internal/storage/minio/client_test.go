package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	minioLib "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/storefront-backend/internal/apperr"
)

type fakeMinio struct {
	bucketExists    bool
	bucketExistsErr error
	makeBucketErr   error
	madeBucket      bool

	putErr      error
	putKey      string
	putSize     int64
	putType     string
	putReceived []byte

	getRC  io.ReadCloser
	getErr error

	removeErr error
	removed   string

	statInfo minioLib.ObjectInfo
	statErr  error
}

func (f *fakeMinio) BucketExists(context.Context, string) (bool, error) {
	return f.bucketExists, f.bucketExistsErr
}
func (f *fakeMinio) MakeBucket(context.Context, string, minioLib.MakeBucketOptions) error {
	f.madeBucket = true
	return f.makeBucketErr
}
func (f *fakeMinio) PutObject(_ context.Context, _ string, key string, r io.Reader, size int64, opts minioLib.PutObjectOptions) (minioLib.UploadInfo, error) {
	f.putKey, f.putSize, f.putType = key, size, opts.ContentType
	f.putReceived, _ = io.ReadAll(r)
	return minioLib.UploadInfo{}, f.putErr
}
func (f *fakeMinio) GetObject(context.Context, string, string, minioLib.GetObjectOptions) (io.ReadCloser, error) {
	return f.getRC, f.getErr
}
func (f *fakeMinio) RemoveObject(_ context.Context, _ string, key string, _ minioLib.RemoveObjectOptions) error {
	f.removed = key
	return f.removeErr
}
func (f *fakeMinio) StatObject(context.Context, string, string, minioLib.StatObjectOptions) (minioLib.ObjectInfo, error) {
	return f.statInfo, f.statErr
}

func TestNewClientWithAPI(t *testing.T) {
	ctx := context.Background()

	t.Run("existing bucket", func(t *testing.T) {
		api := &fakeMinio{bucketExists: true}
		c, err := NewClientWithAPI(ctx, api, "images")
		require.NoError(t, err)
		assert.Equal(t, "images", c.bucket)
		assert.False(t, api.madeBucket)
	})

	t.Run("creates bucket", func(t *testing.T) {
		api := &fakeMinio{}
		_, err := NewClientWithAPI(ctx, api, "images")
		require.NoError(t, err)
		assert.True(t, api.madeBucket)
	})

	t.Run("make bucket fails", func(t *testing.T) {
		api := &fakeMinio{makeBucketErr: errors.New("fail")}
		c, err := NewClientWithAPI(ctx, api, "images")
		assert.Nil(t, c)
		assert.ErrorContains(t, err, "failed to ensure bucket exists")
	})
}

func TestClient_Put(t *testing.T) {
	api := &fakeMinio{}
	c := &Client{api: api, bucket: "b"}
	err := c.Put(context.Background(), "products/a.png", bytes.NewReader([]byte("data")), 4, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "products/a.png", api.putKey)
	assert.Equal(t, int64(4), api.putSize)
	assert.Equal(t, "image/png", api.putType)
	assert.Equal(t, []byte("data"), api.putReceived)

	api.putErr = errors.New("put-fail")
	err = c.Put(context.Background(), "k", bytes.NewReader(nil), 0, "image/png")
	assert.ErrorContains(t, err, "failed to upload object")
}

func TestClient_Open(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		api := &fakeMinio{
			statInfo: minioLib.ObjectInfo{ContentType: "image/png", Size: 3},
			getRC:    io.NopCloser(bytes.NewReader([]byte("abc"))),
		}
		c := &Client{api: api, bucket: "b"}
		obj, err := c.Open(ctx, "k")
		require.NoError(t, err)
		defer obj.Body.Close()
		data, _ := io.ReadAll(obj.Body)
		assert.Equal(t, []byte("abc"), data)
		assert.Equal(t, "image/png", obj.ContentType)
		assert.Equal(t, int64(3), obj.Size)
	})

	t.Run("missing key", func(t *testing.T) {
		api := &fakeMinio{statErr: minioLib.ErrorResponse{Code: "NoSuchKey"}}
		c := &Client{api: api, bucket: "b"}
		_, err := c.Open(ctx, "k")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("stat error", func(t *testing.T) {
		api := &fakeMinio{statErr: errors.New("down")}
		c := &Client{api: api, bucket: "b"}
		_, err := c.Open(ctx, "k")
		assert.ErrorContains(t, err, "failed to stat object")
	})
}

func TestClient_Delete(t *testing.T) {
	api := &fakeMinio{}
	c := &Client{api: api, bucket: "b"}
	require.NoError(t, c.Delete(context.Background(), "k"))
	assert.Equal(t, "k", api.removed)

	api.removeErr = errors.New("boom")
	assert.ErrorContains(t, c.Delete(context.Background(), "k"), "failed to delete object")
}
