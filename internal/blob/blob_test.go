package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amterp/forts/testutil"
)

func TestParseTarget(t *testing.T) {
	tgt, err := ParseTarget("s3://exports/forts/2025.json")
	require.NoError(t, err)
	assert.Equal(t, Target{Driver: DriverS3, Bucket: "exports", Key: "forts/2025.json"}, tgt)

	tgt, err = ParseTarget("out/forts.json")
	require.NoError(t, err)
	assert.Equal(t, DriverFS, tgt.Driver)
	assert.Equal(t, "forts.json", tgt.Key)
	assert.True(t, filepath.IsAbs(tgt.Root))

	for _, bad := range []string{"", "s3://bucket", "s3:///key"} {
		_, err := ParseTarget(bad)
		assert.Error(t, err, bad)
	}
}

func TestFSStore_PutGet(t *testing.T) {
	dir, cleanup := testutil.TempDir(t)
	defer cleanup()
	s, err := NewFSStore(filepath.Join(dir, "exports"))
	require.NoError(t, err)

	info, err := s.Put(context.Background(), "a/forts.json", []byte(`{"forts":[]}`), "application/json")
	require.NoError(t, err)
	assert.Equal(t, int64(12), info.Size)
	assert.FileExists(t, info.Location)

	// Overwrite.
	_, err = s.Put(context.Background(), "a/forts.json", []byte(`{}`), "application/json")
	require.NoError(t, err)

	rc, err := s.Get(context.Background(), "a/forts.json")
	require.NoError(t, err)
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "{}", string(data))

	entries, _ := os.ReadDir(filepath.Join(dir, "exports", "a"))
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestFSStore_RejectsEscapingKeys(t *testing.T) {
	dir, cleanup := testutil.TempDir(t)
	defer cleanup()
	s, err := NewFSStore(dir)
	require.NoError(t, err)

	_, err = s.Put(context.Background(), "../escape.json", []byte("x"), "")
	assert.Error(t, err)
}

type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
	err     error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, _ := io.ReadAll(in.Body)
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.objects[key] = data
	f.types[key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestS3Store_PutGet(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	s := newS3StoreWithClient(fake, "exports")

	info, err := s.Put(context.Background(), "forts.json", []byte("[1]"), "application/json")
	require.NoError(t, err)
	assert.Equal(t, "s3://exports/forts.json", info.Location)
	assert.Equal(t, "application/json", fake.types["exports/forts.json"])

	rc, err := s.Get(context.Background(), "forts.json")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "[1]", string(data))
}

func TestS3Store_PutError(t *testing.T) {
	s := newS3StoreWithClient(&fakeS3{err: errors.New("AccessDenied")}, "exports")

	_, err := s.Put(context.Background(), "forts.json", []byte("[]"), "")

	assert.ErrorContains(t, err, "s3://exports/forts.json")
}

func TestNewS3Store_RequiresBucket(t *testing.T) {
	_, err := NewS3Store(context.Background(), S3Config{})
	assert.Error(t, err)
}
