package cloudwriter

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	inputs []*s3.PutObjectInput
	bodies []string
	err    error
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(params.Body)
	f.inputs = append(f.inputs, params)
	f.bodies = append(f.bodies, string(body))
	return &s3.PutObjectOutput{}, nil
}

func TestS3WriterUploadsOnClose(t *testing.T) {
	client := &fakeS3{}
	w, err := NewS3WriterFactoryWithClient(client).NewWriter("maps", "runs/abc/liefernetz_karte.html")
	require.NoError(t, err)

	_, err = w.Write([]byte("<html>"))
	require.NoError(t, err)
	_, err = w.Write([]byte("</html>"))
	require.NoError(t, err)
	assert.Empty(t, client.inputs)

	require.NoError(t, w.Close())

	require.Len(t, client.inputs, 1)
	assert.Equal(t, "maps", aws.ToString(client.inputs[0].Bucket))
	assert.Equal(t, "runs/abc/liefernetz_karte.html", aws.ToString(client.inputs[0].Key))
	assert.True(t, strings.HasPrefix(aws.ToString(client.inputs[0].ContentType), "text/html"))
	assert.Equal(t, "<html></html>", client.bodies[0])
}

func TestS3WriterRequiresBucket(t *testing.T) {
	_, err := NewS3WriterFactoryWithClient(&fakeS3{}).NewWriter("", "key")
	assert.Error(t, err)
}

func TestUpload(t *testing.T) {
	client := &fakeS3{}

	err := Upload(NewS3WriterFactoryWithClient(client), "exports", "nodes.json", strings.NewReader(`{"id":"Retailer"}`))

	require.NoError(t, err)
	require.Len(t, client.bodies, 1)
	assert.Equal(t, `{"id":"Retailer"}`, client.bodies[0])
}

func TestUploadPropagatesErrors(t *testing.T) {
	client := &fakeS3{err: errors.New("access denied")}

	err := Upload(NewS3WriterFactoryWithClient(client), "exports", "nodes.json", strings.NewReader("x"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}
