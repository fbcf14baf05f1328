package s3

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*manager.UploadOutput), args.Error(1)
}

func TestImageStore_Upload(t *testing.T) {
	up := new(MockUploader)
	up.On("Upload", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Bucket) == "shop" &&
			aws.ToString(in.Key) == "products/1/a.png" &&
			aws.ToString(in.ContentType) == "image/png"
	})).Return(&manager.UploadOutput{Location: "https://shop.s3.amazonaws.com/products/1/a.png"}, nil)

	url, err := NewImageStore(up, "shop").Upload(context.Background(), "products/1/a.png", "image/png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, "https://shop.s3.amazonaws.com/products/1/a.png", url)
	up.AssertExpectations(t)
}

func TestImageStore_UploadError(t *testing.T) {
	up := new(MockUploader)
	up.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	_, err := NewImageStore(up, "shop").Upload(context.Background(), "k", "image/png", strings.NewReader(""))
	assert.ErrorContains(t, err, "access denied")
}
