package minio

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/chargeview/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/chargeview/pkg/errors"
)

type MockMinIOAPI struct {
	mock.Mock
}

func (m *MockMinIOAPI) ListBuckets(ctx context.Context) ([]minio.BucketInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]minio.BucketInfo), args.Error(1)
}

func (m *MockMinIOAPI) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	args := m.Called(ctx, bucketName)
	return args.Bool(0), args.Error(1)
}

func (m *MockMinIOAPI) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	args := m.Called(ctx, bucketName, objectName, opts)
	return args.Get(0).(minio.ObjectInfo), args.Error(1)
}

func (m *MockMinIOAPI) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	args := m.Called(ctx, bucketName, objectName, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockMinIOAPI) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, opts)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

type ClientTestSuite struct {
	suite.Suite
	api    *MockMinIOAPI
	client *MinIOClient
}

func (s *ClientTestSuite) SetupTest() {
	s.api = new(MockMinIOAPI)
	s.client = NewMinIOClientWithAPI(s.api, &MinIOConfig{MaxObjectBytes: 1024}, logging.NewNopLogger())
}

func (s *ClientTestSuite) TearDownTest() {
	s.api.AssertExpectations(s.T())
}

func (s *ClientTestSuite) TestApplyDefaults() {
	cfg := &MinIOConfig{}
	applyDefaults(cfg)
	assert.Equal(s.T(), "us-east-1", cfg.Region)
}

func (s *ClientTestSuite) TestGetObject_Success() {
	body := "data_1TQN\n"
	s.api.On("StatObject", mock.Anything, "structures", "1tqn.cif", mock.Anything).
		Return(minio.ObjectInfo{Size: int64(len(body))}, nil)
	s.api.On("GetObject", mock.Anything, "structures", "1tqn.cif", mock.Anything).
		Return(io.NopCloser(strings.NewReader(body)), nil)

	data, err := s.client.GetObject(context.Background(), "structures", "1tqn.cif")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), body, string(data))
}

func (s *ClientTestSuite) TestGetObject_NotFound() {
	s.api.On("StatObject", mock.Anything, "structures", "missing.cif", mock.Anything).
		Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404})

	_, err := s.client.GetObject(context.Background(), "structures", "missing.cif")
	assert.True(s.T(), pkgerrors.IsNotFound(err))
}

func (s *ClientTestSuite) TestGetObject_TooLarge() {
	s.api.On("StatObject", mock.Anything, "structures", "huge.cif", mock.Anything).
		Return(minio.ObjectInfo{Size: 4096}, nil)

	_, err := s.client.GetObject(context.Background(), "structures", "huge.cif")
	assert.True(s.T(), pkgerrors.IsCode(err, pkgerrors.ErrCodeStorageError))
	s.api.AssertNotCalled(s.T(), "GetObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *ClientTestSuite) TestPutObject() {
	s.api.On("BucketExists", mock.Anything, "out").Return(true, nil)
	s.api.On("PutObject", mock.Anything, "out", "a.cif", mock.Anything, int64(3), mock.MatchedBy(func(o minio.PutObjectOptions) bool {
		return o.ContentType == "chemical/x-mmcif"
	})).Return(minio.UploadInfo{Size: 3}, nil)

	assert.NoError(s.T(), s.client.PutObject(context.Background(), "out", "a.cif", []byte("abc"), "chemical/x-mmcif"))
}

func (s *ClientTestSuite) TestPutObject_MissingBucket() {
	s.api.On("BucketExists", mock.Anything, "nope").Return(false, nil)
	err := s.client.PutObject(context.Background(), "nope", "a.cif", []byte("abc"), "")
	assert.True(s.T(), pkgerrors.IsNotFound(err))
}

func (s *ClientTestSuite) TestClosed() {
	require.NoError(s.T(), s.client.Close())
	_, err := s.client.GetObject(context.Background(), "b", "k")
	assert.Equal(s.T(), ErrMinIOClientClosed, err)
}

func (s *ClientTestSuite) TestHealthCheck() {
	s.api.On("ListBuckets", mock.Anything).Return([]minio.BucketInfo{{Name: "structures"}}, nil).Once()
	status, err := s.client.HealthCheck(context.Background())
	require.NoError(s.T(), err)
	assert.True(s.T(), status.Healthy)

	s.api.On("ListBuckets", mock.Anything).Return(nil, errors.New("down")).Once()
	status, err = s.client.HealthCheck(context.Background())
	assert.Error(s.T(), err)
	assert.False(s.T(), status.Healthy)
	assert.Equal(s.T(), "down", status.Error)
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

//Personal.AI order the ending
