package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/recipeshare/backend/internal/service"
	"github.com/pageza/recipeshare/backend/internal/testhelpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memoryBucket struct {
	mu   sync.Mutex
	keys []string
}

func (b *memoryBucket) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.keys = append(b.keys, aws.ToString(in.Key))
	return &s3.PutObjectOutput{}, nil
}

func (b *memoryBucket) GeneratePresignedURL(_ context.Context, key string, expiration time.Duration) (string, error) {
	return "https://signed.example.com/" + key + "?expires=" + expiration.String(), nil
}

type testAPI struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	bucket *memoryBucket
}

func newTestAPI(t *testing.T) *testAPI {
	db := testhelpers.NewSQLiteDB(t)
	bucket := &memoryBucket{}
	images := service.NewImageServiceWithUploader(bucket, "test-bucket", func(key string) string {
		return "https://cdn.example.com/" + key
	}).WithPresigner(bucket)
	svc := NewServices(db, nil, images, "test-secret", time.Hour)
	return &testAPI{t: t, db: db, router: NewRouter(svc, nil), bucket: bucket}
}

func (a *testAPI) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) upload(path, token string, data []byte) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "photo.png")
	require.NoError(a.t, err)
	_, err = part.Write(data)
	require.NoError(a.t, err)
	require.NoError(a.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// register signs up username and returns its token and user id.
func (a *testAPI) register(username string) (string, string) {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":    username + "@example.com",
		"username": username,
		"password": "secret123",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token, resp.User.ID
}

func (a *testAPI) createRecipe(token, title string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/v1/recipes", token, gin.H{
		"title":        title,
		"ingredients":  []string{"flour", "water"},
		"instructions": []string{"mix", "bake"},
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.ID
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}
