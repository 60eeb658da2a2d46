package handlers_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ecotrack/waste-report-api/api/handlers"
	"github.com/ecotrack/waste-report-api/models"
)

func TestCloudinary_UploadImageHandlerMissingFile(t *testing.T) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	_ = mw.WriteField("folder", "reports")
	mw.Close()

	req, err := http.NewRequest("POST", "/api/v1/upload", body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer abc123")

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(handlers.CloudinaryHandler{}.UploadImageHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}

	testResp := models.ErrorMessageResponse{}
	_ = json.Unmarshal(rr.Body.Bytes(), &testResp)

	assert.Equal(t, "image file is required", testResp.Response.Message)
}

func TestCloudinary_UploadImageHandlerBadForm(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/upload", bytes.NewBufferString("not a multipart body"))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer abc123")

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(handlers.CloudinaryHandler{}.UploadImageHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}

	testResp := models.ErrorMessageResponse{}
	_ = json.Unmarshal(rr.Body.Bytes(), &testResp)

	assert.Equal(t, "failed to parse multipart form", testResp.Response.Message)
}
