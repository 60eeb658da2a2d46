package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/ecotrack/waste-report-api/config"
)

var cld *cloudinary.Cloudinary

// InitCloudinary initializes the Cloudinary client used for report image
// uploads
func InitCloudinary() error {
	cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME")
	apiKey := os.Getenv("CLOUDINARY_API_KEY")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")

	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return fmt.Errorf("cloudinary environment variables are not set")
	}

	var err error
	cld, err = cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return fmt.Errorf("failed to initialize cloudinary: %w", err)
	}
	return nil
}

func boolPointer(b bool) *bool {
	return &b
}

// UploadReportImage uploads a report image and returns its secure URL.
// The API stores the returned reference only; image content is never
// interpreted here.
func UploadReportImage(file multipart.File, folder string) (string, error) {
	if cld == nil {
		if err := InitCloudinary(); err != nil {
			return "", err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	uploadResult, err := cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:         folder,
		UseFilename:    boolPointer(true),
		UniqueFilename: boolPointer(true),
		ResourceType:   "image",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload failed: %w", err)
	}
	if uploadResult.SecureURL == "" {
		return "", fmt.Errorf("empty secure URL in cloudinary response")
	}
	return uploadResult.SecureURL, nil
}

// CloudinaryHandler handles Cloudinary related requests
type CloudinaryHandler struct{}

const maxUploadBytes = 10 << 20

// UploadImageHandler accepts a multipart image and returns the secure URL of
// the stored copy. Clients attach the returned URL to report submissions.
func (c CloudinaryHandler) UploadImageHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		config.ErrorStatus("failed to parse multipart form", http.StatusBadRequest, w, err)
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		config.ErrorStatus("image file is required", http.StatusBadRequest, w, err)
		return
	}
	defer file.Close()

	folder := r.FormValue("folder")
	if folder == "" {
		folder = "reports"
	}

	url, err := UploadReportImage(file, folder)
	if err != nil {
		config.ErrorStatus("failed to upload image", http.StatusInternalServerError, w, err)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"url": url})
}

// GenerateSignature generates a signature for direct browser uploads
func (c CloudinaryHandler) GenerateSignature(w http.ResponseWriter, r *http.Request) {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	uploadPreset := os.Getenv("CLOUDINARY_UPLOAD_PRESET")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")

	h := hmac.New(sha1.New, []byte(apiSecret))
	h.Write([]byte("timestamp=" + timestamp + "&upload_preset=" + uploadPreset))
	signature := hex.EncodeToString(h.Sum(nil))

	response := map[string]string{
		"timestamp": timestamp,
		"signature": signature,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
