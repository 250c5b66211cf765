package api

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"dating_platform/internal/domain"
	"dating_platform/internal/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UploadProfileImageHandler stores a profile image through the object-store
// boundary and saves the returned URL on the user.
func UploadProfileImageHandler(db *gorm.DB, store storage.ObjectStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		fileHeader, err := c.FormFile("image")
		if err != nil {
			respondMessage(c, http.StatusBadRequest, "Image file required")
			return
		}
		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
			respondMessage(c, http.StatusBadRequest, "Only jpg and png images are accepted")
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			respondError(c, err)
			return
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			respondError(c, err)
			return
		}

		url, err := store.Upload(c.Request.Context(), "profiles", data, ext)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := db.Model(&domain.User{}).Where("id = ?", userID).
			Update("profile_image_url", url).Error; err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, gin.H{"profile_image_url": url})
	}
}

// GetProfileHandler returns the authenticated user's own record.
func GetProfileHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var user domain.User
		if err := db.First(&user, userID).Error; err != nil {
			respondMessage(c, http.StatusNotFound, "User not found")
			return
		}
		respondOK(c, user)
	}
}
