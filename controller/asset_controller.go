package controller

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	model "github.com/Itish41/Poligap/models"
	"github.com/Itish41/Poligap/repository"
	service "github.com/Itish41/Poligap/service"

	"github.com/gin-gonic/gin"
)

// AssetLibrary is the asset workflow the routes expose.
type AssetLibrary interface {
	Upload(ctx context.Context, up service.AssetUpload) (*model.Asset, error)
	CreateAsset(ctx context.Context, in service.AssetInput) (*model.Asset, error)
	ListAssets(ctx context.Context, f repository.AssetFilter) ([]model.Asset, error)
	DeleteAsset(ctx context.Context, id string) error
	UpdateTags(ctx context.Context, upd service.TagUpdate) (*model.Asset, error)
}

type AssetController struct {
	service AssetLibrary
}

func NewAssetController(svc AssetLibrary) *AssetController {
	return &AssetController{service: svc}
}

func (ac *AssetController) GetAssets(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	assets, err := ac.service.ListAssets(c.Request.Context(), repository.AssetFilter{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Tag:      c.Query("tag"),
		Limit:    limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "assets": assets, "total": len(assets)})
}

func (ac *AssetController) CreateAsset(c *gin.Context) {
	var in service.AssetInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	asset, err := ac.service.CreateAsset(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "asset": asset})
}

// UploadAsset handles the multipart upload (file, category, tags).
func (ac *AssetController) UploadAsset(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File is too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
		return
	}

	var tags []string
	for _, raw := range c.PostFormArray("tags") {
		tags = append(tags, strings.Split(raw, ",")...)
	}
	asset, err := ac.service.Upload(c.Request.Context(), service.AssetUpload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
		Category:    c.PostForm("category"),
		Tags:        tags,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "asset": asset})
}

// DeleteAsset handles DELETE /api/assets?id=<id>.
func (ac *AssetController) DeleteAsset(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Asset id is required"})
		return
	}
	if err := ac.service.DeleteAsset(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (ac *AssetController) UpdateTags(c *gin.Context) {
	var upd service.TagUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	asset, err := ac.service.UpdateTags(c.Request.Context(), upd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "asset": asset})
}
