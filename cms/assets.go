package cms

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rneambassadors/portal/apperr"
	"github.com/rneambassadors/portal/content"
	"github.com/rneambassadors/portal/images"
)

// Assets are immutable per updated-timestamp, so clients may cache hard; the
// ETag changes whenever the record is touched.
const assetCacheControl = "public, max-age=31536000, immutable"

func assetETag(a *content.Asset) string {
	return fmt.Sprintf("%q", fmt.Sprintf("%d", a.Updated.UTC().UnixNano()))
}

// ServeImage serves stored binary assets: /api/images/{kind}/{id} for entity
// records, /api/images/content/{key} for keyed CMS assets. Matching
// If-None-Match requests are answered 304 without touching the blob bytes.
func (s *Service) ServeImage(c *gin.Context) {
	kind := c.Param("kind")
	key := c.Param("id")

	var (
		asset *content.Asset
		err   error
	)
	switch kind {
	case "content":
		asset, err = s.Store.ContentImage(key)
	case string(content.KindAmbassadors), string(content.KindEvents), string(content.KindNews):
		asset, err = s.Store.EntityImage(content.Kind(kind), key)
	default:
		s.fail(c, apperr.New("bad_request", http.StatusBadRequest, "invalid image type"))
		return
	}
	if err != nil {
		s.fail(c, apperr.Wrap(err, apperr.ErrStore, ""))
		return
	}
	if asset == nil || len(asset.Image) == 0 {
		s.fail(c, apperr.ErrNotFound)
		return
	}

	etag := assetETag(asset)
	c.Header("Cache-Control", assetCacheControl)
	c.Header("ETag", etag)
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}

	mime := asset.ImageMimeType
	if mime == "" {
		mime = images.MimeType
	}
	c.Data(http.StatusOK, mime, asset.Image)
}

// UpdateCMSContent upserts a keyed CMS asset. Unlike entity updates, the
// image upload is required here; there is nothing else to change.
func (s *Service) UpdateCMSContent(c *gin.Context) {
	p, err := decodePayload(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	key := p.get("key")
	if key == "" {
		s.fail(c, apperr.Validation("key"))
		return
	}
	if len(p.image) == 0 {
		s.fail(c, apperr.Validation("image"))
		return
	}
	data, mime, err := images.Process(p.image, images.CMSAsset)
	if err != nil {
		s.fail(c, apperr.Wrap(err, apperr.ErrImage, ""))
		return
	}
	record, err := s.Store.UpsertContent(key, data, mime)
	if err != nil {
		s.fail(c, apperr.Wrap(err, apperr.ErrStore, ""))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "content": record})
}
