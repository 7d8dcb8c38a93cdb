package cms

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rneambassadors/portal/apperr"
	"github.com/rneambassadors/portal/content"
	"github.com/rneambassadors/portal/images"
)

// Ambassadors

func (s *Service) ListAmbassadors(c *gin.Context) {
	records, err := s.Store.Ambassadors(true)
	if err != nil {
		s.fail(c, apperr.Wrap(err, apperr.ErrStore, ""))
		return
	}
	c.JSON(http.StatusOK, records)
}

// AdminListAmbassadors returns every record regardless of the active flag.
func (s *Service) AdminListAmbassadors(c *gin.Context) {
	records, err := s.Store.Ambassadors(false)
	if err != nil {
		s.fail(c, apperr.Wrap(err, apperr.ErrStore, ""))
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Service) RandomAmbassadors(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "4"))
	if err != nil || limit < 1 || limit > 50 {
		limit = 4
	}
	records, err := s.Store.RandomAmbassadors(limit)
	if err != nil {
		s.fail(c, apperr.Wrap(err, apperr.ErrStore, ""))
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Service) AmbassadorCount(c *gin.Context) {
	n, err := s.Store.ActiveAmbassadorCount()
	if err != nil {
		s.fail(c, apperr.Wrap(err, apperr.ErrStore, ""))
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

// GetAmbassador looks up by id, or by slug when the path segment carries the
// @ prefix used by public deep links.
func (s *Service) GetAmbassador(c *gin.Context) {
	key := c.Param("id")
	var (
		record *content.Ambassador
		err    error
	)
	if slug, ok := strings.CutPrefix(key, "@"); ok {
		record, err = s.Store.AmbassadorBySlug(slug)
	} else {
		record, err = s.Store.AmbassadorByID(key)
	}
	if err != nil {
		s.fail(c, apperr.Wrap(err, apperr.ErrStore, ""))
		return
	}
	if record == nil {
		s.fail(c, apperr.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Service) CreateAmbassador(c *gin.Context) {
	p, err := decodePayload(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if field, missing := p.firstMissing("name_en", "name_ru", "country_en", "country_ru", "role_en", "role_ru"); missing {
		s.fail(c, apperr.Validation(field))
		return
	}
	p.sanitize()

	slug := p.get("slug")
	if slug == "" {
		slug = content.Slugify(p.get("name_en"))
	}
	if taken, err := s.slugTaken(content.KindAmbassadors, slug, ""); err != nil {
		s.fail(c, apperr.Wrap(err, apperr.ErrStore, ""))
		return
	} else if taken {
		s.fail(c, apperr.Validation("slug"))
		return
	}

	record := &content.Ambassador{
		Slug:            slug,
		Email:           p.get("email"),
		NameEn:          p.get("name_en"),
		NameRu:          p.get("name_ru"),
		CountryEn:       p.get("country_en"),
		CountryRu:       p.get("country_ru"),
		RoleEn:          p.get("role_en"),
		RoleRu:          p.get("role_ru"),
		AboutEn:         p.get("about_en"),
		AboutRu:         p.get("about_ru"),
		ContributionsEn: p.get("contributions_en"),
		ContributionsRu: p.get("contributions_ru"),
		IsActive:        p.boolOr("isActive", true),
	}
	if len(p.image) > 0 {
		data, mime, err := images.Process(p.image, images.Portrait)
		if err != nil {
			s.fail(c, apperr.Wrap(err, apperr.ErrImage, ""))
			return
		}
		record.Image, record.ImageMimeType = data, mime
	}
	if err := s.Store.CreateAmbassador(record); err != nil {
		s.fail(c, apperr.Wrap(err, apperr.ErrStore, ""))
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (s *Service) UpdateAmbassador(c *gin.Context) {
	p, err := decodePayload(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	id := p.get("id")
	if id == "" {
		s.fail(c, apperr.Validation("id"))
		return
	}
	p.sanitize()

	if p.has("slug") {
		if p.get("slug") == "" {
			s.fail(c, apperr.Validation("slug"))
			return
		}
		if taken, err := s.slugTaken(content.KindAmbassadors, p.get("slug"), id); err != nil {
			s.fail(c, apperr.Wrap(err, apperr.ErrStore, ""))
			return
		} else if taken {
			s.fail(c, apperr.Validation("slug"))
			return
		}
	}

	updates := map[string]any{}
	p.apply(updates, "slug", "slug")
	p.apply(updates, "email", "email")
	p.apply(updates, "name_en", "name_en")
	p.apply(updates, "name_ru", "name_ru")
	p.apply(updates, "country_en", "country_en")
	p.apply(updates, "country_ru", "country_ru")
	p.apply(updates, "role_en", "role_en")
	p.apply(updates, "role_ru", "role_ru")
	p.apply(updates, "about_en", "about_en")
	p.apply(updates, "about_ru", "about_ru")
	p.apply(updates, "contributions_en", "contributions_en")
	p.apply(updates, "contributions_ru", "contributions_ru")
	p.applyBool(updates, "isActive", "is_active")
	if len(p.image) > 0 {
		data, mime, err := images.Process(p.image, images.Portrait)
		if err != nil {
			s.fail(c, apperr.Wrap(err, apperr.ErrImage, ""))
			return
		}
		updates["image"], updates["image_mime_type"] = data, mime
	}

	record, err := s.Store.UpdateAmbassador(id, updates)
	if err != nil {
		s.fail(c, apperr.Wrap(err, apperr.ErrStore, ""))
		return
	}
	if record == nil {
		s.fail(c, apperr.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Service) DeleteAmbassador(c *gin.Context) {
	s.deleteEntity(c, s.Store.DeleteAmbassador)
}

// Events

func (s *Service) ListEvents(c *gin.Context) {
	records, err := s.Store.Events()
	if err != nil {
		s.fail(c, apperr.Wrap(err, apperr.ErrStore, ""))
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Service) GetEvent(c *gin.Context) {
	key := c.Param("id")
	var (
		record *content.Event
		err    error
	)
	if slug, ok := strings.CutPrefix(key, "@"); ok {
		record, err = s.Store.EventBySlug(slug)
	} else {
		record, err = s.Store.EventByID(key)
	}
	if err != nil {
		s.fail(c, apperr.Wrap(err, apperr.ErrStore, ""))
		return
	}
	if record == nil {
		s.fail(c, apperr.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Service) CreateEvent(c *gin.Context) {
	p, err := decodePayload(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if field, missing := p.firstMissing("title_en", "title_ru", "date_day", "date_month_en", "date_month_ru", "time", "location_en", "location_ru"); missing {
		s.fail(c, apperr.Validation(field))
		return
	}
	p.sanitize()

	slug := p.get("slug")
	if slug == "" {
		slug = content.Slugify(p.get("title_en"))
	}
	if taken, err := s.slugTaken(content.KindEvents, slug, ""); err != nil {
		s.fail(c, apperr.Wrap(err, apperr.ErrStore, ""))
		return
	} else if taken {
		s.fail(c, apperr.Validation("slug"))
		return
	}

	record := &content.Event{
		Slug:          slug,
		TitleEn:       p.get("title_en"),
		TitleRu:       p.get("title_ru"),
		DateDay:       p.get("date_day"),
		DateMonthEn:   p.get("date_month_en"),
		DateMonthRu:   p.get("date_month_ru"),
		Time:          p.get("time"),
		LocationEn:    p.get("location_en"),
		LocationRu:    p.get("location_ru"),
		DescriptionEn: p.get("description_en"),
		DescriptionRu: p.get("description_ru"),
	}
	if len(p.image) > 0 {
		data, mime, err := images.Process(p.image, images.Cover)
		if err != nil {
			s.fail(c, apperr.Wrap(err, apperr.ErrImage, ""))
			return
		}
		record.Image, record.ImageMimeType = data, mime
	}
	if err := s.Store.CreateEvent(record); err != nil {
		s.fail(c, apperr.Wrap(err, apperr.ErrStore, ""))
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (s *Service) UpdateEvent(c *gin.Context) {
	p, err := decodePayload(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	id := p.get("id")
	if id == "" {
		s.fail(c, apperr.Validation("id"))
		return
	}
	p.sanitize()

	if p.has("slug") {
		if p.get("slug") == "" {
			s.fail(c, apperr.Validation("slug"))
			return
		}
		if taken, err := s.slugTaken(content.KindEvents, p.get("slug"), id); err != nil {
			s.fail(c, apperr.Wrap(err, apperr.ErrStore, ""))
			return
		} else if taken {
			s.fail(c, apperr.Validation("slug"))
			return
		}
	}

	updates := map[string]any{}
	p.apply(updates, "slug", "slug")
	p.apply(updates, "title_en", "title_en")
	p.apply(updates, "title_ru", "title_ru")
	p.apply(updates, "date_day", "date_day")
	p.apply(updates, "date_month_en", "date_month_en")
	p.apply(updates, "date_month_ru", "date_month_ru")
	p.apply(updates, "time", "time")
	p.apply(updates, "location_en", "location_en")
	p.apply(updates, "location_ru", "location_ru")
	p.apply(updates, "description_en", "description_en")
	p.apply(updates, "description_ru", "description_ru")
	if len(p.image) > 0 {
		data, mime, err := images.Process(p.image, images.Cover)
		if err != nil {
			s.fail(c, apperr.Wrap(err, apperr.ErrImage, ""))
			return
		}
		updates["image"], updates["image_mime_type"] = data, mime
	}

	record, err := s.Store.UpdateEvent(id, updates)
	if err != nil {
		s.fail(c, apperr.Wrap(err, apperr.ErrStore, ""))
		return
	}
	if record == nil {
		s.fail(c, apperr.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Service) DeleteEvent(c *gin.Context) {
	s.deleteEntity(c, s.Store.DeleteEvent)
}

// News

func (s *Service) ListNews(c *gin.Context) {
	records, err := s.Store.News()
	if err != nil {
		s.fail(c, apperr.Wrap(err, apperr.ErrStore, ""))
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Service) GetNews(c *gin.Context) {
	key := c.Param("id")
	var (
		record *content.News
		err    error
	)
	if slug, ok := strings.CutPrefix(key, "@"); ok {
		record, err = s.Store.NewsBySlug(slug)
	} else {
		record, err = s.Store.NewsByID(key)
	}
	if err != nil {
		s.fail(c, apperr.Wrap(err, apperr.ErrStore, ""))
		return
	}
	if record == nil {
		s.fail(c, apperr.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Service) CreateNews(c *gin.Context) {
	p, err := decodePayload(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if field, missing := p.firstMissing("category_en", "category_ru", "date", "title_en", "title_ru"); missing {
		s.fail(c, apperr.Validation(field))
		return
	}
	p.sanitize()

	slug := p.get("slug")
	if slug == "" {
		slug = content.Slugify(p.get("title_en"))
	}
	if taken, err := s.slugTaken(content.KindNews, slug, ""); err != nil {
		s.fail(c, apperr.Wrap(err, apperr.ErrStore, ""))
		return
	} else if taken {
		s.fail(c, apperr.Validation("slug"))
		return
	}

	record := &content.News{
		Slug:       slug,
		CategoryEn: p.get("category_en"),
		CategoryRu: p.get("category_ru"),
		Date:       p.get("date"),
		TitleEn:    p.get("title_en"),
		TitleRu:    p.get("title_ru"),
		ExcerptEn:  p.get("excerpt_en"),
		ExcerptRu:  p.get("excerpt_ru"),
	}
	if len(p.image) > 0 {
		data, mime, err := images.Process(p.image, images.Cover)
		if err != nil {
			s.fail(c, apperr.Wrap(err, apperr.ErrImage, ""))
			return
		}
		record.Image, record.ImageMimeType = data, mime
	}
	if err := s.Store.CreateNews(record); err != nil {
		s.fail(c, apperr.Wrap(err, apperr.ErrStore, ""))
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (s *Service) UpdateNews(c *gin.Context) {
	p, err := decodePayload(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	id := p.get("id")
	if id == "" {
		s.fail(c, apperr.Validation("id"))
		return
	}
	p.sanitize()

	if p.has("slug") {
		if p.get("slug") == "" {
			s.fail(c, apperr.Validation("slug"))
			return
		}
		if taken, err := s.slugTaken(content.KindNews, p.get("slug"), id); err != nil {
			s.fail(c, apperr.Wrap(err, apperr.ErrStore, ""))
			return
		} else if taken {
			s.fail(c, apperr.Validation("slug"))
			return
		}
	}

	updates := map[string]any{}
	p.apply(updates, "slug", "slug")
	p.apply(updates, "category_en", "category_en")
	p.apply(updates, "category_ru", "category_ru")
	p.apply(updates, "date", "date")
	p.apply(updates, "title_en", "title_en")
	p.apply(updates, "title_ru", "title_ru")
	p.apply(updates, "excerpt_en", "excerpt_en")
	p.apply(updates, "excerpt_ru", "excerpt_ru")
	if len(p.image) > 0 {
		data, mime, err := images.Process(p.image, images.Cover)
		if err != nil {
			s.fail(c, apperr.Wrap(err, apperr.ErrImage, ""))
			return
		}
		updates["image"], updates["image_mime_type"] = data, mime
	}

	record, err := s.Store.UpdateNews(id, updates)
	if err != nil {
		s.fail(c, apperr.Wrap(err, apperr.ErrStore, ""))
		return
	}
	if record == nil {
		s.fail(c, apperr.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Service) DeleteNews(c *gin.Context) {
	s.deleteEntity(c, s.Store.DeleteNews)
}

// deleteEntity runs the shared delete flow: an id is required, and deleting
// an unknown id reports not found.
func (s *Service) deleteEntity(c *gin.Context, del func(string) (bool, error)) {
	p, err := decodePayload(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	id := p.get("id")
	if id == "" {
		s.fail(c, apperr.Validation("id"))
		return
	}
	ok, err := del(id)
	if err != nil {
		s.fail(c, apperr.Wrap(err, apperr.ErrStore, ""))
		return
	}
	if !ok {
		s.fail(c, apperr.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// slugTaken checks slug uniqueness within an entity kind, ignoring the
// record being updated. Duplicate slugs are rejected, never auto-suffixed.
func (s *Service) slugTaken(kind content.Kind, slug, selfID string) (bool, error) {
	if slug == "" {
		return false, nil
	}
	switch kind {
	case content.KindAmbassadors:
		existing, err := s.Store.AmbassadorBySlug(slug)
		if err != nil {
			return false, err
		}
		return existing != nil && existing.ID != selfID, nil
	case content.KindEvents:
		existing, err := s.Store.EventBySlug(slug)
		if err != nil {
			return false, err
		}
		return existing != nil && existing.ID != selfID, nil
	case content.KindNews:
		existing, err := s.Store.NewsBySlug(slug)
		if err != nil {
			return false, err
		}
		return existing != nil && existing.ID != selfID, nil
	}
	return false, nil
}
