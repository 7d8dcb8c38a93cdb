package cms

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rneambassadors/portal/apperr"
	"github.com/rneambassadors/portal/content"
)

// Stats

func (s *Service) ListStats(c *gin.Context) {
	records, err := s.Store.Stats()
	if err != nil {
		s.fail(c, apperr.Wrap(err, apperr.ErrStore, ""))
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Service) CreateStat(c *gin.Context) {
	p, err := decodePayload(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if field, missing := p.firstMissing("key", "value", "label_en", "label_ru"); missing {
		s.fail(c, apperr.Validation(field))
		return
	}
	p.sanitize()

	if existing, err := s.Store.StatByKey(p.get("key")); err != nil {
		s.fail(c, apperr.Wrap(err, apperr.ErrStore, ""))
		return
	} else if existing != nil {
		s.fail(c, apperr.Validation("key"))
		return
	}

	record := &content.Stat{
		Key:     p.get("key"),
		Value:   p.get("value"),
		LabelEn: p.get("label_en"),
		LabelRu: p.get("label_ru"),
		Icon:    p.get("icon"),
	}
	if err := s.Store.CreateStat(record); err != nil {
		s.fail(c, apperr.Wrap(err, apperr.ErrStore, ""))
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (s *Service) UpdateStat(c *gin.Context) {
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

	updates := map[string]any{}
	p.apply(updates, "key", "key")
	p.apply(updates, "value", "value")
	p.apply(updates, "label_en", "label_en")
	p.apply(updates, "label_ru", "label_ru")
	p.apply(updates, "icon", "icon")

	record, err := s.Store.UpdateStat(id, updates)
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

func (s *Service) DeleteStat(c *gin.Context) {
	s.deleteEntity(c, s.Store.DeleteStat)
}

// Countries

// ListCountries serves the plain catalogue, or the aggregate used by the
// map page when with_ambassadors is set.
func (s *Service) ListCountries(c *gin.Context) {
	if c.Query("with_ambassadors") != "" {
		records, err := s.Store.CountriesWithActiveAmbassadors()
		if err != nil {
			s.fail(c, apperr.Wrap(err, apperr.ErrStore, ""))
			return
		}
		c.JSON(http.StatusOK, records)
		return
	}
	records, err := s.Store.Countries()
	if err != nil {
		s.fail(c, apperr.Wrap(err, apperr.ErrStore, ""))
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Service) CreateCountry(c *gin.Context) {
	p, err := decodePayload(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if field, missing := p.firstMissing("name_en", "name_ru"); missing {
		s.fail(c, apperr.Validation(field))
		return
	}
	p.sanitize()

	record := &content.Country{
		NameEn:    p.get("name_en"),
		NameRu:    p.get("name_ru"),
		Flag:      p.get("flag"),
		Code:      p.get("code"),
		Latitude:  p.get("latitude"),
		Longitude: p.get("longitude"),
	}
	if err := s.Store.CreateCountry(record); err != nil {
		s.fail(c, apperr.Wrap(err, apperr.ErrStore, ""))
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (s *Service) UpdateCountry(c *gin.Context) {
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

	updates := map[string]any{}
	p.apply(updates, "name_en", "name_en")
	p.apply(updates, "name_ru", "name_ru")
	p.apply(updates, "flag", "flag")
	p.apply(updates, "code", "code")
	p.apply(updates, "latitude", "latitude")
	p.apply(updates, "longitude", "longitude")

	record, err := s.Store.UpdateCountry(id, updates)
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

func (s *Service) DeleteCountry(c *gin.Context) {
	s.deleteEntity(c, s.Store.DeleteCountry)
}

// Tickers

func (s *Service) ListTickers(c *gin.Context) {
	records, err := s.Store.Tickers(true)
	if err != nil {
		s.fail(c, apperr.Wrap(err, apperr.ErrStore, ""))
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Service) AdminListTickers(c *gin.Context) {
	records, err := s.Store.Tickers(false)
	if err != nil {
		s.fail(c, apperr.Wrap(err, apperr.ErrStore, ""))
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Service) CreateTicker(c *gin.Context) {
	p, err := decodePayload(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if field, missing := p.firstMissing("text_en", "text_ru"); missing {
		s.fail(c, apperr.Validation(field))
		return
	}
	p.sanitize()

	record := &content.Ticker{
		TextEn:   p.get("text_en"),
		TextRu:   p.get("text_ru"),
		Icon:     p.get("icon"),
		IsActive: p.boolOr("isActive", true),
	}
	if err := s.Store.CreateTicker(record); err != nil {
		s.fail(c, apperr.Wrap(err, apperr.ErrStore, ""))
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (s *Service) UpdateTicker(c *gin.Context) {
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

	updates := map[string]any{}
	p.apply(updates, "text_en", "text_en")
	p.apply(updates, "text_ru", "text_ru")
	p.apply(updates, "icon", "icon")
	p.applyBool(updates, "isActive", "is_active")

	record, err := s.Store.UpdateTicker(id, updates)
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

func (s *Service) DeleteTicker(c *gin.Context) {
	s.deleteEntity(c, s.Store.DeleteTicker)
}
