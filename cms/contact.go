package cms

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rneambassadors/portal/apperr"
	"github.com/rneambassadors/portal/content"
)

type contactRequest struct {
	Name    string `json:"name" binding:"required"`
	Contact string `json:"contact" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// SubmitContact persists the message, then forwards it to the chat bot. The
// stored row survives a webhook failure; the caller just learns forwarding
// did not happen.
func (s *Service) SubmitContact(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, apperr.Wrap(err, apperr.ErrValidation, "name, contact and message are required"))
		return
	}
	record := &content.Message{
		Name:    sanitizer.Sanitize(req.Name),
		Contact: sanitizer.Sanitize(req.Contact),
		Body:    sanitizer.Sanitize(req.Message),
	}
	if err := s.Store.CreateMessage(record); err != nil {
		s.fail(c, apperr.Wrap(err, apperr.ErrStore, ""))
		return
	}
	if err := s.Notifier.SendContact(record.Name, record.Contact, record.Body); err != nil {
		s.Logger.WithError(err).Warn("contact webhook failed")
		c.JSON(http.StatusBadGateway, apperr.Payload(apperr.Wrap(err, apperr.ErrUpstream, "")))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Service) ListMessages(c *gin.Context) {
	records, err := s.Store.Messages()
	if err != nil {
		s.fail(c, apperr.Wrap(err, apperr.ErrStore, ""))
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Service) MarkMessageRead(c *gin.Context) {
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
	record, err := s.Store.MarkMessageRead(id)
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

func (s *Service) DeleteMessage(c *gin.Context) {
	s.deleteEntity(c, s.Store.DeleteMessage)
}
