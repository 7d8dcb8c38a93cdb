package content

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Store owns the canonical entity records. Callers get fresh reads on every
// call; nothing is cached across requests.
type Store struct {
	Db     *gorm.DB
	Logger *logrus.Logger
}

func NewStore(db *gorm.DB, logger *logrus.Logger) *Store {
	return &Store{Db: db, Logger: logger}
}

// Migrate creates or upgrades the schema for every managed table.
func (s *Store) Migrate() error {
	return s.Db.AutoMigrate(
		&Ambassador{}, &Event{}, &News{}, &Stat{}, &Country{}, &Ticker{},
		&Message{}, &CMSContent{}, &AdminUser{},
	)
}

func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// stamp assigns an id and timestamps to a record about to be inserted.
// A pre-set id or created time is kept, which lets seeds stay stable.
func stamp(id *string, created, updated *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	now := time.Now().UTC()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

// updateByID applies a partial column update. The updated timestamp always
// advances, even when fields is otherwise empty.
func (s *Store) updateByID(model any, id string, fields map[string]any) error {
	if fields == nil {
		fields = map[string]any{}
	}
	fields["updated"] = time.Now().UTC()
	return s.Db.Model(model).Where("id = ?", id).Updates(fields).Error
}

func (s *Store) deleteByID(model any, id string) (bool, error) {
	res := s.Db.Where("id = ?", id).Delete(model)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// List queries on image-bearing tables never load the blob itself; they
// select a has_image flag instead so list payloads stay small.
const ambassadorColumns = "id, slug, email, name_en, name_ru, country_en, country_ru, " +
	"role_en, role_ru, about_en, about_ru, contributions_en, contributions_ru, " +
	"image_mime_type, is_active, created, updated, image IS NOT NULL AS has_image"

const eventColumns = "id, slug, title_en, title_ru, date_day, date_month_en, date_month_ru, " +
	"time, location_en, location_ru, description_en, description_ru, " +
	"image_mime_type, created, updated, image IS NOT NULL AS has_image"

const newsColumns = "id, slug, category_en, category_ru, date, title_en, title_ru, " +
	"excerpt_en, excerpt_ru, image_mime_type, created, updated, image IS NOT NULL AS has_image"

// Ambassadors

func (s *Store) Ambassadors(activeOnly bool) ([]Ambassador, error) {
	q := s.Db.Model(&Ambassador{}).Select(ambassadorColumns)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var out []Ambassador
	return out, q.Find(&out).Error
}

func (s *Store) AmbassadorByID(id string) (*Ambassador, error) {
	var a Ambassador
	err := s.Db.Select(ambassadorColumns).Where("id = ?", id).Take(&a).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) AmbassadorBySlug(slug string) (*Ambassador, error) {
	var a Ambassador
	err := s.Db.Select(ambassadorColumns).Where("slug = ?", slug).Take(&a).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// RandomAmbassadors returns up to limit active ambassadors that have a
// portrait, in random order. Used for the home page mosaic.
func (s *Store) RandomAmbassadors(limit int) ([]Ambassador, error) {
	var out []Ambassador
	err := s.Db.Model(&Ambassador{}).
		Select("id, slug, name_en, name_ru, is_active, image_mime_type, created, updated, image IS NOT NULL AS has_image").
		Where("is_active = ? AND image IS NOT NULL", true).
		Order("RANDOM()").Limit(limit).
		Find(&out).Error
	return out, err
}

func (s *Store) ActiveAmbassadorCount() (int64, error) {
	var n int64
	err := s.Db.Model(&Ambassador{}).Where("is_active = ?", true).Count(&n).Error
	return n, err
}

func (s *Store) CreateAmbassador(a *Ambassador) error {
	stamp(&a.ID, &a.Created, &a.Updated)
	if err := s.Db.Create(a).Error; err != nil {
		return err
	}
	a.HasImage = len(a.Image) > 0
	return nil
}

func (s *Store) UpdateAmbassador(id string, fields map[string]any) (*Ambassador, error) {
	existing, err := s.AmbassadorByID(id)
	if err != nil || existing == nil {
		return nil, err
	}
	if err := s.updateByID(&Ambassador{}, id, fields); err != nil {
		return nil, err
	}
	return s.AmbassadorByID(id)
}

func (s *Store) DeleteAmbassador(id string) (bool, error) {
	return s.deleteByID(&Ambassador{}, id)
}

// Events

func (s *Store) Events() ([]Event, error) {
	var out []Event
	return out, s.Db.Model(&Event{}).Select(eventColumns).Find(&out).Error
}

func (s *Store) EventByID(id string) (*Event, error) {
	var e Event
	err := s.Db.Select(eventColumns).Where("id = ?", id).Take(&e).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) EventBySlug(slug string) (*Event, error) {
	var e Event
	err := s.Db.Select(eventColumns).Where("slug = ?", slug).Take(&e).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) CreateEvent(e *Event) error {
	stamp(&e.ID, &e.Created, &e.Updated)
	if err := s.Db.Create(e).Error; err != nil {
		return err
	}
	e.HasImage = len(e.Image) > 0
	return nil
}

func (s *Store) UpdateEvent(id string, fields map[string]any) (*Event, error) {
	existing, err := s.EventByID(id)
	if err != nil || existing == nil {
		return nil, err
	}
	if err := s.updateByID(&Event{}, id, fields); err != nil {
		return nil, err
	}
	return s.EventByID(id)
}

func (s *Store) DeleteEvent(id string) (bool, error) {
	return s.deleteByID(&Event{}, id)
}

// News

func (s *Store) News() ([]News, error) {
	var out []News
	return out, s.Db.Model(&News{}).Select(newsColumns).Find(&out).Error
}

func (s *Store) NewsByID(id string) (*News, error) {
	var n News
	err := s.Db.Select(newsColumns).Where("id = ?", id).Take(&n).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *Store) NewsBySlug(slug string) (*News, error) {
	var n News
	err := s.Db.Select(newsColumns).Where("slug = ?", slug).Take(&n).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *Store) CreateNews(n *News) error {
	stamp(&n.ID, &n.Created, &n.Updated)
	if err := s.Db.Create(n).Error; err != nil {
		return err
	}
	n.HasImage = len(n.Image) > 0
	return nil
}

func (s *Store) UpdateNews(id string, fields map[string]any) (*News, error) {
	existing, err := s.NewsByID(id)
	if err != nil || existing == nil {
		return nil, err
	}
	if err := s.updateByID(&News{}, id, fields); err != nil {
		return nil, err
	}
	return s.NewsByID(id)
}

func (s *Store) DeleteNews(id string) (bool, error) {
	return s.deleteByID(&News{}, id)
}

// Stats

func (s *Store) Stats() ([]Stat, error) {
	var out []Stat
	return out, s.Db.Order("created ASC").Find(&out).Error
}

func (s *Store) StatByID(id string) (*Stat, error) {
	var st Stat
	err := s.Db.Where("id = ?", id).Take(&st).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Store) CreateStat(st *Stat) error {
	stamp(&st.ID, &st.Created, &st.Updated)
	return s.Db.Create(st).Error
}

func (s *Store) UpdateStat(id string, fields map[string]any) (*Stat, error) {
	existing, err := s.StatByID(id)
	if err != nil || existing == nil {
		return nil, err
	}
	if err := s.updateByID(&Stat{}, id, fields); err != nil {
		return nil, err
	}
	return s.StatByID(id)
}

func (s *Store) DeleteStat(id string) (bool, error) {
	return s.deleteByID(&Stat{}, id)
}

// StatByKey looks a stat up by its natural key.
func (s *Store) StatByKey(key string) (*Stat, error) {
	var st Stat
	err := s.Db.Where("key = ?", key).Take(&st).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// EnsureStat inserts a stat unless one with the same key already exists.
// Seeding calls this on every startup.
func (s *Store) EnsureStat(st *Stat) error {
	existing, err := s.StatByKey(st.Key)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	return s.CreateStat(st)
}

// Countries

func (s *Store) Countries() ([]Country, error) {
	var out []Country
	return out, s.Db.Order("name_en ASC").Find(&out).Error
}

func (s *Store) CountryByID(id string) (*Country, error) {
	var c Country
	err := s.Db.Where("id = ?", id).Take(&c).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CountriesWithActiveAmbassadors returns every country referenced by at
// least one active ambassador, with the count of those ambassadors, ordered
// by English display name. The join key is the denormalized country_en field
// the ambassador records carry.
func (s *Store) CountriesWithActiveAmbassadors() ([]CountryWithCount, error) {
	var out []CountryWithCount
	err := s.Db.Table("countries").
		Select("countries.*, count(ambassadors.id) AS ambassador_count").
		Joins("INNER JOIN ambassadors ON ambassadors.country_en = countries.name_en").
		Where("ambassadors.is_active = ?", true).
		Group("countries.id").
		Order("countries.name_en ASC").
		Scan(&out).Error
	return out, err
}

func (s *Store) CreateCountry(c *Country) error {
	stamp(&c.ID, &c.Created, &c.Updated)
	return s.Db.Create(c).Error
}

func (s *Store) UpdateCountry(id string, fields map[string]any) (*Country, error) {
	existing, err := s.CountryByID(id)
	if err != nil || existing == nil {
		return nil, err
	}
	if err := s.updateByID(&Country{}, id, fields); err != nil {
		return nil, err
	}
	return s.CountryByID(id)
}

func (s *Store) DeleteCountry(id string) (bool, error) {
	return s.deleteByID(&Country{}, id)
}

// EnsureCountry inserts a country unless one with the same ISO code exists.
// A country without a code has no natural key and is always inserted.
func (s *Store) EnsureCountry(c *Country) error {
	if c.Code == "" {
		return s.CreateCountry(c)
	}
	var existing Country
	err := s.Db.Where("code = ?", c.Code).Take(&existing).Error
	if err == nil {
		return nil
	}
	if !notFound(err) {
		return err
	}
	return s.CreateCountry(c)
}

// Tickers

func (s *Store) Tickers(activeOnly bool) ([]Ticker, error) {
	q := s.Db.Model(&Ticker{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var out []Ticker
	return out, q.Find(&out).Error
}

func (s *Store) TickerByID(id string) (*Ticker, error) {
	var t Ticker
	err := s.Db.Where("id = ?", id).Take(&t).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) CreateTicker(t *Ticker) error {
	stamp(&t.ID, &t.Created, &t.Updated)
	return s.Db.Create(t).Error
}

func (s *Store) UpdateTicker(id string, fields map[string]any) (*Ticker, error) {
	existing, err := s.TickerByID(id)
	if err != nil || existing == nil {
		return nil, err
	}
	if err := s.updateByID(&Ticker{}, id, fields); err != nil {
		return nil, err
	}
	return s.TickerByID(id)
}

func (s *Store) DeleteTicker(id string) (bool, error) {
	return s.deleteByID(&Ticker{}, id)
}

// Messages

func (s *Store) CreateMessage(m *Message) error {
	stamp(&m.ID, &m.Created, &m.Updated)
	return s.Db.Create(m).Error
}

func (s *Store) Messages() ([]Message, error) {
	var out []Message
	return out, s.Db.Order("created DESC").Find(&out).Error
}

func (s *Store) MarkMessageRead(id string) (*Message, error) {
	var m Message
	err := s.Db.Where("id = ?", id).Take(&m).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := s.updateByID(&Message{}, id, map[string]any{"is_read": true}); err != nil {
		return nil, err
	}
	m.IsRead = true
	return &m, nil
}

func (s *Store) DeleteMessage(id string) (bool, error) {
	return s.deleteByID(&Message{}, id)
}

// CMS content

func (s *Store) ContentByKey(key string) (*CMSContent, error) {
	var c CMSContent
	err := s.Db.Where("key = ?", key).Take(&c).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpsertContent stores a processed asset under the given key, replacing any
// previous bytes.
func (s *Store) UpsertContent(key string, image []byte, mimeType string) (*CMSContent, error) {
	existing, err := s.ContentByKey(key)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		c := &CMSContent{Key: key, Image: image, ImageMimeType: mimeType}
		stamp(&c.ID, &c.Created, &c.Updated)
		if err := s.Db.Create(c).Error; err != nil {
			return nil, err
		}
		return c, nil
	}
	fields := map[string]any{"image": image, "image_mime_type": mimeType}
	if err := s.updateByID(&CMSContent{}, existing.ID, fields); err != nil {
		return nil, err
	}
	return s.ContentByKey(key)
}

// Images

// EntityImage loads the stored binary asset for an image-bearing entity.
// Returns nil when the record does not exist; a record without an asset
// comes back with empty Image bytes.
func (s *Store) EntityImage(kind Kind, id string) (*Asset, error) {
	switch kind {
	case KindAmbassadors, KindEvents, KindNews:
	default:
		return nil, nil
	}
	var a Asset
	err := s.Db.Table(string(kind)).
		Select("image, image_mime_type, updated").
		Where("id = ?", id).
		Take(&a).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ContentImage loads a CMS asset by key.
func (s *Store) ContentImage(key string) (*Asset, error) {
	var a Asset
	err := s.Db.Table("cms_content").
		Select("image, image_mime_type, updated").
		Where("key = ?", key).
		Take(&a).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Admin users

func (s *Store) AdminByUsername(username string) (*AdminUser, error) {
	var u AdminUser
	err := s.Db.Where("username = ?", username).Take(&u).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) CreateAdmin(u *AdminUser) error {
	stamp(&u.ID, &u.Created, &u.Updated)
	return s.Db.Create(u).Error
}

func (s *Store) UpdateAdminPassword(id, passwordHash string) error {
	return s.updateByID(&AdminUser{}, id, map[string]any{"password_hash": passwordHash})
}
