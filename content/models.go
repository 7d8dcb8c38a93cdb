// Package content holds the managed entity models and their gorm-backed store.
package content

import "time"

// Kind names one of the managed content types. The values double as table
// names and as the {type} segment of the public image endpoint.
type Kind string

const (
	KindAmbassadors Kind = "ambassadors"
	KindEvents      Kind = "events"
	KindNews        Kind = "news"
	KindStats       Kind = "stats"
	KindCountries   Kind = "countries"
	KindTickers     Kind = "tickers"
)

type Ambassador struct {
	ID              string    `json:"id" gorm:"primaryKey"`
	Slug            string    `json:"slug" gorm:"uniqueIndex"`
	Email           string    `json:"email,omitempty"`
	NameEn          string    `json:"name_en" gorm:"not null"`
	NameRu          string    `json:"name_ru" gorm:"not null"`
	CountryEn       string    `json:"country_en" gorm:"not null"`
	CountryRu       string    `json:"country_ru" gorm:"not null"`
	RoleEn          string    `json:"role_en" gorm:"not null"`
	RoleRu          string    `json:"role_ru" gorm:"not null"`
	AboutEn         string    `json:"about_en,omitempty"`
	AboutRu         string    `json:"about_ru,omitempty"`
	ContributionsEn string    `json:"contributions_en,omitempty"`
	ContributionsRu string    `json:"contributions_ru,omitempty"`
	Image           []byte    `json:"-"`
	ImageMimeType   string    `json:"image_mime_type,omitempty"`
	IsActive        bool      `json:"isActive" gorm:"column:is_active"`
	HasImage        bool      `json:"hasImage" gorm:"->;-:migration"`
	Created         time.Time `json:"created"`
	Updated         time.Time `json:"updated"`
}

type Event struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	Slug          string    `json:"slug" gorm:"uniqueIndex"`
	TitleEn       string    `json:"title_en" gorm:"not null"`
	TitleRu       string    `json:"title_ru" gorm:"not null"`
	DateDay       string    `json:"date_day" gorm:"not null"`
	DateMonthEn   string    `json:"date_month_en" gorm:"not null"`
	DateMonthRu   string    `json:"date_month_ru" gorm:"not null"`
	Time          string    `json:"time" gorm:"not null"`
	LocationEn    string    `json:"location_en" gorm:"not null"`
	LocationRu    string    `json:"location_ru" gorm:"not null"`
	DescriptionEn string    `json:"description_en,omitempty"`
	DescriptionRu string    `json:"description_ru,omitempty"`
	Image         []byte    `json:"-"`
	ImageMimeType string    `json:"image_mime_type,omitempty"`
	HasImage      bool      `json:"hasImage" gorm:"->;-:migration"`
	Created       time.Time `json:"created"`
	Updated       time.Time `json:"updated"`
}

type News struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	Slug          string    `json:"slug" gorm:"uniqueIndex"`
	CategoryEn    string    `json:"category_en" gorm:"not null"`
	CategoryRu    string    `json:"category_ru" gorm:"not null"`
	Date          string    `json:"date" gorm:"not null"`
	TitleEn       string    `json:"title_en" gorm:"not null"`
	TitleRu       string    `json:"title_ru" gorm:"not null"`
	ExcerptEn     string    `json:"excerpt_en,omitempty"`
	ExcerptRu     string    `json:"excerpt_ru,omitempty"`
	Image         []byte    `json:"-"`
	ImageMimeType string    `json:"image_mime_type,omitempty"`
	HasImage      bool      `json:"hasImage" gorm:"->;-:migration"`
	Created       time.Time `json:"created"`
	Updated       time.Time `json:"updated"`
}

func (News) TableName() string { return "news" }

type Stat struct {
	ID      string    `json:"id" gorm:"primaryKey"`
	Key     string    `json:"key" gorm:"uniqueIndex;not null"`
	Value   string    `json:"value" gorm:"not null"`
	LabelEn string    `json:"label_en" gorm:"not null"`
	LabelRu string    `json:"label_ru" gorm:"not null"`
	Icon    string    `json:"icon,omitempty"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

type Country struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	NameEn    string    `json:"name_en" gorm:"not null"`
	NameRu    string    `json:"name_ru" gorm:"not null"`
	Flag      string    `json:"flag,omitempty"`
	Code      string    `json:"code,omitempty"`
	Latitude  string    `json:"latitude,omitempty"`
	Longitude string    `json:"longitude,omitempty"`
	Created   time.Time `json:"created"`
	Updated   time.Time `json:"updated"`
}

// CountryWithCount is the aggregate row for the map page: each country that
// has at least one active ambassador, with the count of those ambassadors.
type CountryWithCount struct {
	Country         `gorm:"embedded"`
	AmbassadorCount int `json:"ambassador_count"`
}

type Ticker struct {
	ID       string    `json:"id" gorm:"primaryKey"`
	TextEn   string    `json:"text_en" gorm:"not null"`
	TextRu   string    `json:"text_ru" gorm:"not null"`
	Icon     string    `json:"icon,omitempty"`
	IsActive bool      `json:"isActive" gorm:"column:is_active"`
	Created  time.Time `json:"created"`
	Updated  time.Time `json:"updated"`
}

// Message is a contact-form submission. It is persisted before the chat
// webhook is called so a webhook outage never loses the message.
type Message struct {
	ID      string    `json:"id" gorm:"primaryKey"`
	Name    string    `json:"name" gorm:"not null"`
	Contact string    `json:"contact" gorm:"not null"`
	Body    string    `json:"message" gorm:"column:message;not null"`
	IsRead  bool      `json:"is_read" gorm:"column:is_read"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

// CMSContent is a keyed binary asset (hero images and similar page furniture)
// managed from the admin dashboard.
type CMSContent struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	Key           string    `json:"key" gorm:"uniqueIndex;not null"`
	Image         []byte    `json:"-"`
	ImageMimeType string    `json:"image_mime_type,omitempty"`
	Created       time.Time `json:"created"`
	Updated       time.Time `json:"updated"`
}

func (CMSContent) TableName() string { return "cms_content" }

// AdminUser is the single administrative principal. PasswordHash is an
// argon2id encoded hash, never the plaintext credential.
type AdminUser struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Created      time.Time `json:"created"`
	Updated      time.Time `json:"updated"`
}

// Asset is a stored binary image plus the metadata needed to serve it.
type Asset struct {
	Image         []byte
	ImageMimeType string
	Updated       time.Time
}
