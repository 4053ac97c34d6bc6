package handler

import "github.com/aaronshaf/churches-sub000/internal/models"

// loginRequest — тело запроса входа (форма или JSON).
type loginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// refreshRequest — тело запроса обновления токенов.
type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// feedbackRequest — тело формы отзыва посетителя.
type feedbackRequest struct {
	ChurchID *int64 `form:"church_id" json:"church_id"`
	Content  string `form:"content" json:"content" binding:"required"`
	// Honeypot: заполняется только ботами
	Website string `form:"website" json:"-"`
}

// churchRequest — тело создания/обновления церкви в админке.
type churchRequest struct {
	Name             string              `json:"name" binding:"required"`
	Path             *string             `json:"path"`
	Status           models.ChurchStatus `json:"status" binding:"required"`
	CountyID         *int64              `json:"county_id"`
	GatheringAddress *string             `json:"gathering_address"`
	MailingAddress   *string             `json:"mailing_address"`
	Latitude         *float64            `json:"latitude"`
	Longitude        *float64            `json:"longitude"`
	Website          *string             `json:"website"`
	Phone            *string             `json:"phone"`
	Email            *string             `json:"email"`
	Facebook         *string             `json:"facebook"`
	Instagram        *string             `json:"instagram"`
	YouTube          *string             `json:"youtube"`
	Language         string              `json:"language"`
	PublicNotes      *string             `json:"public_notes"`
	PrivateNotes     *string             `json:"private_notes"`
	Gatherings       []gatheringRequest  `json:"gatherings"`
	AffiliationIDs   []int64             `json:"affiliation_ids"`
}

type gatheringRequest struct {
	Time  string  `json:"time" binding:"required"`
	Notes *string `json:"notes"`
}

// toModel собирает доменную модель церкви из запроса.
func (r *churchRequest) toModel(id int64) *models.Church {
	language := r.Language
	if language == "" {
		language = "English"
	}
	church := &models.Church{
		ID:               id,
		Name:             r.Name,
		Path:             r.Path,
		Status:           r.Status,
		CountyID:         r.CountyID,
		GatheringAddress: r.GatheringAddress,
		MailingAddress:   r.MailingAddress,
		Latitude:         r.Latitude,
		Longitude:        r.Longitude,
		Website:          r.Website,
		Phone:            r.Phone,
		Email:            r.Email,
		Facebook:         r.Facebook,
		Instagram:        r.Instagram,
		YouTube:          r.YouTube,
		Language:         language,
		PublicNotes:      r.PublicNotes,
		PrivateNotes:     r.PrivateNotes,
	}
	for _, g := range r.Gatherings {
		church.Gatherings = append(church.Gatherings, models.Gathering{Time: g.Time, Notes: g.Notes})
	}
	for _, affiliationID := range r.AffiliationIDs {
		church.Affiliations = append(church.Affiliations, models.Affiliation{ID: affiliationID})
	}
	return church
}

// settingRequest — тело записи настройки.
// countyRequest — тело создания/изменения округа.
type countyRequest struct {
	Name       string `json:"name" binding:"required"`
	Path       string `json:"path" binding:"required"`
	Population *int64 `json:"population"`
}

func (r countyRequest) toModel(id int64) *models.County {
	return &models.County{
		ID:         id,
		Name:       r.Name,
		Path:       r.Path,
		Population: r.Population,
	}
}

// affiliationRequest — тело создания/изменения аффилиации.
type affiliationRequest struct {
	Name         string  `json:"name" binding:"required"`
	Path         *string `json:"path"`
	Status       string  `json:"status"`
	Website      *string `json:"website"`
	PublicNotes  *string `json:"public_notes"`
	PrivateNotes *string `json:"private_notes"`
}

func (r affiliationRequest) toModel(id int64) *models.Affiliation {
	return &models.Affiliation{
		ID:           id,
		Name:         r.Name,
		Path:         r.Path,
		Status:       r.Status,
		Website:      r.Website,
		PublicNotes:  r.PublicNotes,
		PrivateNotes: r.PrivateNotes,
	}
}

type settingRequest struct {
	Value *string `json:"value"`
}

// userRoleRequest — тело смены роли пользователя.
type userRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// sermonExtractRequest — тело запроса извлечения данных о проповеди.
// Передается либо сырой текст, либо ссылка на YouTube-видео с субтитрами.
type sermonExtractRequest struct {
	Text     string `json:"text"`
	VideoURL string `json:"video_url"`
}

// mapPin — точка на карте для публичной страницы.
type mapPin struct {
	Name      string  `json:"name"`
	Path      string  `json:"path,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
