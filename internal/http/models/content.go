package models

import (
	"time"

	domain "github.com/sneddy/dsmlkz-platform/internal/models"
)

// ChannelPost — пост Telegram-канала в REST-представлении.
type ChannelPost struct {
	ID          string `json:"id"`
	ChannelName string `json:"channel_name"`
	MessageID   int64  `json:"message_id"`
	Text        string `json:"text"`
	ImageURL    string `json:"image_url,omitempty"`
	PostLink    string `json:"post_link"`
	CreatedAt   int64  `json:"created_at"` // Unix UTC
}

// JobPost — вакансия: пост плюс разобранные атрибуты.
type JobPost struct {
	ChannelPost
	CompanyName string `json:"company_name,omitempty"`
	Location    string `json:"location,omitempty"`
	Salary      string `json:"salary,omitempty"`
	ApplyURL    string `json:"apply_url,omitempty"`
}

// ContentIngestItem — пост в теле POST /feeds/ingest.
// id не принимается: генерируется при вставке; пара channel_name + message_id
// определяет upsert.
type ContentIngestItem struct {
	ChannelName string `json:"channel_name"`
	MessageID   int64  `json:"message_id"`
	Text        string `json:"text"`
	ImageURL    string `json:"image_url,omitempty"`
	PostLink    string `json:"post_link"`
	// CreatedAt — Unix UTC; 0 означает «проставить время вставки».
	CreatedAt int64 `json:"created_at,omitempty"`
}

// ContentIngestRequest — пачка постов для заливки в ленту.
type ContentIngestRequest struct {
	Items []ContentIngestItem `json:"items"`
}

type ContentIngestResponse struct {
	Accepted int `json:"accepted"`
}

type ContentPageResponse struct {
	Items         []ChannelPost `json:"items"`
	NextPageToken string        `json:"next_page_token,omitempty"`
}

type JobPageResponse struct {
	Items         []JobPost `json:"items"`
	NextPageToken string    `json:"next_page_token,omitempty"`
}

// ToModel конвертирует пост из тела запроса в доменную модель.
func (i ContentIngestItem) ToModel() domain.ChannelPost {
	post := domain.ChannelPost{
		ChannelName: i.ChannelName,
		MessageID:   i.MessageID,
		Text:        i.Text,
		ImageURL:    i.ImageURL,
		PostLink:    i.PostLink,
	}

	if i.CreatedAt > 0 {
		post.CreatedAt = time.Unix(i.CreatedAt, 0).UTC()
	}

	return post
}

// ChannelPostFromModel конвертирует доменный пост.
func ChannelPostFromModel(p domain.ChannelPost) ChannelPost {
	return ChannelPost{
		ID:          p.ID.String(),
		ChannelName: p.ChannelName,
		MessageID:   p.MessageID,
		Text:        p.Text,
		ImageURL:    p.ImageURL,
		PostLink:    p.PostLink,
		CreatedAt:   p.CreatedAt.UTC().Unix(),
	}
}

// JobPostFromModel конвертирует доменную вакансию.
func JobPostFromModel(j domain.JobPost) JobPost {
	return JobPost{
		ChannelPost: ChannelPostFromModel(j.ChannelPost),
		CompanyName: j.CompanyName,
		Location:    j.Location,
		Salary:      j.Salary,
		ApplyURL:    j.ApplyURL,
	}
}

// ContentPageFromModel конвертирует страницу постов.
func ContentPageFromModel(page *domain.ContentPage) ContentPageResponse {
	out := ContentPageResponse{NextPageToken: page.NextPageToken}
	for _, item := range page.Items {
		out.Items = append(out.Items, ChannelPostFromModel(item))
	}

	return out
}

// JobPageFromModel конвертирует страницу вакансий.
func JobPageFromModel(page *domain.JobPage) JobPageResponse {
	out := JobPageResponse{NextPageToken: page.NextPageToken}
	for _, item := range page.Items {
		out.Items = append(out.Items, JobPostFromModel(item))
	}

	return out
}
