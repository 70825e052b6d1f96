package models

// Video is the read-only domain model for a video fetched by the mobile
// client from the remote platform. The filter engine never mutates it.
type Video struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	ChannelID    string `json:"channel_id"`
	ChannelTitle string `json:"channel_title,omitempty"`
	PublishedAt  string `json:"published_at,omitempty"`
	ViewCount    int64  `json:"view_count,omitempty"`
	LikeCount    int64  `json:"like_count,omitempty"`
	Duration     string `json:"duration,omitempty"`
	IsLive       bool   `json:"is_live,omitempty"`
}
