package entities

import "time"

// MediaFile is the persisted link between a post and its stored object.
type MediaFile struct {
	ID          string    `gorm:"type:varchar(40);primaryKey"`
	PostID      string    `gorm:"type:varchar(50);not null;index:ix_media_files_post_id"`
	Filename    string    `gorm:"type:varchar(255);not null;uniqueIndex:ux_media_files_filename"`
	FileURL     string    `gorm:"column:file_url;type:varchar(500);not null"`
	ContentType string    `gorm:"type:varchar(128);not null"`
	SizeBytes   int64     `gorm:"not null"`
	Owner       string    `gorm:"type:varchar(128);not null;default:'';index:ix_media_files_owner"`
	UploadedAt  time.Time `gorm:"not null;index:ix_media_files_uploaded_at"`
}

func (MediaFile) TableName() string {
	return "media_files"
}
