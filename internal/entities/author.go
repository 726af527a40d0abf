package entities

import "time"

const (
	defaultProfilePicture = "/static/profile_pics/default.jpg"
	profilePicturesPath   = "/media/profile_pics/"
)

// Author is a registered user of the bookstore. Authors write books and place orders.
type Author struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;size:50;not null" json:"email"` // always stored lowercased
	PasswordHash string    `gorm:"size:200;not null" json:"-"`
	ImageFile    *string   `gorm:"size:200" json:"image_file"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	IsSuperuser  bool      `gorm:"not null;default:false" json:"is_superuser"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Profile *Profile `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Books   []Book   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Orders  []Order  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (Author) TableName() string {
	return "authors"
}

// ImagePath returns the public URL of the author's avatar.
func (a Author) ImagePath() string {
	if a.ImageFile != nil && *a.ImageFile != "" {
		return profilePicturesPath + *a.ImageFile
	}
	return defaultProfilePicture
}

// Profile holds optional personal details. Each author has at most one.
type Profile struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	FirstName *string `gorm:"size:40" json:"first_name"`
	LastName  *string `gorm:"size:40" json:"last_name"`
	Bio       *string `gorm:"type:text" json:"bio"`
	AuthorID  uint    `gorm:"uniqueIndex;not null" json:"author_id"`

	Author *Author `json:"author,omitempty"`
}

func (Profile) TableName() string {
	return "profiles"
}
