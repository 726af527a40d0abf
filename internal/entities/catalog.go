package entities

import "time"

const (
	defaultBookPicture = "/static/book_pics/default.jpg"
	bookPicturesPath   = "/media/book_pics/"
)

type Genre struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:50;not null" json:"name"`

	Books []Book `gorm:"constraint:OnDelete:CASCADE" json:"books,omitempty"`
}

func (Genre) TableName() string {
	return "genres"
}

type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:50;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (Tag) TableName() string {
	return "tags"
}

type Book struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"uniqueIndex;size:100;not null" json:"title"`
	Rating        int       `gorm:"not null;default:0" json:"rating"`
	DatePublished time.Time `gorm:"not null" json:"date_published"`
	ImageFile     *string   `gorm:"size:200" json:"image_file"`
	GenreID       uint      `gorm:"index;not null" json:"genre_id"`
	AuthorID      uint      `gorm:"index;not null" json:"author_id"`

	Genre  *Genre      `json:"genre,omitempty"`
	Author *Author     `json:"author,omitempty"`
	Tags   []Tag       `gorm:"many2many:book_tags;constraint:OnDelete:CASCADE" json:"tags"`
	Lines  []BookOrder `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (Book) TableName() string {
	return "books"
}

// ImagePath returns the public URL of the book cover.
func (b Book) ImagePath() string {
	if b.ImageFile != nil && *b.ImageFile != "" {
		return bookPicturesPath + *b.ImageFile
	}
	return defaultBookPicture
}

// BookTagsTable is the association table between books and tags.
const BookTagsTable = "book_tags"
