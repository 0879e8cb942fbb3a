package db

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleBasic  Role = "BASIC"
	RoleEditor Role = "EDITOR"
	RoleAdmin  Role = "ADMIN"
)

type User struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name      string    `json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Role      Role      `gorm:"type:varchar(16);not null" json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Posts     []Post    `gorm:"foreignKey:UserID" json:"posts"`
	Jokes     []Joke    `gorm:"foreignKey:UserID" json:"jokes"`
}

// userJSON is the wire form of User. A nil association was never loaded
// and is left out; a loaded one is always present, even when empty.
type userJSON struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Posts     *[]Post   `json:"posts,omitempty"`
	Jokes     *[]Joke   `json:"jokes,omitempty"`
}

func (u User) MarshalJSON() ([]byte, error) {
	v := userJSON{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.Posts != nil {
		v.Posts = &u.Posts
	}
	if u.Jokes != nil {
		v.Jokes = &u.Jokes
	}
	return json.Marshal(v)
}

// loaded marks both associations as fetched.
func (u *User) loaded() {
	if u.Posts == nil {
		u.Posts = []Post{}
	}
	if u.Jokes == nil {
		u.Jokes = []Joke{}
	}
}

type Post struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Content   string    `gorm:"type:text" json:"content"`
	Published bool      `gorm:"not null;default:false" json:"published"`
	UserID    string    `gorm:"type:varchar(36);not null;index" json:"userId"`
	Creator   *User     `gorm:"foreignKey:UserID" json:"creator,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Joke struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	UserID    string    `gorm:"type:varchar(36);not null;index" json:"userId"`
	Creator   *User     `gorm:"foreignKey:UserID" json:"creator,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = RoleBasic
	}
	return nil
}

func (p *Post) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (j *Joke) BeforeCreate(*gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	return nil
}
