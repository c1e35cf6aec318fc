package models

import "time"

const (
	// ContactNumberUnavailable is stored when the identity provider has no phone number.
	ContactNumberUnavailable = "N/A"
	// CountryUnknown is stored when the identity provider has no address country.
	CountryUnknown = "Unknown"
)

// User represents an account provisioned from an external identity.
// Username holds the provider's stable subject identifier.
type User struct {
	Username      string    `json:"username" gorm:"primaryKey;type:varchar(255)"`
	Name          string    `json:"name" gorm:"type:varchar(255)"`
	Email         *string   `json:"email" gorm:"uniqueIndex;type:varchar(255)"`
	ContactNumber string    `json:"contactNumber" gorm:"type:varchar(50)"`
	Country       string    `json:"country" gorm:"type:varchar(100)"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`

	// Orders only declares the cascading foreign key; it is never loaded.
	Orders []Order `json:"-" gorm:"foreignKey:Username;references:Username;constraint:OnDelete:CASCADE"`
}

// EmailAddress returns the stored email or an empty string.
func (u *User) EmailAddress() string {
	if u == nil || u.Email == nil {
		return ""
	}
	return *u.Email
}

// UserProfile is the outward view of a user.
type UserProfile struct {
	Username      string `json:"username"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	ContactNumber string `json:"contactNumber"`
	Country       string `json:"country"`
	OrderCount    *int64 `json:"orderCount,omitempty"`
}

// ToProfile copies the user into its outward view.
func (u *User) ToProfile() UserProfile {
	return UserProfile{
		Username:      u.Username,
		Name:          u.Name,
		Email:         u.EmailAddress(),
		ContactNumber: u.ContactNumber,
		Country:       u.Country,
	}
}
