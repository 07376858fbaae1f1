// Package fields holds the hawiya domain model: the persisted User record,
// the request shapes accepted over the wire, and the validation layer that
// gates them.
package fields

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// PlaceholderPhotoURL is the stock avatar every account starts with. A Google
// login only overwrites the photo while the account still shows this one.
const PlaceholderPhotoURL = "https://cdn.pixabay.com/photo/2015/10/05/22/37/blank-profile-picture-973460_640.png"

// Auth providers. AuthProvider flips from local to google exactly once, when
// a Google login claims an existing local account by email; it is never
// cleared afterwards.
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// ProfilePhoto is embedded in User. PublicID carries the asset id of an
// externally hosted photo, empty for the placeholder and for Google photos.
type ProfilePhoto struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id,omitempty"`
}

// User is the account record. Password holds a bcrypt hash and stays empty
// for accounts created through Google that never set a local password; such
// accounts cannot log in with email+password at all.
type User struct {
	gorm.Model
	Username string `json:"username"`
	Email    string `json:"email" gorm:"index:idx_users_email,unique,where:email <> ''"`
	Password string `json:"-"`

	AuthProvider string `json:"auth_provider" gorm:"default:local"`
	GoogleID     string `json:"-" gorm:"index:idx_users_google_id,unique,where:google_id <> ''"`

	ProfilePhoto ProfilePhoto `json:"profile_photo" gorm:"embedded;embeddedPrefix:photo_"`

	Gender string `json:"gender,omitempty"`
	Level  int    `json:"level,omitempty"`

	IsAdmin           bool `json:"is_admin" gorm:"default:false"`
	IsAccountVerified bool `json:"is_account_verified" gorm:"default:false"`
}

// HashPassword replaces the plaintext Password with its bcrypt hash. bcrypt
// salts per call, so hashing the same password twice yields distinct hashes.
func (u *User) HashPassword(cost int) error {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), cost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

// ComparePassword checks plain against the stored hash. bcrypt's comparison
// does not short-circuit on the first differing byte, so timing reveals
// nothing about where a guess went wrong. An empty stored hash (federated
// account) never matches.
func (u User) ComparePassword(plain string) bool {
	if u.Password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}

// HasDefaultPhoto reports whether the account still shows the stock avatar.
func (u User) HasDefaultPhoto() bool {
	return u.ProfilePhoto.URL == "" || u.ProfilePhoto.URL == PlaceholderPhotoURL
}

// UserByEmail fetches an account by its (lowercased) email.
func UserByEmail(email string, db *gorm.DB) (User, error) {
	var user User
	err := db.First(&user, "email = ?", email).Error
	return user, err
}

// UserByGoogleID fetches an account by the Google subject id it was linked to.
func UserByGoogleID(sub string, db *gorm.DB) (User, error) {
	var user User
	err := db.First(&user, "google_id = ?", sub).Error
	return user, err
}

// UserByID fetches an account by primary key.
func UserByID(id uint, db *gorm.DB) (User, error) {
	var user User
	err := db.First(&user, id).Error
	return user, err
}

// IsNotFound reports whether err is gorm's record-not-found.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
