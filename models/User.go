package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	FirstName      string         `json:"firstName"`
	LastName       string         `json:"lastName"`
	Email          string         `json:"email" gorm:"uniqueIndex"`
	Password       string         `json:"-"`
	SocialLogin    bool           `json:"socialLogin"`
	SocialProvider string         `json:"socialProvider"`
	AvatarURL      string         `json:"avatarURL"`
	Bio            string         `json:"bio"`
	FavoriteSports datatypes.JSON `json:"favoriteSports"`
	PushTokens     datatypes.JSON `json:"pushTokens"`
	Role           string         `json:"role" gorm:"type:varchar(20);default:user;index"` // user, admin, super_admin

	CreatedEvents []Event            `json:"createdEvents,omitempty" gorm:"foreignKey:CreatorID"`
	Participation []EventParticipant `json:"participation,omitempty" gorm:"foreignKey:UserID"`
}
