package entity

import "time"

const (
	UserRoleAdmin = "admin"
	UserRoleUser  = "user"
)

// Default reference ranges assigned to new accounts (mg/dL).
const (
	DefaultBeforeFoodMin = 80
	DefaultBeforeFoodMax = 130
	DefaultAfterFoodMin  = 90
	DefaultAfterFoodMax  = 180
)

// DbUser represents a persisted user account.
type DbUser struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Email        string    `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	DisplayName  string    `gorm:"column:display_name;type:varchar(255)" json:"display_name"`
	Role         string    `gorm:"column:role;type:varchar(50);index;not null;default:user" json:"role"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`

	// Personalised reference ranges, used only for chart annotation.
	BeforeFoodMin int `gorm:"column:before_food_min;not null;default:80" json:"before_food_min"`
	BeforeFoodMax int `gorm:"column:before_food_max;not null;default:130" json:"before_food_max"`
	AfterFoodMin  int `gorm:"column:after_food_min;not null;default:90" json:"after_food_min"`
	AfterFoodMax  int `gorm:"column:after_food_max;not null;default:180" json:"after_food_max"`
}

// TableName overrides default pluralised name.
func (DbUser) TableName() string {
	return "users"
}

// IsAdmin reports whether the account carries the admin role.
func (u *DbUser) IsAdmin() bool {
	return u != nil && u.Role == UserRoleAdmin
}
