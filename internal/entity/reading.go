package entity

import "time"

// Meal relation values recognised by the dashboards. Other strings are
// stored as-is and excluded from the partition averages.
const (
	MealBeforeFood = "Before Food"
	MealAfterFood  = "After Food"
)

// DateLayout is the calendar format used by reading forms and chart payloads.
const DateLayout = "2006-01-02"

// DbReading represents one recorded glucose measurement event.
type DbReading struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID uint    `gorm:"column:user_id;index;not null" json:"user_id"`
	User   *DbUser `gorm:"foreignKey:UserID" json:"-"`

	Date         time.Time `gorm:"column:date;type:date;not null" json:"date"`
	TimeOfDay    string    `gorm:"column:time_of_day;type:varchar(20);not null" json:"time_of_day"`
	MealRelation string    `gorm:"column:meal_relation;type:varchar(20);not null" json:"meal_relation"`
	SugarValue   int       `gorm:"column:sugar_value;not null" json:"sugar_value"`
	FoodEaten    string    `gorm:"column:food_eaten;type:text" json:"food_eaten"`
}

// TableName overrides default pluralised name.
func (DbReading) TableName() string {
	return "readings"
}
