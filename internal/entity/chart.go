package entity

// ChartPoint is one dated value in the chart payload. UserEmail stays null
// unless the requesting actor is an admin.
type ChartPoint struct {
	Date      string  `json:"x"`
	Value     int     `json:"y"`
	Food      string  `json:"food"`
	Time      string  `json:"time"`
	UserEmail *string `json:"user_email"`
}

// ChartRange carries one personalised reference range pair.
type ChartRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// ChartDataResponse feeds the client-side charting widget.
type ChartDataResponse struct {
	BeforeFood      []ChartPoint `json:"before_food"`
	AfterFood       []ChartPoint `json:"after_food"`
	BeforeFoodRange ChartRange   `json:"before_food_range"`
	AfterFoodRange  ChartRange   `json:"after_food_range"`
}
