package models

// Banner is a carousel slide. Position drives display order; the admin
// reorders banners by posting the full id list.
type Banner struct {
	BaseModel
	Title    string `json:"title"`
	Image    string `json:"image"`
	URL      string `json:"url"`
	Position int    `gorm:"index" json:"position"`
}

// Coupon is a promotion code applied at checkout. Type is either
// "percent" or "fixed". MaxUses nil means unlimited.
type Coupon struct {
	BaseModel
	Code      string  `gorm:"uniqueIndex" json:"code"`
	Discount  float64 `json:"discount"`
	Type      string  `gorm:"default:percent" json:"type"`
	MaxUses   *int    `json:"max_uses"`
	UsedCount int     `json:"used_count"`
}

const (
	CouponTypePercent = "percent"
	CouponTypeFixed   = "fixed"
)
