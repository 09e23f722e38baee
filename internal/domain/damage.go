package domain

import "time"

// DamageRecord 是一次损耗登记。
// Weight 只对蔬果类有值，Quantity 只对内部商品有值，由业务层保证。
type DamageRecord struct {
	ID         uint      `gorm:"primaryKey"`
	ProductID  uint      `gorm:"not null;index"`
	Product    Product   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Weight     *float64
	Quantity   *int
	Notes      *string   `gorm:"type:text"`
	RecordedAt time.Time `gorm:"not null;index"`
}

// ProductTotals 是单个商品的记录汇总。
type ProductTotals struct {
	ProductID     uint
	Name          string
	Type          string
	TotalRecords  int64
	TotalWeight   float64
	TotalQuantity int64
}

// TypeTotals 是同一类型全部商品的记录汇总。
type TypeTotals struct {
	Type          string
	TotalRecords  int64
	TotalWeight   float64
	TotalQuantity int64
}

// DailyCount 是按天统计序列中的一个点。
type DailyCount struct {
	Day   time.Time
	Label string
	Count int64
}
