package domain

import "time"

// RecordFilter 是损耗记录的筛选条件，零值表示不按该项筛选。
type RecordFilter struct {
	Type        string // ProductTypeProduce、ProductTypeInternal，空字符串表示全部
	From        *time.Time
	To          *time.Time
	ProductName string // 不区分大小写的子串匹配
}

// ProductFilter 是商品列表的筛选条件。
type ProductFilter struct {
	Type   string
	Search string // 匹配名称或条码，不区分大小写
}

// Page 是按偏移量分页的一页结果。
type Page[T any] struct {
	Items   []T
	Page    int
	PerPage int
	Total   int64
}

// Pages 返回容纳 Total 条数据所需的页数。
func (p Page[T]) Pages() int {
	if p.PerPage <= 0 || p.Total == 0 {
		return 0
	}
	return int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
}

func (p Page[T]) HasPrev() bool { return p.Page > 1 }

func (p Page[T]) HasNext() bool { return p.Page < p.Pages() }

func (p Page[T]) PrevNum() int { return p.Page - 1 }

func (p Page[T]) NextNum() int { return p.Page + 1 }
