package service

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/domain"
	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/repository"
)

// 列表和统计页面的固定尺寸
const (
	RecordsPerPage   = 50
	ProductsPerPage  = 30
	RecentRecords    = 20
	TopProductsLimit = 10
	SeriesDays       = 30
	WeekWindow       = 7 * 24 * time.Hour
)

// DateLayout 是筛选表单中日期的格式。
const DateLayout = "2006-01-02"

// RecordQuery 是记录列表和导出共用的原始筛选参数。
type RecordQuery struct {
	Type     string `form:"tipo"`
	DateFrom string `form:"data_inicio"`
	DateTo   string `form:"data_fim"`
	Product  string `form:"produto"`
}

// ParseRecordFilter 校验筛选参数。data_fim 包含当天，截止到 23:59:59。
func ParseRecordFilter(q RecordQuery) (domain.RecordFilter, error) {
	var filter domain.RecordFilter

	switch q.Type {
	case "", domain.ProductTypeAll:
	case domain.ProductTypeProduce, domain.ProductTypeInternal:
		filter.Type = q.Type
	default:
		return filter, invalid("Tipo de produto inválido.")
	}

	if q.DateFrom != "" {
		from, err := time.ParseInLocation(DateLayout, q.DateFrom, time.Local)
		if err != nil {
			return filter, invalid("Data inicial inválida.")
		}
		filter.From = &from
	}
	if q.DateTo != "" {
		day, err := time.ParseInLocation(DateLayout, q.DateTo, time.Local)
		if err != nil {
			return filter, invalid("Data final inválida.")
		}
		to := day.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
		filter.To = &to
	}

	filter.ProductName = strings.TrimSpace(q.Product)
	return filter, nil
}

// ReportService 提供记录列表、导出数据和各种统计视图，全部只读。
type ReportService struct {
	productRepo repository.ProductRepository
	damageRepo  repository.DamageRepository
	now         func() time.Time
}

// NewReportService 创建 ReportService 实例。
func NewReportService(productRepo repository.ProductRepository, damageRepo repository.DamageRepository) *ReportService {
	if productRepo == nil || damageRepo == nil {
		panic("repositories cannot be nil for ReportService")
	}
	return &ReportService{productRepo: productRepo, damageRepo: damageRepo, now: time.Now}
}

// ListRecords 分页返回符合条件的记录。页码越界时返回空页而不是错误。
func (s *ReportService) ListRecords(ctx context.Context, filter domain.RecordFilter, page, perPage int) (domain.Page[domain.DamageRecord], error) {
	page, perPage = normalizePage(page, perPage, RecordsPerPage)
	records, total, err := s.damageRepo.List(ctx, filter, (page-1)*perPage, perPage)
	if err != nil {
		logrus.WithError(err).WithField("page", page).Error("ListRecords: Repository error")
		return domain.Page[domain.DamageRecord]{}, ErrInternalServer
	}
	return domain.Page[domain.DamageRecord]{Items: records, Page: page, PerPage: perPage, Total: total}, nil
}

// ExportRecords 返回符合条件的全部记录，不分页。
func (s *ReportService) ExportRecords(ctx context.Context, filter domain.RecordFilter) ([]domain.DamageRecord, error) {
	records, _, err := s.damageRepo.List(ctx, filter, 0, 0)
	if err != nil {
		logrus.WithError(err).Error("ExportRecords: Repository error")
		return nil, ErrInternalServer
	}
	return records, nil
}

// ProductNames 返回筛选下拉框使用的商品名称。
func (s *ReportService) ProductNames(ctx context.Context) ([]string, error) {
	names, err := s.productRepo.DistinctNames(ctx)
	if err != nil {
		logrus.WithError(err).Error("ProductNames: Repository error")
		return nil, ErrInternalServer
	}
	return names, nil
}

// ListProducts 分页返回商品，busca 同时匹配名称和条码。
func (s *ReportService) ListProducts(ctx context.Context, productType, search string, page, perPage int) (domain.Page[domain.ProductListing], error) {
	filter := domain.ProductFilter{Search: strings.TrimSpace(search)}
	switch productType {
	case "", domain.ProductTypeAll:
	case domain.ProductTypeProduce, domain.ProductTypeInternal:
		filter.Type = productType
	default:
		return domain.Page[domain.ProductListing]{}, invalid("Tipo de produto inválido.")
	}

	page, perPage = normalizePage(page, perPage, ProductsPerPage)
	products, total, err := s.productRepo.List(ctx, filter, (page-1)*perPage, perPage)
	if err != nil {
		logrus.WithError(err).WithField("page", page).Error("ListProducts: Repository error")
		return domain.Page[domain.ProductListing]{}, ErrInternalServer
	}
	return domain.Page[domain.ProductListing]{Items: products, Page: page, PerPage: perPage, Total: total}, nil
}

// Dashboard 是管理后台首页的数据。
type Dashboard struct {
	TotalRecords int64
	TodayRecords int64
	WeekRecords  int64
	TopProducts  []domain.ProductTotals
	Recent       []domain.DamageRecord
}

// Dashboard 汇总总数、今日、近 7 天的记录数，以及排行和最近记录。
func (s *ReportService) Dashboard(ctx context.Context) (*Dashboard, error) {
	now := s.now()
	today := startOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)
	weekAgo := now.Add(-WeekWindow)

	d := &Dashboard{}
	var err error
	if d.TotalRecords, err = s.damageRepo.Count(ctx, nil, nil); err != nil {
		return nil, s.fail("Dashboard", err)
	}
	if d.TodayRecords, err = s.damageRepo.Count(ctx, &today, &tomorrow); err != nil {
		return nil, s.fail("Dashboard", err)
	}
	if d.WeekRecords, err = s.damageRepo.Count(ctx, &weekAgo, nil); err != nil {
		return nil, s.fail("Dashboard", err)
	}
	if d.TopProducts, err = s.damageRepo.TopProducts(ctx, TopProductsLimit); err != nil {
		return nil, s.fail("Dashboard", err)
	}
	if d.Recent, err = s.damageRepo.Recent(ctx, RecentRecords); err != nil {
		return nil, s.fail("Dashboard", err)
	}
	return d, nil
}

// Statistics 是统计页面的数据。
type Statistics struct {
	ByType      []domain.TypeTotals
	Daily       []domain.DailyCount
	TopProducts []domain.ProductTotals
}

// Statistics 返回按类型汇总、近 30 天每日记录数 (从旧到新) 和商品排行。
func (s *ReportService) Statistics(ctx context.Context) (*Statistics, error) {
	now := s.now()
	first := startOfDay(now).AddDate(0, 0, -(SeriesDays - 1))

	byType, err := s.damageRepo.TotalsByType(ctx)
	if err != nil {
		return nil, s.fail("Statistics", err)
	}
	stamps, err := s.damageRepo.RecordedSince(ctx, first)
	if err != nil {
		return nil, s.fail("Statistics", err)
	}
	top, err := s.damageRepo.TopProducts(ctx, TopProductsLimit)
	if err != nil {
		return nil, s.fail("Statistics", err)
	}
	return &Statistics{
		ByType:      byType,
		Daily:       dailySeries(stamps, first, SeriesDays),
		TopProducts: top,
	}, nil
}

func (s *ReportService) fail(op string, err error) error {
	logrus.WithError(err).Errorf("%s: Repository error", op)
	return ErrInternalServer
}

// dailySeries 把时间戳按本地日期分桶，first 是第一天的零点。
func dailySeries(stamps []time.Time, first time.Time, days int) []domain.DailyCount {
	series := make([]domain.DailyCount, days)
	index := make(map[string]int, days)
	for i := range series {
		day := first.AddDate(0, 0, i)
		series[i] = domain.DailyCount{Day: day, Label: day.Format("02/01")}
		index[day.Format(DateLayout)] = i
	}
	for _, ts := range stamps {
		if i, ok := index[ts.In(time.Local).Format(DateLayout)]; ok {
			series[i].Count++
		}
	}
	return series
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func normalizePage(page, perPage, fallback int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = fallback
	}
	return page, perPage
}
