package services

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"hotelpulse/internal/common"
	"hotelpulse/internal/constants"
	"hotelpulse/internal/db/repositories"
	"hotelpulse/internal/metrics"
	"hotelpulse/internal/models/dtos"
	gormModels "hotelpulse/internal/models/gorm"
)

// AggregationService answers every read query over the canonical records.
// Bucketed values follow the ratio-of-sums rule: numerators and
// denominators are summed within the bucket before dividing. The regional
// rollup deliberately uses a different rule (unweighted mean across
// hotels); see RegionalRollup.
type AggregationService struct {
	records *repositories.HotelRecordRepository
	cache   common.CacheInterface
	ttl     time.Duration
}

func NewAggregationService(records *repositories.HotelRecordRepository, cache common.CacheInterface, ttl time.Duration) *AggregationService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &AggregationService{records: records, cache: cache, ttl: ttl}
}

// bucketTotals accumulates the raw sums a bucket needs before any ratio
// is taken.
type bucketTotals struct {
	occupied  int
	available int
	revenue   decimal.Decimal
}

func (b *bucketTotals) add(r *gormModels.HotelMetricRecord) {
	b.occupied += r.RoomsOccupied
	b.available += r.RoomCount
	b.revenue = b.revenue.Add(decimal.NewFromFloat(r.Revenue))
}

// value applies the requested metric to the summed inputs. A zero
// denominator yields 0, never an error.
func (b *bucketTotals) value(metric constants.MetricName) float64 {
	revenue, _ := b.revenue.Float64()
	switch metric {
	case constants.MetricOccupancyRate:
		if rate := OccupancyRate(b.occupied, b.available); rate != nil {
			return *rate
		}
		return 0
	case constants.MetricADR:
		return ADR(revenue, b.occupied)
	case constants.MetricRevPAR:
		return RevPAR(revenue, b.available)
	default:
		return revenue
	}
}

// bucketStart normalizes a date onto its bucket's first day: the date
// itself, the Monday of its week, or the first of its month.
func bucketStart(date time.Time, groupBy constants.GroupBy) time.Time {
	switch groupBy {
	case constants.GroupByWeek:
		offset := (int(date.Weekday()) + 6) % 7 // Monday = 0
		return date.AddDate(0, 0, -offset)
	case constants.GroupByMonth:
		return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
	default:
		return date
	}
}

// Trend returns the bucketed series for one metric, ascending by bucket.
// An empty range yields an empty series.
func (s *AggregationService) Trend(ctx context.Context, metric string, start, end time.Time, groupBy constants.GroupBy, hotelName string) ([]dtos.TrendPoint, error) {
	timer := prometheusTimer("trend")
	defer timer()

	records, err := s.records.RangeQuery(ctx, start, end, hotelName)
	if err != nil {
		return nil, err
	}

	name := constants.NormalizeMetric(metric)
	buckets := make(map[string]*bucketTotals)
	for i := range records {
		key := bucketStart(records[i].DateRecorded, groupBy).Format(dateLayout)
		if buckets[key] == nil {
			buckets[key] = &bucketTotals{}
		}
		buckets[key].add(&records[i])
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	points := make([]dtos.TrendPoint, 0, len(keys))
	for _, k := range keys {
		points = append(points, dtos.TrendPoint{
			Period: k,
			Value:  buckets[k].value(name),
		})
	}

	return points, nil
}

// Trends serves the multi-metric dashboard query. period maps onto the
// bucketing unit: daily -> day, weekly -> week, monthly -> month.
// Unknown metric names are skipped here rather than defaulted, so a typo
// in the list does not come back as a revenue series under its own key.
// Single-metric Trend keeps the default-to-revenue rule.
func (s *AggregationService) Trends(ctx context.Context, metrics []string, period string, start, end time.Time, hotelName string) (*dtos.TrendResponse, error) {
	groupBy := constants.GroupByDay
	switch period {
	case "weekly":
		groupBy = constants.GroupByWeek
	case "monthly":
		groupBy = constants.GroupByMonth
	}

	resp := &dtos.TrendResponse{
		Trends: make(map[string][]dtos.TrendPoint),
		Period: period,
		DateRange: dtos.DateRange{
			StartDate: start.Format(dateLayout),
			EndDate:   end.Format(dateLayout),
		},
	}

	for _, metric := range metrics {
		if !constants.ValidMetric(metric) {
			continue
		}
		points, err := s.Trend(ctx, metric, start, end, groupBy, hotelName)
		if err != nil {
			return nil, err
		}
		resp.Trends[metric] = points
	}

	return resp, nil
}

// rangeValue aggregates one metric over a whole range as a single bucket.
func (s *AggregationService) rangeValue(ctx context.Context, metric constants.MetricName, start, end time.Time) (float64, error) {
	records, err := s.records.RangeQuery(ctx, start, end, "")
	if err != nil {
		return 0, err
	}

	var totals bucketTotals
	for i := range records {
		totals.add(&records[i])
	}
	return totals.value(metric), nil
}

// Compare computes a period-over-period comparison. When the previous
// range is not supplied it defaults to the span of identical length
// immediately before the current one.
func (s *AggregationService) Compare(ctx context.Context, metric string, curStart, curEnd time.Time, prevStart, prevEnd *time.Time) (*dtos.ComparisonResponse, error) {
	name := constants.NormalizeMetric(metric)

	var pStart, pEnd time.Time
	if prevStart != nil && prevEnd != nil {
		pStart, pEnd = *prevStart, *prevEnd
	} else {
		length := int(curEnd.Sub(curStart).Hours()/24) + 1
		pEnd = curStart.AddDate(0, 0, -1)
		pStart = pEnd.AddDate(0, 0, -(length - 1))
	}

	var current, previous float64
	var curHotels, prevHotels int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if current, err = s.rangeValue(gctx, name, curStart, curEnd); err != nil {
			return err
		}
		curHotels, err = s.records.DistinctHotelCount(gctx, curStart, curEnd)
		return err
	})
	g.Go(func() error {
		var err error
		if previous, err = s.rangeValue(gctx, name, pStart, pEnd); err != nil {
			return err
		}
		prevHotels, err = s.records.DistinctHotelCount(gctx, pStart, pEnd)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	changeRate := 0.0
	if previous != 0 {
		changeRate = (current - previous) / previous * 100
	}

	return &dtos.ComparisonResponse{
		Metric: string(name),
		Current: dtos.PeriodValue{
			Value:      current,
			HotelCount: curHotels,
			DateRange: dtos.DateRange{
				StartDate: curStart.Format(dateLayout),
				EndDate:   curEnd.Format(dateLayout),
			},
		},
		Previous: dtos.PeriodValue{
			Value:      previous,
			HotelCount: prevHotels,
			DateRange: dtos.DateRange{
				StartDate: pStart.Format(dateLayout),
				EndDate:   pEnd.Format(dateLayout),
			},
		},
		ChangeRate: changeRate,
	}, nil
}

// Rankings aggregates the metric per hotel across the range with the
// ratio-of-sums rule, sorted descending. Ties break on hotel name
// ascending so the order is deterministic.
func (s *AggregationService) Rankings(ctx context.Context, metric string, start, end time.Time, limit int) (*dtos.RankingsResponse, error) {
	timer := prometheusTimer("rankings")
	defer timer()

	records, err := s.records.RangeQuery(ctx, start, end, "")
	if err != nil {
		return nil, err
	}

	name := constants.NormalizeMetric(metric)
	perHotel := make(map[string]*bucketTotals)
	for i := range records {
		hotel := records[i].HotelName
		if perHotel[hotel] == nil {
			perHotel[hotel] = &bucketTotals{}
		}
		perHotel[hotel].add(&records[i])
	}

	entries := make([]dtos.RankingEntry, 0, len(perHotel))
	for hotel, totals := range perHotel {
		entries = append(entries, dtos.RankingEntry{
			HotelName: hotel,
			Value:     totals.value(name),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].HotelName < entries[j].HotelName
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	return &dtos.RankingsResponse{
		Metric: string(name),
		DateRange: dtos.DateRange{
			StartDate: start.Format(dateLayout),
			EndDate:   end.Format(dateLayout),
		},
		Rankings: entries,
	}, nil
}

// SeasonalPatterns aggregates by calendar month across one year. Months
// without data are omitted.
func (s *AggregationService) SeasonalPatterns(ctx context.Context, year int, metric string, hotelName string) (*dtos.SeasonalResponse, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	records, err := s.records.RangeQuery(ctx, start, end, hotelName)
	if err != nil {
		return nil, err
	}

	name := constants.NormalizeMetric(metric)
	months := make(map[int]*bucketTotals)
	for i := range records {
		m := int(records[i].DateRecorded.Month())
		if months[m] == nil {
			months[m] = &bucketTotals{}
		}
		months[m].add(&records[i])
	}

	resp := &dtos.SeasonalResponse{
		Year:      year,
		Metric:    string(name),
		HotelName: hotelName,
	}
	for m := 1; m <= 12; m++ {
		if totals, ok := months[m]; ok {
			resp.MonthlyData = append(resp.MonthlyData, dtos.MonthValue{
				Month: m,
				Value: totals.value(name),
			})
		}
	}

	return resp, nil
}

// regionOf extracts the region bucket from a location: the trimmed token
// after the last comma, or the unknown bucket when location is empty.
func regionOf(location string) string {
	if strings.TrimSpace(location) == "" {
		return constants.RegionUnknown
	}
	parts := strings.Split(location, ",")
	region := strings.TrimSpace(parts[len(parts)-1])
	if region == "" {
		return constants.RegionUnknown
	}
	return region
}

// RegionalRollup answers "how do properties in this region compare":
// occupancy/adr/revpar are unweighted arithmetic means of hotel-level
// values, NOT ratio-of-sums, so a 40-room inn counts the same as a
// 400-room tower. Revenue is summed. Keep this rule separate from the
// bucketed queries; the two are intentionally different.
func (s *AggregationService) RegionalRollup(ctx context.Context, start, end time.Time) (*dtos.RegionalResponse, error) {
	timer := prometheusTimer("regional_rollup")
	defer timer()

	records, err := s.records.RangeQuery(ctx, start, end, "")
	if err != nil {
		return nil, err
	}

	type hotelAgg struct {
		occupancySum   float64
		occupancyCount int
		adrSum         float64
		revparSum      float64
		recordCount    int
	}

	regionHotels := make(map[string]map[string]*hotelAgg)
	regionRevenue := make(map[string]decimal.Decimal)

	for i := range records {
		r := &records[i]
		region := regionOf(r.Location)

		if regionHotels[region] == nil {
			regionHotels[region] = make(map[string]*hotelAgg)
		}
		agg := regionHotels[region][r.HotelName]
		if agg == nil {
			agg = &hotelAgg{}
			regionHotels[region][r.HotelName] = agg
		}

		if r.OccupancyRate != nil {
			agg.occupancySum += *r.OccupancyRate
			agg.occupancyCount++
		}
		agg.adrSum += r.ADR
		agg.revparSum += r.RevPAR
		agg.recordCount++

		regionRevenue[region] = regionRevenue[region].Add(decimal.NewFromFloat(r.Revenue))
	}

	resp := &dtos.RegionalResponse{
		DateRange: dtos.DateRange{
			StartDate: start.Format(dateLayout),
			EndDate:   end.Format(dateLayout),
		},
		Regions: make(map[string]dtos.RegionalKPIs),
	}

	for region, hotels := range regionHotels {
		var occupancy, adr, revpar float64
		occupancyHotels := 0

		for _, agg := range hotels {
			if agg.occupancyCount > 0 {
				occupancy += agg.occupancySum / float64(agg.occupancyCount)
				occupancyHotels++
			}
			adr += agg.adrSum / float64(agg.recordCount)
			revpar += agg.revparSum / float64(agg.recordCount)
		}

		n := float64(len(hotels))
		kpis := dtos.RegionalKPIs{
			Region:     region,
			HotelCount: len(hotels),
			ADR:        adr / n,
			RevPAR:     revpar / n,
		}
		if occupancyHotels > 0 {
			kpis.OccupancyRate = occupancy / float64(occupancyHotels)
		}
		kpis.Revenue, _ = regionRevenue[region].Float64()

		resp.Regions[region] = kpis
	}

	return resp, nil
}

// DashboardSummary builds the headline view: current KPIs, the
// immediately preceding period of equal length, and change rates. Results
// are memoized under a canonical fingerprint of the range.
func (s *AggregationService) DashboardSummary(ctx context.Context, start, end time.Time) (*dtos.DashboardSummary, error) {
	timer := prometheusTimer("dashboard_summary")
	defer timer()

	key := common.Fingerprint(string(constants.CachePrefixDashboard), map[string]string{
		"start": start.Format(dateLayout),
		"end":   end.Format(dateLayout),
	})

	if s.cache != nil {
		if cached, found := s.cache.Get(key); found {
			var summary dtos.DashboardSummary
			if decodeCached(cached, &summary) {
				metrics.CacheHitsTotal.WithLabelValues(string(constants.CachePrefixDashboard)).Inc()
				return &summary, nil
			}
		}
		metrics.CacheMissesTotal.WithLabelValues(string(constants.CachePrefixDashboard)).Inc()
	}

	length := int(end.Sub(start).Hours()/24) + 1
	prevEnd := start.AddDate(0, 0, -1)
	prevStart := prevEnd.AddDate(0, 0, -(length - 1))

	var current, previous dtos.KPISet
	var hotelCount int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = s.kpiSet(gctx, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		previous, err = s.kpiSet(gctx, prevStart, prevEnd)
		return err
	})
	g.Go(func() error {
		var err error
		hotelCount, err = s.records.DistinctHotelCount(gctx, start, end)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &dtos.DashboardSummary{
		Current:    current,
		Previous:   previous,
		HotelCount: hotelCount,
		Changes: map[string]float64{
			string(constants.MetricOccupancyRate): changeRate(current.OccupancyRate, previous.OccupancyRate),
			string(constants.MetricADR):           changeRate(current.ADR, previous.ADR),
			string(constants.MetricRevPAR):        changeRate(current.RevPAR, previous.RevPAR),
			string(constants.MetricRevenue):       changeRate(current.Revenue, previous.Revenue),
		},
		DateRange: dtos.DateRange{
			StartDate: start.Format(dateLayout),
			EndDate:   end.Format(dateLayout),
		},
	}

	if s.cache != nil {
		s.cache.Set(key, summary, s.ttl)
	}

	return summary, nil
}

func (s *AggregationService) kpiSet(ctx context.Context, start, end time.Time) (dtos.KPISet, error) {
	records, err := s.records.RangeQuery(ctx, start, end, "")
	if err != nil {
		return dtos.KPISet{}, err
	}

	var totals bucketTotals
	for i := range records {
		totals.add(&records[i])
	}

	return dtos.KPISet{
		OccupancyRate: totals.value(constants.MetricOccupancyRate),
		ADR:           totals.value(constants.MetricADR),
		RevPAR:        totals.value(constants.MetricRevPAR),
		Revenue:       totals.value(constants.MetricRevenue),
	}, nil
}

func changeRate(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

func prometheusTimer(query string) func() {
	start := time.Now()
	return func() {
		metrics.AggregationDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
	}
}

// decodeCached rebuilds a typed value from whatever the cache returned:
// either the original pointer (in-memory cache) or a JSON-decoded map
// (Redis). The JSON round trip covers both.
func decodeCached(cached interface{}, target interface{}) bool {
	data, err := json.Marshal(cached)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, target) == nil
}
