package fare

import (
	"math"

	"github.com/samber/lo"
)

type Options struct {
	FareType FareType `json:"fareType,omitempty"`
	OffPeak  bool     `json:"offPeak,omitempty"`
}

// FareBreakdown 一次计费的完整结果，生成后不再修改
// BaseFareCap为+Inf表示不封顶，AccessFee为+Inf表示该乘客类型不能进出机场站
type FareBreakdown struct {
	FareDistance           FareDistance `json:"fareDistance"`
	BaseFare               float64      `json:"baseFare"`
	BaseFareCap            float64      `json:"baseFareCap"`
	BaseFareDiscountFactor float64      `json:"baseFareDiscountFactor"`
	AccessFee              float64      `json:"accessFee"`
	Fare                   float64      `json:"fare"`
	Options                Options      `json:"options"`
}

type accessFeeQuery struct {
	// 机场一侧与另一侧的站点
	airport, other string
	fareType       FareType
	// 非高峰折扣之前的折扣系数
	factor float64
}

type accessFeeRule struct {
	name  string
	match func(q accessFeeQuery) bool
	fee   float64
}

// RuleEvaluator 根据计费距离与乘客选项计算票价，只读，可并发使用
type RuleEvaluator struct {
	tariff            Tariff
	accessFeeStations map[string]bool
	accessFeeRules    []accessFeeRule
}

// NewRuleEvaluator 校验票价表后构建，保证BaseFare总能落入某个区间
func NewRuleEvaluator(tariff Tariff) (*RuleEvaluator, error) {
	if err := tariff.Validate(); err != nil {
		return nil, err
	}
	e := &RuleEvaluator{
		tariff:            tariff,
		accessFeeStations: lo.Associate(tariff.AccessFee.Stations, func(s string) (string, bool) { return s, true }),
	}
	e.accessFeeRules = buildAccessFeeRules(tariff.AccessFee, e.accessFeeStations)
	return e, nil
}

// 附加费规则，自上而下首个匹配生效
func buildAccessFeeRules(t AccessFeeTable, stations map[string]bool) []accessFeeRule {
	rules := []accessFeeRule{{
		name:  "between access fee stations",
		match: func(q accessFeeQuery) bool { return stations[q.other] },
		fee:   t.BetweenStationsFee,
	}}
	for _, sf := range t.StationFees {
		station := sf.Station
		rules = append(rules, accessFeeRule{
			name:  "to " + station,
			match: func(q accessFeeQuery) bool { return q.other == station },
			fee:   sf.Fee,
		})
	}
	for _, ff := range t.FareTypeFees {
		fareType := ff.FareType
		rules = append(rules, accessFeeRule{
			name:  "fare type " + string(fareType),
			match: func(q accessFeeQuery) bool { return q.fareType == fareType },
			fee:   ff.Fee,
		})
	}
	rules = append(rules,
		accessFeeRule{
			name:  "free travel",
			match: func(q accessFeeQuery) bool { return q.factor == 0 },
			fee:   t.FreeTravelFee,
		},
		accessFeeRule{
			name:  "default",
			match: func(accessFeeQuery) bool { return true },
			fee:   t.DefaultFee,
		},
	)
	return rules
}

// 乘客类型对应的折扣系数与封顶，未知类型按默认类型处理
func (e *RuleEvaluator) Discount(fareType FareType) (FareType, float64, float64) {
	if fareType == "" {
		fareType = e.tariff.DefaultFareType
	}
	d, ok := e.tariff.FareTypes[fareType]
	if !ok {
		log.Warnf("unknown fare type %q, fall back to %s", fareType, e.tariff.DefaultFareType)
		fareType = e.tariff.DefaultFareType
		d = e.tariff.FareTypes[fareType]
	}
	fareCap := math.Inf(1)
	if d.Cap != nil {
		fareCap = *d.Cap
	}
	return fareType, d.Factor, fareCap
}

// 第一个上界不小于距离的区间的票价
func (e *RuleEvaluator) BaseFare(distance float64) float64 {
	for _, band := range e.tariff.Bands {
		if distance <= band.UpTo {
			return band.Price
		}
	}
	return e.tariff.Bands[len(e.tariff.Bands)-1].Price
}

func (e *RuleEvaluator) IsAccessFeeStation(station string) bool {
	return e.accessFeeStations[station]
}

// 机场站附加费，起终点都不是机场站时为0
func (e *RuleEvaluator) AccessFee(origin, destination string, fareType FareType, factor float64) float64 {
	q := accessFeeQuery{fareType: fareType, factor: factor}
	if e.accessFeeStations[origin] {
		q.airport, q.other = origin, destination
	} else if e.accessFeeStations[destination] {
		q.airport, q.other = destination, origin
	} else {
		return 0
	}
	for _, rule := range e.accessFeeRules {
		if rule.match(q) {
			log.Debugf("access fee %s -> %s: %s", q.airport, q.other, rule.name)
			return rule.fee
		}
	}
	return 0
}

func (e *RuleEvaluator) Evaluate(origin, destination string, distance FareDistance, opts Options) FareBreakdown {
	fareType, factor, fareCap := e.Discount(opts.FareType)
	discountFactor := factor
	if opts.OffPeak {
		// 非高峰时段在其他优惠基础上再打折
		discountFactor *= e.tariff.OffPeakFactor
	}
	baseFare := e.BaseFare(distance.Distance)
	accessFee := e.AccessFee(origin, destination, fareType, factor)
	return FareBreakdown{
		FareDistance:           distance,
		BaseFare:               baseFare,
		BaseFareCap:            fareCap,
		BaseFareDiscountFactor: discountFactor,
		AccessFee:              accessFee,
		Fare:                   Round2(math.Min(fareCap, baseFare*discountFactor) + accessFee),
		Options:                opts,
	}
}
