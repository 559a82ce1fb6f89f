package fare

import (
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type FareType string

const (
	FARE_TYPE_ADULT      FareType = "adult"
	FARE_TYPE_CHILD      FareType = "child"
	FARE_TYPE_CONCESSION FareType = "concession"
	FARE_TYPE_SCHOOL     FareType = "school"
	FARE_TYPE_EMPLOYEE   FareType = "employee"
	FARE_TYPE_FREE       FareType = "free"
	FARE_TYPE_SENIOR     FareType = "senior"

	// 市中心站之间统一按3.21km计费
	CITY_STATION_DISTANCE = 3.21
	// Macarthur与Campbelltown之间按1.86km计费
	MACARTHUR_CAMPBELLTOWN_DISTANCE = 1.86
)

// 全部可识别的乘客类型，按优惠表的顺序
var FARE_TYPES = []FareType{
	FARE_TYPE_ADULT, FARE_TYPE_CHILD, FARE_TYPE_CONCESSION, FARE_TYPE_SCHOOL,
	FARE_TYPE_EMPLOYEE, FARE_TYPE_FREE, FARE_TYPE_SENIOR,
}

// DistanceOverride 站点对（无序）的固定计费距离，优先于最短路
type DistanceOverride struct {
	From     string  `yaml:"from" validate:"required"`
	To       string  `yaml:"to" validate:"required,nefield=From"`
	Distance float64 `yaml:"distance" validate:"gte=0"`
}

type NetworkConfig struct {
	InterchangeStations []string           `yaml:"interchangeStations" validate:"dive,required"`
	CityStations        []string           `yaml:"cityStations" validate:"dive,required"`
	CityStationDistance float64            `yaml:"cityStationDistance" validate:"gte=0"`
	DistanceOverrides   []DistanceOverride `yaml:"distanceOverrides" validate:"dive"`
}

// DistanceBand 距离不超过UpTo时的成人基础票价
type DistanceBand struct {
	UpTo  float64 `yaml:"upTo" validate:"gt=0"`
	Price float64 `yaml:"price" validate:"gte=0"`
}

// FareTypeDiscount 乘客类型的折扣系数与基础票价上限（nil表示不封顶）
type FareTypeDiscount struct {
	Factor float64  `yaml:"factor" validate:"gte=0"`
	Cap    *float64 `yaml:"cap,omitempty" validate:"omitempty,gte=0"`
}

type StationFee struct {
	Station string  `yaml:"station" validate:"required"`
	Fee     float64 `yaml:"fee" validate:"gte=0"`
}

type FareTypeFee struct {
	FareType FareType `yaml:"fareType" validate:"required"`
	Fee      float64  `yaml:"fee" validate:"gte=0"`
}

// AccessFeeTable 机场站附加费，按字段顺序逐条匹配
type AccessFeeTable struct {
	Stations           []string      `yaml:"stations" validate:"dive,required"`
	BetweenStationsFee float64       `yaml:"betweenStationsFee" validate:"gte=0"`
	StationFees        []StationFee  `yaml:"stationFees" validate:"dive"`
	FareTypeFees       []FareTypeFee `yaml:"fareTypeFees" validate:"dive"`
	FreeTravelFee      float64       `yaml:"freeTravelFee" validate:"gte=0"`
	DefaultFee         float64       `yaml:"defaultFee" validate:"gte=0"`
}

type Tariff struct {
	Bands           []DistanceBand                `yaml:"bands" validate:"required,min=1,dive"`
	FareTypes       map[FareType]FareTypeDiscount `yaml:"fareTypes" validate:"required,dive"`
	DefaultFareType FareType                      `yaml:"defaultFareType" validate:"required"`
	OffPeakFactor   float64                       `yaml:"offPeakFactor" validate:"gt=0,lte=1"`
	AccessFee       AccessFeeTable                `yaml:"accessFee"`
}

type Config struct {
	Network NetworkConfig `yaml:"network"`
	Tariff  Tariff        `yaml:"tariff"`
}

func ptr(v float64) *float64 {
	return &v
}

// 悉尼Opal票价表
func DefaultConfig() Config {
	return Config{
		Network: NetworkConfig{
			InterchangeStations: []string{
				"Central", "Redfern", "Wynyard", "Kings Cross", "Wolli Creek", "Sydenham",
				"Glenfield", "Strathfield", "Lidcombe", "Flemington", "Clyde", "Epping",
				"Chatswood", "Hornsby", "Berowra", "Liverpool", "Blacktown", "Sutherland",
			},
			CityStations: []string{
				"Town Hall", "Wynyard", "Circular Quay", "Museum", "St James",
				"Martin Place", "Central", "Kings Cross",
			},
			CityStationDistance: CITY_STATION_DISTANCE,
			DistanceOverrides: []DistanceOverride{
				{From: "Macarthur", To: "Campbelltown", Distance: MACARTHUR_CAMPBELLTOWN_DISTANCE},
			},
		},
		Tariff: Tariff{
			Bands: []DistanceBand{
				{UpTo: 10, Price: 3.61},
				{UpTo: 20, Price: 4.48},
				{UpTo: 35, Price: 5.15},
				{UpTo: 65, Price: 6.89},
				{UpTo: math.Inf(1), Price: 8.86},
			},
			FareTypes: map[FareType]FareTypeDiscount{
				FARE_TYPE_ADULT:      {Factor: 1},
				FARE_TYPE_CHILD:      {Factor: 0.5},
				FARE_TYPE_CONCESSION: {Factor: 0.5},
				FARE_TYPE_SCHOOL:     {Factor: 0},
				FARE_TYPE_EMPLOYEE:   {Factor: 0},
				FARE_TYPE_FREE:       {Factor: 0},
				// 金卡每日封顶2.50
				FARE_TYPE_SENIOR: {Factor: 0.5, Cap: ptr(2.50)},
			},
			DefaultFareType: FARE_TYPE_ADULT,
			OffPeakFactor:   0.7,
			AccessFee: AccessFeeTable{
				Stations:           []string{"International Terminal", "Domestic Terminal"},
				BetweenStationsFee: 2.20,
				StationFees: []StationFee{
					{Station: "Mascot", Fee: 6.57},
					{Station: "Green Square", Fee: 8.97},
				},
				FareTypeFees: []FareTypeFee{
					{FareType: FARE_TYPE_CONCESSION, Fee: 13.31},
					{FareType: FARE_TYPE_SENIOR, Fee: 13.31},
					{FareType: FARE_TYPE_CHILD, Fee: 13.18},
					// 学生卡不能通过机场闸机
					{FareType: FARE_TYPE_SCHOOL, Fee: math.Inf(1)},
				},
				FreeTravelFee: 0,
				DefaultFee:    14.87,
			},
		},
	}
}

func (c Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c.Network); err != nil {
		return fmt.Errorf("invalid network config: %w", err)
	}
	return c.Tariff.Validate()
}

func (t Tariff) Validate() error {
	if err := validator.New().Struct(t); err != nil {
		return fmt.Errorf("invalid tariff: %w", err)
	}
	return t.check()
}

// validator无法表达的约束
func (t Tariff) check() error {
	if len(t.Bands) == 0 {
		return fmt.Errorf("invalid tariff: no bands")
	}
	if !sort.SliceIsSorted(t.Bands, func(i, j int) bool { return t.Bands[i].UpTo < t.Bands[j].UpTo }) {
		return fmt.Errorf("invalid tariff: bands must be ascending")
	}
	for i := 1; i < len(t.Bands); i++ {
		if t.Bands[i].UpTo == t.Bands[i-1].UpTo {
			return fmt.Errorf("invalid tariff: duplicated band %v", t.Bands[i].UpTo)
		}
	}
	if last := t.Bands[len(t.Bands)-1]; !math.IsInf(last.UpTo, 1) {
		return fmt.Errorf("invalid tariff: last band must be unbounded, got %v", last.UpTo)
	}
	if _, ok := t.FareTypes[t.DefaultFareType]; !ok {
		return fmt.Errorf("invalid tariff: default fare type %q has no discount", t.DefaultFareType)
	}
	return nil
}

// 从yaml文件读取配置，未出现的字段沿用默认值
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
