package xgeo

// Attributes 是一个范围携带的地理属性集合。
// 每个字段独立可空：nil 表示数据集中该字段缺失，
// 序列化（JSON/BSON）为显式 null。
//
// 纬度/经度在装载期已校验 −90 ≤ lat ≤ 90、−180 ≤ lon ≤ 180，
// 查询路径不重复校验。
type Attributes struct {
	// CountryCode ISO 3166-1 两位国家代码。
	CountryCode *string `json:"country_code" bson:"country_code"`

	// CountryName 国家名称。
	CountryName *string `json:"country_name" bson:"country_name"`

	// RegionName 一级行政区名称。
	RegionName *string `json:"region_name" bson:"region_name"`

	// CityName 城市名称。
	CityName *string `json:"city_name" bson:"city_name"`

	// Latitude 纬度。
	Latitude *float64 `json:"latitude" bson:"latitude"`

	// Longitude 经度。
	Longitude *float64 `json:"longitude" bson:"longitude"`

	// ZipCode 邮政编码。
	ZipCode *string `json:"zip_code" bson:"zip_code"`

	// TimeZone 时区（UTC 偏移，如 "-07:00"）。
	TimeZone *string `json:"time_zone" bson:"time_zone"`
}

// StringPtr 返回 s 的指针。构建 Attributes 字面量时使用。
func StringPtr(s string) *string { return &s }

// Float64Ptr 返回 f 的指针。构建 Attributes 字面量时使用。
func Float64Ptr(f float64) *float64 { return &f }
