package xgeo

// Location 是对外暴露的查询结果形状。
// 字段与 [Attributes] 一一对应；投影是纯数据映射，
// 缺失字段保持 null，不做任何坍缩或默认值填充。
type Location struct {
	CountryCode *string  `json:"country_code"`
	CountryName *string  `json:"country_name"`
	RegionName  *string  `json:"region_name"`
	CityName    *string  `json:"city_name"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	ZipCode     *string  `json:"zip_code"`
	TimeZone    *string  `json:"time_zone"`
}

// LocationFromAttributes 将范围属性投影为公开结果形状。
// 无副作用、无失败路径；指针被复制为新分配的值，
// 调用方持有的 Location 与存储层对象不共享内存。
func LocationFromAttributes(a Attributes) *Location {
	return &Location{
		CountryCode: copyString(a.CountryCode),
		CountryName: copyString(a.CountryName),
		RegionName:  copyString(a.RegionName),
		CityName:    copyString(a.CityName),
		Latitude:    copyFloat64(a.Latitude),
		Longitude:   copyFloat64(a.Longitude),
		ZipCode:     copyString(a.ZipCode),
		TimeZone:    copyString(a.TimeZone),
	}
}

// Result 是单次查询的结果：要么命中（Found 为 true 且 Location 非 nil），
// 要么未覆盖（Found 为 false 且 Location 为 nil）。不存在部分结果。
type Result struct {
	// Found 报告地址是否落在某个范围内。
	Found bool `json:"found"`

	// Location 命中时的地理位置投影，未命中为 nil。
	Location *Location `json:"location,omitempty"`
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyFloat64(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
