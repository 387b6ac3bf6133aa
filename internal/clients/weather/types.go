package weather

type valueList []struct {
	Value string `json:"value"`
}

func firstValue(v valueList) string {
	if len(v) == 0 {
		return ""
	}
	return v[0].Value
}

type report struct {
	CurrentCondition []struct {
		TempF       string    `json:"temp_F"`
		TempC       string    `json:"temp_C"`
		WeatherCode string    `json:"weatherCode"`
		WeatherDesc valueList `json:"weatherDesc"`
	} `json:"current_condition"`
	NearestArea []struct {
		AreaName valueList `json:"areaName"`
		Region   valueList `json:"region"`
	} `json:"nearest_area"`
	Weather []day `json:"weather"`
}

type day struct {
	Date     string   `json:"date"`
	MaxTempF string   `json:"maxtempF"`
	MinTempF string   `json:"mintempF"`
	MaxTempC string   `json:"maxtempC"`
	MinTempC string   `json:"mintempC"`
	Hourly   []hourly `json:"hourly"`
}

type hourly struct {
	Time        string    `json:"time"`
	WeatherCode string    `json:"weatherCode"`
	WeatherDesc valueList `json:"weatherDesc"`
}

// midday picks the 12:00 slot, or the middle one when the feed is sparse.
func (d day) midday() *hourly {
	if len(d.Hourly) == 0 {
		return nil
	}
	for i := range d.Hourly {
		if d.Hourly[i].Time == "1200" {
			return &d.Hourly[i]
		}
	}
	return &d.Hourly[len(d.Hourly)/2]
}

func (r report) location(fallback string) string {
	if len(r.NearestArea) == 0 {
		return fallback
	}
	area := firstValue(r.NearestArea[0].AreaName)
	region := firstValue(r.NearestArea[0].Region)
	switch {
	case area == "":
		return fallback
	case region == "":
		return area
	default:
		return area + ", " + region
	}
}
