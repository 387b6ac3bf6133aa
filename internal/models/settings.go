package models

// Setting keys stored outside the state document.
const (
	SettingPairingCode        = "pairing_code"
	SettingDeviceID           = "device_id"
	SettingTokenSecret        = "token_secret"
	SettingCalendarICSURL     = "calendar_ics_url"
	SettingWeatherQuery       = "weather_query"
	SettingGoogleRefreshToken = "google_refresh_token"
	SettingLocalPhotoDir      = "local_photo_dir"
)

type PairRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type SessionResponse struct {
	OK       bool   `json:"ok"`
	DeviceID string `json:"deviceId"`
}

// IntegrationSettings is what the control client sees of the external sources.
type IntegrationSettings struct {
	CalendarICSURL string `json:"calendarIcsUrl"`
	WeatherQuery   string `json:"weatherQuery"`
	LocalPhotoDir  string `json:"localPhotoDir"`
	GooglePhotos   bool   `json:"googlePhotosLinked"`
}

type CalendarSourceRequest struct {
	URL string `json:"url" validate:"omitempty,url,max=2048"`
}

type WeatherLocationRequest struct {
	Query string `json:"query" validate:"omitempty,max=256"`
}
