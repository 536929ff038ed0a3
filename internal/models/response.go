package models

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type HealthResponse struct {
	OK      bool `json:"ok"`
	Amadeus bool `json:"amadeus"`
	Kiwi    bool `json:"kiwi"`
	Cache   bool `json:"cache"`
}
