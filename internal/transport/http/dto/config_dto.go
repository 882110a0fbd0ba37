package dto

type ListingLimitsResponse struct {
	RentMin     int `json:"rent_min"`
	RentMax     int `json:"rent_max"`
	PageSize    int `json:"page_size"`
	MaxPageSize int `json:"max_page_size"`
}

type ConfigResponse struct {
	Plans   []PlanResponse        `json:"plans"`
	Listing ListingLimitsResponse `json:"listing"`
}

type PromoResponse struct {
	Show     bool   `json:"show"`
	Title    string `json:"title,omitempty"`
	Body     string `json:"body,omitempty"`
	ShowPath string `json:"show_path,omitempty"`
	DelayMS  int64  `json:"delay_ms,omitempty"`
}
