// Package types provides type definitions for structured data used throughout the notice extraction pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

// JobFields is the structured form of a recruitment notification.
// Every section is always present after Normalize; sections the model
// omitted are empty rather than nil.
type JobFields struct {
	Title               string         `json:"title"`
	Organization        string         `json:"organization"`
	AdvertisementNumber FlexString     `json:"advertisement_number"`
	Summary             string         `json:"summary"`
	ImportantDates      ImportantDates `json:"important_dates"`
	AgeLimit            FlexString     `json:"age_limit"`
	ApplicationFees     []FeeRow       `json:"application_fees"`
	Vacancies           []VacancyRow   `json:"vacancies"`
	Qualification       string         `json:"qualification"`
	SelectionStages     []string       `json:"selection_stages"`
	Links               []Link         `json:"links"`
}

// ImportantDates holds the notice's schedule as printed (no date parsing).
type ImportantDates struct {
	NotificationDate   string `json:"notification_date"`
	ApplicationStart   string `json:"application_start"`
	ApplicationEnd     string `json:"application_end"`
	FeePaymentLastDate string `json:"fee_payment_last_date"`
	ExamDate           string `json:"exam_date"`
	AdmitCardDate      string `json:"admit_card_date"`
	ResultDate         string `json:"result_date"`
}

// FeeRow is one row of the application fee table
type FeeRow struct {
	Category string     `json:"category"`
	Amount   FlexString `json:"amount"`
}

// VacancyRow is one row of the vacancy table
type VacancyRow struct {
	PostName    string     `json:"post_name"`
	Category    string     `json:"category"`
	Total       FlexString `json:"total"`
	Eligibility string     `json:"eligibility"`
}

// Link is a labelled URL found in the notice (apply online, official site, ...)
type Link struct {
	Label string `json:"label"`
	URL   string `json:"url" validate:"omitempty,url"`
}

// TopLevelKeys lists the JSON keys of JobFields in schema order.
var TopLevelKeys = []string{
	"title",
	"organization",
	"advertisement_number",
	"summary",
	"important_dates",
	"age_limit",
	"application_fees",
	"vacancies",
	"qualification",
	"selection_stages",
	"links",
}

// Normalize replaces nil slices with empty ones so the serialized shape is
// complete even when the model left sections out.
func (f *JobFields) Normalize() {
	if f.ApplicationFees == nil {
		f.ApplicationFees = []FeeRow{}
	}
	if f.Vacancies == nil {
		f.Vacancies = []VacancyRow{}
	}
	if f.SelectionStages == nil {
		f.SelectionStages = []string{}
	}
	if f.Links == nil {
		f.Links = []Link{}
	}
}

// EmptyJobFields returns a fully-shaped JobFields with every section empty.
func EmptyJobFields() JobFields {
	var f JobFields
	f.Normalize()
	return f
}
